package service

import (
	"context"
	"errors"
	"storefront-api/internal/apperror"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"storefront-api/internal/testutil"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRequest() *dto.PlaceOrderRequest {
	return &dto.PlaceOrderRequest{
		ShippingAddress: dto.Address{
			FullName: "Alice Doe",
			Address:  "1 Main St",
			City:     "Springfield",
			State:    "IL",
			ZipCode:  "62701",
		},
		PaymentMethod: model.PaymentMethodCreditCard,
	}
}

func countRows(t *testing.T, env *testEnv, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(m).Count(&n).Error)
	return n
}

func TestPlaceOrderMaterializesCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "alice", model.RoleCustomer)
	owner := model.UserOwner(user.ID)
	a := testutil.CreateProduct(t, env.db, "a", "10.00")
	b := testutil.CreateProduct(t, env.db, "b", "5.00")

	_, _, err := env.cart.AddItem(ctx, owner, a.ID, 2)
	require.NoError(t, err)
	_, _, err = env.cart.AddItem(ctx, owner, b.ID, 1)
	require.NoError(t, err)

	quote, err := env.cart.Quote(ctx, owner, "")
	require.NoError(t, err)

	order, err := env.orders.PlaceOrder(ctx, user.ID, orderRequest())
	require.NoError(t, err)

	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, model.PaymentPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	for _, item := range order.Items {
		assert.True(t, item.Total.Equal(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))))
	}

	// what the summary displayed is what was stored
	assert.True(t, quote.Subtotal.Equal(order.Subtotal), "subtotal %s vs %s", quote.Subtotal, order.Subtotal)
	assert.True(t, quote.Tax.Equal(order.Tax))
	assert.True(t, quote.Shipping.Equal(order.Shipping))
	assert.True(t, quote.Total.Equal(order.Total))
	assert.True(t, order.Total.Equal(order.Subtotal.Add(order.Tax).Add(order.Shipping).Sub(order.Discount)))

	assert.Equal(t, "Springfield", order.ShippingAddress.Data().City)
	assert.Equal(t, "Springfield", order.BillingAddress.Data().City)

	items, err := env.cart.ListItems(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPlaceOrderSnapshotsPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "alice", model.RoleCustomer)
	product := testutil.CreateProduct(t, env.db, "a", "10.00")

	_, _, err := env.cart.AddItem(ctx, model.UserOwner(user.ID), product.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.PlaceOrder(ctx, user.ID, orderRequest())
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&model.Product{}).Where("id = ?", product.ID).Update("price", dec("99.00")).Error)

	reloaded, err := env.orders.GetOrder(ctx, model.Principal{UserID: user.ID}, order.ID)
	require.NoError(t, err)
	assert.True(t, dec("10.00").Equal(reloaded.Items[0].Price))
	assert.True(t, order.Total.Equal(reloaded.Total))
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "alice", model.RoleCustomer)

	_, err := env.orders.PlaceOrder(context.Background(), user.ID, orderRequest())
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
	assert.Zero(t, countRows(t, env, &model.Order{}))
}

func TestPlaceOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "alice", model.RoleCustomer)

	req := orderRequest()
	req.PaymentMethod = "cash"
	_, err := env.orders.PlaceOrder(ctx, user.ID, req)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	req = orderRequest()
	req.ShippingAddress.City = " "
	_, err = env.orders.PlaceOrder(ctx, user.ID, req)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestPlaceOrderPriceMismatchLeavesNoState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "alice", model.RoleCustomer)
	owner := model.UserOwner(user.ID)
	product := testutil.CreateProduct(t, env.db, "a", "10.00")

	_, _, err := env.cart.AddItem(ctx, owner, product.ID, 2)
	require.NoError(t, err)

	req := orderRequest()
	req.Total = decPtr("20.00") // client forgot tax and shipping
	_, err = env.orders.PlaceOrder(ctx, user.ID, req)
	assert.ErrorIs(t, err, apperror.ErrPriceMismatch)

	req = orderRequest()
	req.Items = []dto.OrderLine{{ProductID: product.ID, Quantity: 2, Price: decPtr("9.00")}}
	_, err = env.orders.PlaceOrder(ctx, user.ID, req)
	assert.ErrorIs(t, err, apperror.ErrPriceMismatch)

	req = orderRequest()
	req.Items = []dto.OrderLine{{ProductID: product.ID, Quantity: 1}}
	_, err = env.orders.PlaceOrder(ctx, user.ID, req)
	assert.ErrorIs(t, err, apperror.ErrPriceMismatch)

	// a second cart line the client never showed
	other := testutil.CreateProduct(t, env.db, "b", "5.00")
	_, _, err = env.cart.AddItem(ctx, owner, other.ID, 1)
	require.NoError(t, err)

	req = orderRequest()
	req.Items = []dto.OrderLine{
		{ProductID: product.ID, Quantity: 2},
		{ProductID: product.ID, Quantity: 2},
	}
	_, err = env.orders.PlaceOrder(ctx, user.ID, req)
	assert.ErrorIs(t, err, apperror.ErrPriceMismatch)

	assert.Zero(t, countRows(t, env, &model.Order{}))
	assert.Zero(t, countRows(t, env, &model.OrderItem{}))
	items, err := env.cart.ListItems(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	req = orderRequest()
	req.Subtotal = decPtr("25.00")
	req.Tax = decPtr("2.00")
	req.Shipping = decPtr("5.99")
	req.Total = decPtr("32.99")
	req.Items = []dto.OrderLine{
		{ProductID: product.ID, Quantity: 2, Price: decPtr("10.00")},
		{ProductID: other.ID, Quantity: 1, Price: decPtr("5.00")},
	}
	order, err := env.orders.PlaceOrder(ctx, user.ID, req)
	require.NoError(t, err)
	assert.True(t, dec("32.99").Equal(order.Total))
	assert.Len(t, order.Items, 2)
}

func TestPlaceOrderConcurrentCheckoutCreatesOneOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "alice", model.RoleCustomer)
	product := testutil.CreateProduct(t, env.db, "a", "10.00")
	_, _, err := env.cart.AddItem(ctx, model.UserOwner(user.ID), product.ID, 3)
	require.NoError(t, err)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.orders.PlaceOrder(ctx, user.ID, orderRequest())
		}()
	}
	wg.Wait()

	var ok, empty int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperror.ErrEmptyCart):
			empty++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, empty)
	assert.EqualValues(t, 1, countRows(t, env, &model.Order{}))
	assert.EqualValues(t, 1, countRows(t, env, &model.OrderItem{}))
}

func TestPlaceOrderWithCoupon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "alice", model.RoleCustomer)
	owner := model.UserOwner(user.ID)
	product := testutil.CreateProduct(t, env.db, "a", "30.00")
	limit := 1

	_, err := env.coupons.CreateCoupon(ctx, &dto.CreateCouponRequest{
		Code: "save10", Type: model.CouponPercentage, Value: dec("10"), UsageLimit: &limit,
	})
	require.NoError(t, err)

	_, _, err = env.cart.AddItem(ctx, owner, product.ID, 2)
	require.NoError(t, err)

	quote, err := env.cart.Quote(ctx, owner, "SAVE10")
	require.NoError(t, err)
	assert.True(t, dec("6.00").Equal(quote.Discount))

	req := orderRequest()
	req.CouponCode = "save10"
	req.Total = &quote.Total
	order, err := env.orders.PlaceOrder(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.True(t, dec("6.00").Equal(order.Discount))
	assert.True(t, dec("58.80").Equal(order.Total)) // 60 + 4.80 + 0 - 6

	_, _, err = env.cart.AddItem(ctx, owner, product.ID, 2)
	require.NoError(t, err)
	_, err = env.orders.PlaceOrder(ctx, user.ID, req)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestOrderStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "alice", model.RoleCustomer)
	product := testutil.CreateProduct(t, env.db, "a", "10.00")
	_, _, err := env.cart.AddItem(ctx, model.UserOwner(user.ID), product.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.PlaceOrder(ctx, user.ID, orderRequest())
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(ctx, order.ID, model.OrderShipped)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	updated, err := env.orders.UpdateStatus(ctx, order.ID, model.OrderProcessing)
	require.NoError(t, err)
	assert.Equal(t, model.OrderProcessing, updated.Status)

	_, err = env.orders.CancelOrder(ctx, user.ID, order.ID)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	paid, err := env.orders.UpdatePaymentStatus(ctx, order.ID, model.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, paid.PaymentStatus)

	_, err = env.orders.UpdatePaymentStatus(ctx, order.ID, model.PaymentFailed)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.orders.UpdateStatus(ctx, 9999, model.OrderProcessing)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCancelOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, env.db, "alice", model.RoleCustomer)
	bob := testutil.CreateUser(t, env.db, "bob", model.RoleCustomer)
	product := testutil.CreateProduct(t, env.db, "a", "10.00")
	_, _, err := env.cart.AddItem(ctx, model.UserOwner(alice.ID), product.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.PlaceOrder(ctx, alice.ID, orderRequest())
	require.NoError(t, err)

	_, err = env.orders.CancelOrder(ctx, bob.ID, order.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	canceled, err := env.orders.CancelOrder(ctx, alice.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCanceled, canceled.Status)
}

func TestOrderVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, env.db, "alice", model.RoleCustomer)
	bob := testutil.CreateUser(t, env.db, "bob", model.RoleCustomer)
	admin := testutil.CreateUser(t, env.db, "root", model.RoleAdmin)
	product := testutil.CreateProduct(t, env.db, "a", "10.00")

	for _, u := range []*model.User{alice, bob} {
		_, _, err := env.cart.AddItem(ctx, model.UserOwner(u.ID), product.ID, 1)
		require.NoError(t, err)
		_, err = env.orders.PlaceOrder(ctx, u.ID, orderRequest())
		require.NoError(t, err)
	}

	own, err := env.orders.ListOrders(ctx, model.Principal{UserID: alice.ID}, "", repository.Page{})
	require.NoError(t, err)
	require.Len(t, own.Orders, 1)
	assert.Equal(t, alice.ID, own.Orders[0].UserID)
	assert.EqualValues(t, 1, own.Metadata.Total)

	all, err := env.orders.ListOrders(ctx, model.Principal{UserID: admin.ID, Role: model.RoleAdmin}, model.OrderPending, repository.Page{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, all.Orders, 1)
	assert.EqualValues(t, 2, all.Metadata.Total)
	assert.True(t, all.Metadata.HasNextPage)

	_, err = env.orders.GetOrder(ctx, model.Principal{UserID: alice.ID}, own.Orders[0].ID+1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = env.orders.GetOrder(ctx, model.Principal{UserID: admin.ID, Role: model.RoleAdmin}, own.Orders[0].ID)
	assert.NoError(t, err)
}
