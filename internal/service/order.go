package service

import (
	"context"
	"fmt"
	"storefront-api/internal/apperror"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/pricing"
	"storefront-api/internal/repository"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uint, req *dto.PlaceOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, viewer model.Principal, orderID uint) (*model.Order, error)
	ListOrders(ctx context.Context, viewer model.Principal, status model.OrderStatus, page repository.Page) (*dto.OrderList, error)
	UpdateStatus(ctx context.Context, orderID uint, next model.OrderStatus) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID uint, next model.PaymentStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, userID uint, orderID uint) (*model.Order, error)
}

type orderServiceImpl struct {
	db         *gorm.DB
	orderRepo  repository.OrderRepository
	cartRepo   repository.CartRepository
	couponRepo repository.CouponRepository
	log        *zap.Logger
	now        func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	couponRepo repository.CouponRepository,
	log *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		db:         db,
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		couponRepo: couponRepo,
		log:        log,
		now:        time.Now,
	}
}

// PlaceOrder turns the user's cart into an order. Pricing is recomputed from
// live product prices; the order, its items, the cart deletion and the coupon
// redemption commit together or not at all.
func (s *orderServiceImpl) PlaceOrder(ctx context.Context, userID uint, req *dto.PlaceOrderRequest) (*model.Order, error) {
	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}
	owner := model.UserOwner(userID)

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.cartRepo.ListForUpdate(ctx, tx, owner)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(items) == 0 {
			return apperror.New(apperror.ErrEmptyCart, "cart is empty")
		}

		quote, err := quoteCart(ctx, tx, s.couponRepo, items, req.CouponCode, s.now())
		if err != nil {
			return err
		}
		if err := reconcile(req, items, quote.Summary); err != nil {
			return err
		}

		order := &model.Order{
			UserID:          userID,
			Status:          model.OrderPending,
			Subtotal:        quote.Summary.Subtotal,
			Tax:             quote.Summary.Tax,
			Shipping:        quote.Summary.Shipping,
			Discount:        quote.Summary.Discount,
			Total:           quote.Summary.Total,
			ShippingAddress: datatypes.NewJSONType(req.ShippingAddress.Model()),
			BillingAddress:  datatypes.NewJSONType(billing.Model()),
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   model.PaymentPending,
			Notes:           strings.TrimSpace(req.Notes),
		}
		if quote.Coupon != nil {
			order.CouponCode = quote.Coupon.Code
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order in db: %w", err)
		}

		orderItems := make([]*model.OrderItem, 0, len(items))
		for i, item := range items {
			orderItems = append(orderItems, &model.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     quote.Lines[i].UnitPrice,
				Total:     quote.Lines[i].Total().Round(2),
			})
		}
		if err := s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
			return fmt.Errorf("store order items in db: %w", err)
		}

		n, err := s.cartRepo.DeleteAll(ctx, tx, owner)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if n != int64(len(items)) {
			return apperror.New(apperror.ErrConflict, "cart changed during checkout")
		}

		if quote.Coupon != nil {
			n, err := s.couponRepo.IncrementUsage(ctx, tx, quote.Coupon.ID)
			if err != nil {
				return fmt.Errorf("redeem coupon: %w", err)
			}
			if n == 0 {
				return apperror.Validation("coupon %q has been fully redeemed", quote.Coupon.Code)
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, apperror.Persistence(err, "place order")
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, apperror.Persistence(err, "load placed order")
	}

	s.log.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

func validatePlaceOrder(req *dto.PlaceOrderRequest) error {
	if req == nil {
		return apperror.Validation("order request is required")
	}
	if req.PaymentMethod != model.PaymentMethodCreditCard && req.PaymentMethod != model.PaymentMethodPaypal {
		return apperror.Validation("unsupported payment method %q", req.PaymentMethod)
	}
	if err := validateAddress("shippingAddress", req.ShippingAddress); err != nil {
		return err
	}
	if req.BillingAddress != nil {
		if err := validateAddress("billingAddress", *req.BillingAddress); err != nil {
			return err
		}
	}
	return nil
}

func validateAddress(field string, a dto.Address) error {
	required := []struct{ name, value string }{
		{"fullName", a.FullName},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperror.Validation("%s.%s is required", field, r.name)
		}
	}
	return nil
}

// reconcile rejects a checkout whose client-side figures disagree with the
// server's. Absent figures are not checked.
func reconcile(req *dto.PlaceOrderRequest, items []*model.CartItem, summary pricing.Summary) error {
	figures := []struct {
		name      string
		submitted *decimal.Decimal
		expected  decimal.Decimal
	}{
		{"subtotal", req.Subtotal, summary.Subtotal},
		{"tax", req.Tax, summary.Tax},
		{"shipping", req.Shipping, summary.Shipping},
		{"discount", req.Discount, summary.Discount},
		{"total", req.Total, summary.Total},
	}
	for _, f := range figures {
		if f.submitted != nil && !f.submitted.Equal(f.expected) {
			return apperror.New(apperror.ErrPriceMismatch,
				"%s mismatch: submitted %s, current %s", f.name, f.submitted.StringFixed(2), f.expected.StringFixed(2))
		}
	}

	if len(req.Items) == 0 {
		return nil
	}
	if len(req.Items) != len(items) {
		return apperror.New(apperror.ErrPriceMismatch, "cart has %d lines, order lists %d", len(items), len(req.Items))
	}
	byProduct := make(map[uint]*model.CartItem, len(items))
	for _, item := range items {
		byProduct[item.ProductID] = item
	}
	seen := make(map[uint]bool, len(req.Items))
	for _, line := range req.Items {
		if seen[line.ProductID] {
			return apperror.New(apperror.ErrPriceMismatch, "product %d is listed more than once", line.ProductID)
		}
		seen[line.ProductID] = true

		item, ok := byProduct[line.ProductID]
		if !ok {
			return apperror.New(apperror.ErrPriceMismatch, "product %d is not in the cart", line.ProductID)
		}
		if item.Quantity != line.Quantity {
			return apperror.New(apperror.ErrPriceMismatch, "product %d quantity changed to %d", line.ProductID, item.Quantity)
		}
		if line.Price != nil && !line.Price.Equal(item.Product.Price) {
			return apperror.New(apperror.ErrPriceMismatch,
				"product %d price changed to %s", line.ProductID, item.Product.Price.StringFixed(2))
		}
	}
	return nil
}

// GetOrder hides other users' orders behind NotFound unless viewer is an admin.
func (s *orderServiceImpl) GetOrder(ctx context.Context, viewer model.Principal, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, apperror.Persistence(notFoundOr(err, "order %d not found", orderID), "get order")
	}
	if order.UserID != viewer.UserID && !viewer.IsAdmin() {
		return nil, apperror.NotFound("order %d not found", orderID)
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, viewer model.Principal, status model.OrderStatus, page repository.Page) (*dto.OrderList, error) {
	if status != "" && !status.Valid() {
		return nil, apperror.Validation("unknown order status %q", status)
	}

	filter := repository.OrderFilter{Status: status, Page: page.Normalize(15)}
	if !viewer.IsAdmin() {
		filter.UserID = &viewer.UserID
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence(err, "list orders")
	}

	return &dto.OrderList{
		Orders:   orders,
		Metadata: dto.NewMetadata(total, filter.Page.Page, filter.Page.Limit),
	}, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID uint, next model.OrderStatus) (*model.Order, error) {
	if !next.Valid() {
		return nil, apperror.Validation("unknown order status %q", next)
	}
	return s.transition(ctx, orderID, func(tx *gorm.DB, order *model.Order) error {
		if !order.Status.CanTransitionTo(next) {
			return apperror.Validation("order %d cannot move from %s to %s", orderID, order.Status, next)
		}
		n, err := s.orderRepo.UpdateStatus(ctx, tx, orderID, order.Status, next)
		return guarded(n, err, orderID)
	})
}

func (s *orderServiceImpl) UpdatePaymentStatus(ctx context.Context, orderID uint, next model.PaymentStatus) (*model.Order, error) {
	if !next.Valid() {
		return nil, apperror.Validation("unknown payment status %q", next)
	}
	return s.transition(ctx, orderID, func(tx *gorm.DB, order *model.Order) error {
		if !order.PaymentStatus.CanTransitionTo(next) {
			return apperror.Validation("order %d payment cannot move from %s to %s", orderID, order.PaymentStatus, next)
		}
		n, err := s.orderRepo.UpdatePaymentStatus(ctx, tx, orderID, order.PaymentStatus, next)
		return guarded(n, err, orderID)
	})
}

// CancelOrder lets a customer cancel their own order while it is pending.
func (s *orderServiceImpl) CancelOrder(ctx context.Context, userID uint, orderID uint) (*model.Order, error) {
	return s.transition(ctx, orderID, func(tx *gorm.DB, order *model.Order) error {
		if order.UserID != userID {
			return apperror.NotFound("order %d not found", orderID)
		}
		if order.Status != model.OrderPending {
			return apperror.Validation("order %d is %s and can no longer be canceled", orderID, order.Status)
		}
		n, err := s.orderRepo.UpdateStatus(ctx, tx, orderID, model.OrderPending, model.OrderCanceled)
		return guarded(n, err, orderID)
	})
}

func (s *orderServiceImpl) transition(ctx context.Context, orderID uint, apply func(tx *gorm.DB, order *model.Order) error) (*model.Order, error) {
	var updated *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByID(ctx, tx, orderID)
		if err != nil {
			return notFoundOr(err, "order %d not found", orderID)
		}
		if err := apply(tx, order); err != nil {
			return err
		}
		updated, err = s.orderRepo.FindByID(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, apperror.Persistence(err, "update order %d", orderID)
	}

	s.log.Info("order updated",
		zap.Uint("order_id", orderID),
		zap.String("status", string(updated.Status)),
		zap.String("payment_status", string(updated.PaymentStatus)),
	)
	return updated, nil
}

func guarded(n int64, err error, orderID uint) error {
	if err != nil {
		return fmt.Errorf("update order %d: %w", orderID, err)
	}
	if n == 0 {
		return apperror.New(apperror.ErrConflict, "order %d was modified concurrently", orderID)
	}
	return nil
}
