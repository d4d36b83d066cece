package service

import (
	"context"
	"storefront-api/internal/apperror"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"storefront-api/internal/testutil"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProductLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product, err := env.products.CreateProduct(ctx, &dto.ProductRequest{
		Name:  strPtr("Blue Mug"),
		Price: decPtr("12.499"),
	})
	require.NoError(t, err)
	assert.Equal(t, "blue-mug", product.Slug)
	assert.True(t, dec("12.50").Equal(product.Price))

	_, err = env.products.CreateProduct(ctx, &dto.ProductRequest{Name: strPtr("Blue Mug"), Price: decPtr("3")})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	updated, err := env.products.UpdateProduct(ctx, product.ID, &dto.ProductRequest{Price: decPtr("14.00")})
	require.NoError(t, err)
	assert.True(t, dec("14.00").Equal(updated.Price))
	assert.Equal(t, "Blue Mug", updated.Name)

	detail, err := env.products.GetProduct(ctx, "blue-mug")
	require.NoError(t, err)
	assert.Equal(t, product.ID, detail.ID)

	detail, err = env.products.GetProduct(ctx, strconv.FormatUint(uint64(product.ID), 10))
	require.NoError(t, err)
	assert.Equal(t, "blue-mug", detail.Slug)

	_, err = env.products.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.products.CreateProduct(ctx, &dto.ProductRequest{Price: decPtr("1")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.products.CreateProduct(ctx, &dto.ProductRequest{Name: strPtr("x"), Price: decPtr("0")})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDeleteProductClearsCarts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := testutil.CreateProduct(t, env.db, "mug", "12.00")
	owner := model.SessionOwner("s-1")

	_, _, err := env.cart.AddItem(ctx, owner, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, env.products.DeleteProduct(ctx, product.ID))

	items, err := env.cart.ListItems(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = env.products.GetProduct(ctx, "mug")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.ErrorIs(t, env.products.DeleteProduct(ctx, product.ID), apperror.ErrNotFound)
}

func TestListProductsValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.products.ListProducts(ctx, repository.ProductFilter{Sort: "cheapest"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.products.ListProducts(ctx, repository.ProductFilter{MinPrice: decPtr("10"), MaxPrice: decPtr("5")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	list, err := env.products.ListProducts(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Products)
	assert.Equal(t, 1, list.Metadata.CurrentPage)
	assert.Equal(t, 12, list.Metadata.Limit)
}

func TestCreateProductTransliteratesSlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cafe, err := env.products.CreateProduct(ctx, &dto.ProductRequest{Name: strPtr("Café Crème"), Price: decPtr("4.50")})
	require.NoError(t, err)
	assert.Equal(t, "cafe-creme", cafe.Slug)

	tea, err := env.products.CreateProduct(ctx, &dto.ProductRequest{Name: strPtr("日本茶"), Price: decPtr("8.00")})
	require.NoError(t, err)
	assert.NotEmpty(t, tea.Slug)

	chai, err := env.products.CreateProduct(ctx, &dto.ProductRequest{Name: strPtr("Чай"), Price: decPtr("6.00")})
	require.NoError(t, err)
	assert.NotEmpty(t, chai.Slug)
	assert.NotEqual(t, tea.Slug, chai.Slug)

	detail, err := env.products.GetProduct(ctx, tea.Slug)
	require.NoError(t, err)
	assert.Equal(t, tea.ID, detail.ID)

	_, err = env.products.CreateProduct(ctx, &dto.ProductRequest{Name: strPtr("!!!"), Price: decPtr("1.00")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.products.UpdateProduct(ctx, cafe.ID, &dto.ProductRequest{Slug: strPtr("???")})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
