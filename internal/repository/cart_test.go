package repository

import (
	"context"
	"storefront-api/internal/model"
	"storefront-api/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartUpsertMergesQuantity(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewCartRepository(db)
	product := testutil.CreateProduct(t, db, "mug", "12.00")
	owner := model.SessionOwner("s-1")

	first, err := repo.Upsert(ctx, db, owner, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)
	require.NotNil(t, first.Product)
	assert.Equal(t, "mug", first.Product.Slug)

	second, err := repo.Upsert(ctx, db, owner, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	lines, err := repo.List(ctx, db, owner)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCartOwnersDoNotCollide(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewCartRepository(db)
	user := testutil.CreateUser(t, db, "alice", model.RoleCustomer)
	product := testutil.CreateProduct(t, db, "mug", "12.00")

	// a session id that looks like the user's id is still a different owner
	_, err := repo.Upsert(ctx, db, model.SessionOwner("1"), product.ID, 1)
	require.NoError(t, err)
	line, err := repo.Upsert(ctx, db, model.UserOwner(user.ID), product.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)

	_, err = repo.FindOwned(ctx, db, model.SessionOwner("1"), line.ID)
	assert.Error(t, err)

	n, err := repo.Delete(ctx, db, model.SessionOwner("other"), line.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCartOwnerCheckConstraint(t *testing.T) {
	db := testutil.NewDB(t)
	product := testutil.CreateProduct(t, db, "mug", "12.00")
	user := testutil.CreateUser(t, db, "alice", model.RoleCustomer)

	sid := "s-1"
	both := &model.CartItem{UserID: &user.ID, SessionID: &sid, ProductID: product.ID, Quantity: 1}
	assert.Error(t, db.Create(both).Error)

	neither := &model.CartItem{ProductID: product.ID, Quantity: 1}
	assert.Error(t, db.Create(neither).Error)
}

func TestCartDeleteAll(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewCartRepository(db)
	a := testutil.CreateProduct(t, db, "a", "1.00")
	b := testutil.CreateProduct(t, db, "b", "2.00")
	owner := model.SessionOwner("s-1")

	_, err := repo.Upsert(ctx, db, owner, a.ID, 1)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, db, owner, b.ID, 1)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, db, model.SessionOwner("s-2"), a.ID, 1)
	require.NoError(t, err)

	n, err := repo.DeleteAll(ctx, db, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	rest, err := repo.List(ctx, db, model.SessionOwner("s-2"))
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
