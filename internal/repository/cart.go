package repository

import (
	"context"
	"storefront-api/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, owner model.Owner, productID uint, quantity int) (*model.CartItem, error)
	FindOwned(ctx context.Context, tx *gorm.DB, owner model.Owner, itemID uint) (*model.CartItem, error)
	SetQuantity(ctx context.Context, tx *gorm.DB, owner model.Owner, itemID uint, quantity int) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, owner model.Owner, itemID uint) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB, owner model.Owner) (int64, error)
	DeleteByProduct(ctx context.Context, tx *gorm.DB, productID uint) error
	List(ctx context.Context, tx *gorm.DB, owner model.Owner) ([]*model.CartItem, error)
	ListForUpdate(ctx context.Context, tx *gorm.DB, owner model.Owner) ([]*model.CartItem, error)
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

// Upsert inserts a line or adds quantity to the existing (owner, product)
// line in a single statement, then reads the resulting row back.
func (r *cartRepoImpl) Upsert(ctx context.Context, tx *gorm.DB, owner model.Owner, productID uint, quantity int) (*model.CartItem, error) {
	item := &model.CartItem{ProductID: productID, Quantity: quantity}
	owner.Assign(item)

	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: owner.ConflictColumn()}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
			"updated_at": time.Now(),
		}),
	}).Create(item).Error
	if err != nil {
		return nil, err
	}

	var line model.CartItem
	err = owner.Scope(tx.WithContext(ctx)).
		Preload("Product").
		Where("product_id = ?", productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (r *cartRepoImpl) FindOwned(ctx context.Context, tx *gorm.DB, owner model.Owner, itemID uint) (*model.CartItem, error) {
	var line model.CartItem
	err := owner.Scope(tx.WithContext(ctx)).
		Preload("Product").
		Where("id = ?", itemID).
		First(&line).Error

	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (r *cartRepoImpl) SetQuantity(ctx context.Context, tx *gorm.DB, owner model.Owner, itemID uint, quantity int) (int64, error) {
	result := owner.Scope(tx.WithContext(ctx).Model(&model.CartItem{})).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *cartRepoImpl) Delete(ctx context.Context, tx *gorm.DB, owner model.Owner, itemID uint) (int64, error) {
	result := owner.Scope(tx.WithContext(ctx)).
		Where("id = ?", itemID).
		Delete(&model.CartItem{})

	return result.RowsAffected, result.Error
}

func (r *cartRepoImpl) DeleteAll(ctx context.Context, tx *gorm.DB, owner model.Owner) (int64, error) {
	result := owner.Scope(tx.WithContext(ctx)).Delete(&model.CartItem{})
	return result.RowsAffected, result.Error
}

func (r *cartRepoImpl) DeleteByProduct(ctx context.Context, tx *gorm.DB, productID uint) error {
	return tx.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.CartItem{}).Error
}

func (r *cartRepoImpl) List(ctx context.Context, tx *gorm.DB, owner model.Owner) ([]*model.CartItem, error) {
	return r.list(owner.Scope(tx.WithContext(ctx)))
}

func (r *cartRepoImpl) ListForUpdate(ctx context.Context, tx *gorm.DB, owner model.Owner) ([]*model.CartItem, error) {
	return r.list(forUpdate(owner.Scope(tx.WithContext(ctx))))
}

func (r *cartRepoImpl) list(query *gorm.DB) ([]*model.CartItem, error) {
	var lines []*model.CartItem
	err := query.
		Preload("Product").
		Order("cart_items.id ASC").
		Find(&lines).Error

	if err != nil {
		return nil, err
	}

	return lines, nil
}
