package repository

import (
	"context"
	"storefront-api/internal/model"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *model.Review) error
	Ratings(ctx context.Context, tx *gorm.DB, productID uint) ([]int, error)
	ListByProduct(ctx context.Context, productID uint) ([]*model.Review, error)
	HasPurchased(ctx context.Context, tx *gorm.DB, userID, productID uint) (bool, error)
}

type reviewRepoImpl struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepoImpl{
		db: db,
	}
}

func (r *reviewRepoImpl) Create(ctx context.Context, tx *gorm.DB, review *model.Review) error {
	return tx.WithContext(ctx).Create(review).Error
}

func (r *reviewRepoImpl) Ratings(ctx context.Context, tx *gorm.DB, productID uint) ([]int, error) {
	var ratings []int
	err := tx.WithContext(ctx).Model(&model.Review{}).
		Where("product_id = ?", productID).
		Pluck("rating", &ratings).Error

	if err != nil {
		return nil, err
	}

	return ratings, nil
}

func (r *reviewRepoImpl) ListByProduct(ctx context.Context, productID uint) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").Order("id DESC").
		Find(&reviews).Error

	if err != nil {
		return nil, err
	}

	return reviews, nil
}

// HasPurchased reports whether the user has a non-canceled order containing
// the product.
func (r *reviewRepoImpl) HasPurchased(ctx context.Context, tx *gorm.DB, userID, productID uint) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status <> ?", userID, productID, model.OrderCanceled).
		Count(&count).Error

	return count > 0, err
}
