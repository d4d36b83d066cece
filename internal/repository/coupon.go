package repository

import (
	"context"
	"storefront-api/internal/model"

	"gorm.io/gorm"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	List(ctx context.Context) ([]*model.Coupon, error)
	FindByCode(ctx context.Context, tx *gorm.DB, code string) (*model.Coupon, error)
	IncrementUsage(ctx context.Context, tx *gorm.DB, couponID uint) (int64, error)
}

type couponRepoImpl struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepoImpl{
		db: db,
	}
}

func (r *couponRepoImpl) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepoImpl) List(ctx context.Context) ([]*model.Coupon, error) {
	var coupons []*model.Coupon
	err := r.db.WithContext(ctx).Order("id DESC").Find(&coupons).Error
	if err != nil {
		return nil, err
	}

	return coupons, nil
}

func (r *couponRepoImpl) FindByCode(ctx context.Context, tx *gorm.DB, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := tx.WithContext(ctx).
		Where("code = ?", code).
		First(&coupon).Error

	if err != nil {
		return nil, err
	}

	return &coupon, nil
}

// IncrementUsage bumps usage_count unless the usage limit is already reached.
func (r *couponRepoImpl) IncrementUsage(ctx context.Context, tx *gorm.DB, couponID uint) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", couponID).
		Update("usage_count", gorm.Expr("usage_count + 1"))

	return result.RowsAffected, result.Error
}
