package service

import (
	"context"
	"storefront-api/internal/apperror"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"strings"

	"github.com/shopspring/decimal"
)

type CouponService interface {
	CreateCoupon(ctx context.Context, req *dto.CreateCouponRequest) (*model.Coupon, error)
	ListCoupons(ctx context.Context) ([]*model.Coupon, error)
}

type couponServiceImpl struct {
	couponRepo repository.CouponRepository
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponServiceImpl{
		couponRepo: couponRepo,
	}
}

var hundred = decimal.NewFromInt(100)

func (s *couponServiceImpl) CreateCoupon(ctx context.Context, req *dto.CreateCouponRequest) (*model.Coupon, error) {
	coupon := &model.Coupon{
		Code:       strings.ToUpper(strings.TrimSpace(req.Code)),
		Type:       req.Type,
		Value:      req.Value.Round(2),
		StartsAt:   req.StartsAt,
		ExpiresAt:  req.ExpiresAt,
		IsActive:   true,
		UsageLimit: req.UsageLimit,
	}
	if req.MinimumPurchase != nil {
		coupon.MinimumPurchase = decimal.NewNullDecimal(req.MinimumPurchase.Round(2))
	}

	switch {
	case coupon.Code == "":
		return nil, apperror.Validation("code is required")
	case coupon.Type != model.CouponPercentage && coupon.Type != model.CouponFixedAmount:
		return nil, apperror.Validation("unknown coupon type %q", coupon.Type)
	case !coupon.Value.IsPositive():
		return nil, apperror.Validation("value must be positive")
	case coupon.Type == model.CouponPercentage && coupon.Value.GreaterThan(hundred):
		return nil, apperror.Validation("percentage must not exceed 100")
	case coupon.StartsAt != nil && coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(*coupon.StartsAt):
		return nil, apperror.Validation("expiresAt must be after startsAt")
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		if isDuplicate(err) {
			return nil, apperror.New(apperror.ErrConflict, "coupon %q already exists", coupon.Code)
		}
		return nil, apperror.Persistence(err, "create coupon")
	}
	return coupon, nil
}

func (s *couponServiceImpl) ListCoupons(ctx context.Context) ([]*model.Coupon, error) {
	coupons, err := s.couponRepo.List(ctx)
	if err != nil {
		return nil, apperror.Persistence(err, "list coupons")
	}
	return coupons, nil
}
