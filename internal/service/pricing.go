package service

import (
	"context"
	"errors"
	"storefront-api/internal/apperror"
	"storefront-api/internal/model"
	"storefront-api/internal/pricing"
	"storefront-api/internal/repository"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type cartQuote struct {
	Summary pricing.Summary
	Lines   []pricing.Line
	Coupon  *model.Coupon
}

// quoteCart prices cart lines at live product prices. The cart summary and
// checkout both go through here.
func quoteCart(ctx context.Context, tx *gorm.DB, coupons repository.CouponRepository, items []*model.CartItem, couponCode string, now time.Time) (*cartQuote, error) {
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			return nil, apperror.Validation("product %d is no longer available", item.ProductID)
		}
		lines = append(lines, pricing.Line{UnitPrice: item.Product.Price, Quantity: item.Quantity})
	}

	quote := &cartQuote{
		Summary: pricing.Calculate(lines),
		Lines:   lines,
	}

	code := strings.ToUpper(strings.TrimSpace(couponCode))
	if code == "" || len(items) == 0 {
		return quote, nil
	}

	coupon, err := coupons.FindByCode(ctx, tx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validation("coupon %q is not valid", code)
		}
		return nil, err
	}

	discount, err := couponDiscount(coupon, quote.Summary.Subtotal, now)
	if err != nil {
		return nil, err
	}
	quote.Summary = quote.Summary.WithDiscount(discount)
	quote.Coupon = coupon
	return quote, nil
}

func couponDiscount(coupon *model.Coupon, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	switch {
	case !coupon.IsActive:
		return decimal.Zero, apperror.Validation("coupon %q is not active", coupon.Code)
	case coupon.StartsAt != nil && now.Before(*coupon.StartsAt):
		return decimal.Zero, apperror.Validation("coupon %q is not active yet", coupon.Code)
	case coupon.ExpiresAt != nil && !now.Before(*coupon.ExpiresAt):
		return decimal.Zero, apperror.Validation("coupon %q has expired", coupon.Code)
	case coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit:
		return decimal.Zero, apperror.Validation("coupon %q has been fully redeemed", coupon.Code)
	case coupon.MinimumPurchase.Valid && subtotal.LessThan(coupon.MinimumPurchase.Decimal):
		return decimal.Zero, apperror.Validation("coupon %q requires a subtotal of at least %s", coupon.Code, coupon.MinimumPurchase.Decimal.StringFixed(2))
	}

	if coupon.Type == model.CouponPercentage {
		return pricing.PercentOf(subtotal, coupon.Value), nil
	}
	return coupon.Value, nil
}
