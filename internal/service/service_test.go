package service

import (
	"storefront-api/internal/cache"
	"storefront-api/internal/repository"
	"storefront-api/internal/testutil"
	"storefront-api/internal/token"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	cart     CartService
	orders   OrderService
	reviews  ReviewService
	products ProductService
	users    UserService
	coupons  CouponService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := zap.NewNop()
	productCache := cache.NewProductCache(nil, time.Minute, log)

	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	userRepo := repository.NewUserRepository(db)

	cart := NewCartService(db, cartRepo, productRepo, couponRepo, log)
	return &testEnv{
		db:       db,
		cart:     cart,
		orders:   NewOrderService(db, orderRepo, cartRepo, couponRepo, log),
		reviews:  NewReviewService(db, reviewRepo, productRepo, productCache, log),
		products: NewProductService(db, productRepo, reviewRepo, cartRepo, productCache, log),
		users:    NewUserService(userRepo, cart, token.NewManager("test-secret", time.Hour), log),
		coupons:  NewCouponService(couponRepo),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
