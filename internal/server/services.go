package server

import (
	"storefront-api/internal/cache"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"
	"storefront-api/internal/token"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewServices wires repositories into services.
func NewServices(db *gorm.DB, productCache cache.ProductCache, tokens *token.Manager, log *zap.Logger) Services {
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	cartService := service.NewCartService(db, cartRepo, productRepo, couponRepo, log)

	return Services{
		User:     service.NewUserService(userRepo, cartService, tokens, log),
		Cart:     cartService,
		Order:    service.NewOrderService(db, orderRepo, cartRepo, couponRepo, log),
		Review:   service.NewReviewService(db, reviewRepo, productRepo, productCache, log),
		Product:  service.NewProductService(db, productRepo, reviewRepo, cartRepo, productCache, log),
		Category: service.NewCategoryService(categoryRepo),
		Coupon:   service.NewCouponService(couponRepo),
	}
}
