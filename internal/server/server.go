package server

import (
	"context"
	"net/http"
	"storefront-api/internal/config"
	"storefront-api/internal/handler"
	appmw "storefront-api/internal/middleware"
	"storefront-api/internal/service"
	"storefront-api/internal/token"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Services struct {
	User     service.UserService
	Cart     service.CartService
	Order    service.OrderService
	Review   service.ReviewService
	Product  service.ProductService
	Category service.CategoryService
	Coupon   service.CouponService
}

type Server struct {
	echo            *echo.Echo
	userHandler     *handler.UserHandler
	cartHandler     *handler.CartHandler
	orderHandler    *handler.OrderHandler
	reviewHandler   *handler.ReviewHandler
	productHandler  *handler.ProductHandler
	categoryHandler *handler.CategoryHandler
	couponHandler   *handler.CouponHandler
}

func NewServer(cfg *config.Config, log *zap.Logger, tokens *token.Manager, services Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = errorHandler(log)
	e.Server.ReadTimeout = cfg.HTTP.ReadTimeout
	e.Server.WriteTimeout = cfg.HTTP.WriteTimeout

	e.Use(middleware.RequestID())
	e.Use(appmw.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: cfg.HTTP.RequestTimeout,
	}))
	e.Use(appmw.Session(appmw.SessionConfig{
		CookieName: cfg.Auth.SessionCookie,
		TTL:        cfg.Auth.SessionTTL,
		Secure:     cfg.Environment.IsProduction(),
	}))
	e.Use(appmw.Authenticate(tokens))

	s := &Server{
		echo:            e,
		userHandler:     handler.NewUserHandler(services.User),
		cartHandler:     handler.NewCartHandler(services.Cart),
		orderHandler:    handler.NewOrderHandler(services.Order),
		reviewHandler:   handler.NewReviewHandler(services.Review),
		productHandler:  handler.NewProductHandler(services.Product),
		categoryHandler: handler.NewCategoryHandler(services.Category),
		couponHandler:   handler.NewCouponHandler(services.Coupon),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")
	requireUser := appmw.RequireUser()
	requireAdmin := appmw.RequireAdmin()

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- auth / profile --------
	api.POST("/auth/register", s.userHandler.Register)
	api.POST("/auth/login", s.userHandler.Login)
	api.GET("/user", s.userHandler.GetProfile, requireUser)
	api.PUT("/user", s.userHandler.UpdateProfile, requireUser)

	// -------- catalog --------
	api.GET("/products", s.productHandler.ListProducts)
	api.GET("/products/:id", s.productHandler.GetProduct)
	api.GET("/products/:id/reviews", s.reviewHandler.ListProductReviews)
	api.POST("/products", s.productHandler.CreateProduct, requireAdmin)
	api.PUT("/products/:id", s.productHandler.UpdateProduct, requireAdmin)
	api.DELETE("/products/:id", s.productHandler.DeleteProduct, requireAdmin)

	api.GET("/categories", s.categoryHandler.ListCategories)
	api.POST("/categories", s.categoryHandler.CreateCategory, requireAdmin)

	// -------- cart (user or anonymous session) --------
	cart := api.Group("/cart")
	cart.GET("", s.cartHandler.ListItems)
	cart.GET("/summary", s.cartHandler.Summary)
	cart.POST("", s.cartHandler.AddItem)
	cart.PUT("/:id", s.cartHandler.UpdateItem)
	cart.DELETE("/:id", s.cartHandler.RemoveItem)

	// -------- orders --------
	orders := api.Group("/orders", requireUser)
	orders.POST("", s.orderHandler.PlaceOrder)
	orders.GET("", s.orderHandler.ListOrders)
	orders.GET("/:id", s.orderHandler.GetOrder)
	orders.POST("/:id/cancel", s.orderHandler.CancelOrder)
	orders.PATCH("/:id/status", s.orderHandler.UpdateStatus, requireAdmin)
	orders.PATCH("/:id/payment-status", s.orderHandler.UpdatePaymentStatus, requireAdmin)

	api.POST("/reviews", s.reviewHandler.SubmitReview, requireUser)

	// -------- admin --------
	coupons := api.Group("/coupons", requireAdmin)
	coupons.GET("", s.couponHandler.ListCoupons)
	coupons.POST("", s.couponHandler.CreateCoupon)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
