package handler

import (
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

type CouponHandler struct {
	couponService service.CouponService
}

func NewCouponHandler(couponService service.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

func (h *CouponHandler) ListCoupons(c echo.Context) error {
	ctx := c.Request().Context()

	coupons, err := h.couponService.ListCoupons(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, coupons)
}

func (h *CouponHandler) CreateCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateCouponRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	coupon, err := h.couponService.CreateCoupon(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, coupon)
}
