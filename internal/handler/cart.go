package handler

import (
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.cartService.ListItems(ctx, middleware.OwnerFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()

	summary, err := h.cartService.Quote(ctx, middleware.OwnerFrom(c), c.QueryParam("coupon"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, created, err := h.cartService.AddItem(ctx, middleware.OwnerFrom(c), req.ProductID, req.Quantity)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, item)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCartItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.cartService.SetQuantity(ctx, middleware.OwnerFrom(c), id, req.Quantity)
	if err != nil {
		return err
	}
	if item == nil {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.cartService.RemoveItem(ctx, middleware.OwnerFrom(c), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
