package handler

import (
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) SubmitReview(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.PrincipalFrom(c)

	var req dto.CreateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := h.reviewService.SubmitReview(ctx, principal.UserID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) ListProductReviews(c echo.Context) error {
	ctx := c.Request().Context()

	reviews, err := h.reviewService.ListProductReviews(ctx, c.Param("id")) // id or slug
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reviews)
}
