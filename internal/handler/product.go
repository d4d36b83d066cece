package handler

import (
	"net/http"
	"storefront-api/internal/apperror"
	"storefront-api/internal/dto"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := productFilter(c)
	if err != nil {
		return err
	}

	products, err := h.productService.ListProducts(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func productFilter(c echo.Context) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		CategorySlug: c.QueryParam("category"),
		Search:       c.QueryParam("search"),
		Sort:         repository.ProductSort(c.QueryParam("sort")),
	}

	var err error
	if filter.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.MinRating, err = queryDecimal(c, "rating"); err != nil {
		return filter, err
	}
	if filter.Page.Page, err = queryInt(c, "page"); err != nil {
		return filter, err
	}
	if filter.Page.Limit, err = queryInt(c, "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryDecimal(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.Validation("invalid %s %q", name, raw)
	}
	return &d, nil
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.productService.GetProduct(ctx, c.Param("id")) // id or slug
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.productService.CreateProduct(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.productService.UpdateProduct(ctx, id, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
