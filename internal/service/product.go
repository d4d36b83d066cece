package service

import (
	"context"
	"fmt"
	"storefront-api/internal/apperror"
	"storefront-api/internal/cache"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const relatedProductsLimit = 4

type ProductService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) (*dto.ProductList, error)
	GetProduct(ctx context.Context, slugOrID string) (*dto.ProductDetail, error)
	CreateProduct(ctx context.Context, req *dto.ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, productID uint, req *dto.ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, productID uint) error
}

type productServiceImpl struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	reviewRepo   repository.ReviewRepository
	cartRepo     repository.CartRepository
	productCache cache.ProductCache
	log          *zap.Logger
}

func NewProductService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	cartRepo repository.CartRepository,
	productCache cache.ProductCache,
	log *zap.Logger,
) ProductService {
	return &productServiceImpl{
		db:           db,
		productRepo:  productRepo,
		reviewRepo:   reviewRepo,
		cartRepo:     cartRepo,
		productCache: productCache,
		log:          log,
	}
}

func (s *productServiceImpl) ListProducts(ctx context.Context, filter repository.ProductFilter) (*dto.ProductList, error) {
	if filter.Sort != "" && !filter.Sort.Valid() {
		return nil, apperror.Validation("unknown sort %q", filter.Sort)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, apperror.Validation("minPrice must not exceed maxPrice")
	}
	filter.Page = filter.Page.Normalize(12)

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence(err, "list products")
	}

	return &dto.ProductList{
		Products: products,
		Metadata: dto.NewMetadata(total, filter.Page.Page, filter.Page.Limit),
	}, nil
}

// GetProduct accepts either a numeric id or a slug.
func (s *productServiceImpl) GetProduct(ctx context.Context, slugOrID string) (*dto.ProductDetail, error) {
	product, err := s.lookup(ctx, slugOrID)
	if err != nil {
		return nil, apperror.Persistence(notFoundOr(err, "product %q not found", slugOrID), "get product")
	}

	related, err := s.productRepo.Related(ctx, product, relatedProductsLimit)
	if err != nil {
		return nil, apperror.Persistence(err, "load related products")
	}
	reviews, err := s.reviewRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, apperror.Persistence(err, "load reviews")
	}

	return &dto.ProductDetail{
		Product: product,
		Related: related,
		Reviews: reviews,
	}, nil
}

func (s *productServiceImpl) lookup(ctx context.Context, slugOrID string) (*model.Product, error) {
	id, idErr := strconv.ParseUint(slugOrID, 10, 64)
	key := cache.SlugKey(slugOrID)
	if idErr == nil {
		key = cache.IDKey(uint(id))
	}
	if product, ok := s.productCache.Get(ctx, key); ok {
		return product, nil
	}

	var (
		product *model.Product
		err     error
	)
	if idErr == nil {
		product, err = s.productRepo.FindByID(ctx, s.db, uint(id))
	} else {
		product, err = s.productRepo.FindBySlug(ctx, slugOrID)
	}
	if err != nil {
		return nil, err
	}

	s.productCache.Set(ctx, product)
	return product, nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req *dto.ProductRequest) (*model.Product, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, apperror.Validation("name is required")
	}
	if req.Price == nil {
		return nil, apperror.Validation("price is required")
	}

	product := &model.Product{}
	if err := applyProductRequest(product, req); err != nil {
		return nil, err
	}
	if product.Slug == "" {
		product.Slug = slug.Make(product.Name)
	}
	if product.Slug == "" {
		return nil, apperror.Validation("name %q does not produce a usable slug", product.Name)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if isDuplicate(err) {
			return nil, apperror.New(apperror.ErrConflict, "slug %q is already taken", product.Slug)
		}
		return nil, apperror.Persistence(err, "create product")
	}

	s.log.Info("product created", zap.Uint("product_id", product.ID), zap.String("slug", product.Slug))
	return product, nil
}

// UpdateProduct writes only the fields present in req. rating and
// review_count are not reachable from here.
func (s *productServiceImpl) UpdateProduct(ctx context.Context, productID uint, req *dto.ProductRequest) (*model.Product, error) {
	var before, after *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		before, err = s.productRepo.FindByIDForUpdate(ctx, tx, productID)
		if err != nil {
			return notFoundOr(err, "product %d not found", productID)
		}

		updated := *before
		if err := applyProductRequest(&updated, req); err != nil {
			return err
		}
		if updated.Slug == "" {
			return apperror.Validation("slug must contain at least one letter or digit")
		}
		fields := map[string]interface{}{
			"name":             updated.Name,
			"slug":             updated.Slug,
			"description":      updated.Description,
			"price":            updated.Price,
			"compare_at_price": updated.CompareAtPrice,
			"category_id":      updated.CategoryID,
			"image_url":        updated.ImageURL,
			"inventory":        updated.Inventory,
			"is_new":           updated.IsNew,
			"is_on_sale":       updated.IsOnSale,
			"tags":             updated.Tags,
		}
		if _, err := s.productRepo.Update(ctx, tx, productID, fields); err != nil {
			if isDuplicate(err) {
				return apperror.New(apperror.ErrConflict, "slug %q is already taken", updated.Slug)
			}
			return fmt.Errorf("update product: %w", err)
		}

		after, err = s.productRepo.FindByID(ctx, tx, productID)
		return err
	})
	if err != nil {
		return nil, apperror.Persistence(err, "update product %d", productID)
	}

	s.productCache.Invalidate(ctx, before)
	s.productCache.Invalidate(ctx, after)
	return after, nil
}

// DeleteProduct soft-deletes the product and drops it from every cart.
// Past order items keep pointing at it.
func (s *productServiceImpl) DeleteProduct(ctx context.Context, productID uint) error {
	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.productRepo.FindByIDForUpdate(ctx, tx, productID)
		if err != nil {
			return notFoundOr(err, "product %d not found", productID)
		}
		if err := s.cartRepo.DeleteByProduct(ctx, tx, productID); err != nil {
			return fmt.Errorf("remove product from carts: %w", err)
		}
		if _, err := s.productRepo.Delete(ctx, tx, productID); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperror.Persistence(err, "delete product %d", productID)
	}

	s.productCache.Invalidate(ctx, product)
	s.log.Info("product deleted", zap.Uint("product_id", productID))
	return nil
}

func applyProductRequest(p *model.Product, req *dto.ProductRequest) error {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		p.Slug = slug.Make(*req.Slug)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return apperror.Validation("price must be positive")
		}
		p.Price = req.Price.Round(2)
	}
	if req.CompareAtPrice != nil {
		if req.CompareAtPrice.IsNegative() {
			return apperror.Validation("compareAtPrice must not be negative")
		}
		p.CompareAtPrice = decimal.NewNullDecimal(req.CompareAtPrice.Round(2))
	}
	if req.CategoryID != nil {
		id := *req.CategoryID
		p.CategoryID = &id
		p.Category = nil
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.Inventory != nil {
		if *req.Inventory < 0 {
			return apperror.Validation("inventory must not be negative")
		}
		p.Inventory = *req.Inventory
	}
	if req.IsNew != nil {
		p.IsNew = *req.IsNew
	}
	if req.IsOnSale != nil {
		p.IsOnSale = *req.IsOnSale
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	return nil
}
