package service

import (
	"context"
	"storefront-api/internal/apperror"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"strings"

	"github.com/gosimple/slug"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]*model.Category, error)
	CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*model.Category, error)
}

type categoryServiceImpl struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryServiceImpl{
		categoryRepo: categoryRepo,
	}
}

func (s *categoryServiceImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, apperror.Persistence(err, "list categories")
	}
	return categories, nil
}

func (s *categoryServiceImpl) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*model.Category, error) {
	category := &model.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug.Make(req.Slug),
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if category.Name == "" || category.Slug == "" {
		return nil, apperror.Validation("name and slug are required")
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if isDuplicate(err) {
			return nil, apperror.New(apperror.ErrConflict, "category %q already exists", category.Slug)
		}
		return nil, apperror.Persistence(err, "create category")
	}
	return category, nil
}
