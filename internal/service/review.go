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

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReviewService interface {
	SubmitReview(ctx context.Context, userID uint, req *dto.CreateReviewRequest) (*model.Review, error)
	ListProductReviews(ctx context.Context, slugOrID string) ([]*model.Review, error)
}

type reviewServiceImpl struct {
	db           *gorm.DB
	reviewRepo   repository.ReviewRepository
	productRepo  repository.ProductRepository
	productCache cache.ProductCache
	log          *zap.Logger
}

func NewReviewService(
	db *gorm.DB,
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	productCache cache.ProductCache,
	log *zap.Logger,
) ReviewService {
	return &reviewServiceImpl{
		db:           db,
		reviewRepo:   reviewRepo,
		productRepo:  productRepo,
		productCache: productCache,
		log:          log,
	}
}

// SubmitReview stores the review and recomputes the product's rating and
// review count from every review, holding the product row lock throughout.
func (s *reviewServiceImpl) SubmitReview(ctx context.Context, userID uint, req *dto.CreateReviewRequest) (*model.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperror.Validation("rating must be between 1 and 5")
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Title:     strings.TrimSpace(req.Title),
		Content:   strings.TrimSpace(req.Content),
	}

	var (
		product *model.Product
		rating  decimal.Decimal
		count   int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.productRepo.FindByIDForUpdate(ctx, tx, req.ProductID)
		if err != nil {
			return notFoundOr(err, "product %d not found", req.ProductID)
		}

		review.IsVerified, err = s.reviewRepo.HasPurchased(ctx, tx, userID, req.ProductID)
		if err != nil {
			return fmt.Errorf("check purchase: %w", err)
		}
		if err := s.reviewRepo.Create(ctx, tx, review); err != nil {
			return fmt.Errorf("store review in db: %w", err)
		}

		ratings, err := s.reviewRepo.Ratings(ctx, tx, req.ProductID)
		if err != nil {
			return fmt.Errorf("load ratings: %w", err)
		}
		rating, count = averageRating(ratings), len(ratings)

		return s.productRepo.UpdateRating(ctx, tx, req.ProductID, rating, count)
	})
	if err != nil {
		return nil, apperror.Persistence(err, "submit review")
	}

	s.productCache.Invalidate(ctx, product)
	s.log.Info("review aggregated",
		zap.Uint("product_id", req.ProductID),
		zap.String("rating", rating.String()),
		zap.Int("review_count", count),
	)
	return review, nil
}

// averageRating is the mean rounded half up to one decimal place.
func averageRating(ratings []int) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(len(ratings))), 1)
}

// ListProductReviews accepts either a numeric product id or a slug.
func (s *reviewServiceImpl) ListProductReviews(ctx context.Context, slugOrID string) ([]*model.Review, error) {
	var (
		product *model.Product
		err     error
	)
	if id, idErr := strconv.ParseUint(slugOrID, 10, 64); idErr == nil {
		product, err = s.productRepo.FindByID(ctx, s.db, uint(id))
	} else {
		product, err = s.productRepo.FindBySlug(ctx, slugOrID)
	}
	if err != nil {
		return nil, apperror.Persistence(notFoundOr(err, "product %q not found", slugOrID), "list reviews")
	}

	reviews, err := s.reviewRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, apperror.Persistence(err, "list reviews")
	}
	return reviews, nil
}
