package service

import (
	"context"
	"fmt"
	"storefront-api/internal/apperror"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CartService interface {
	// AddItem reports created=false when the quantity was merged into an
	// existing line.
	AddItem(ctx context.Context, owner model.Owner, productID uint, quantity int) (item *model.CartItem, created bool, err error)
	// SetQuantity returns a nil item when quantity < 1 removed the line.
	SetQuantity(ctx context.Context, owner model.Owner, itemID uint, quantity int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, owner model.Owner, itemID uint) error
	ListItems(ctx context.Context, owner model.Owner) ([]*model.CartItem, error)
	Quote(ctx context.Context, owner model.Owner, couponCode string) (*dto.CartSummary, error)
	MergeSessionCart(ctx context.Context, sessionID string, userID uint) (int, error)
}

type cartServiceImpl struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	log         *zap.Logger
}

func NewCartService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	log *zap.Logger,
) CartService {
	return &cartServiceImpl{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		log:         log,
	}
}

func (s *cartServiceImpl) AddItem(ctx context.Context, owner model.Owner, productID uint, quantity int) (*model.CartItem, bool, error) {
	if !owner.Valid() {
		return nil, false, apperror.New(apperror.ErrUnauthorized, "no cart owner")
	}
	if quantity < 1 {
		return nil, false, apperror.Validation("quantity must be a positive integer")
	}

	var item *model.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.productRepo.FindByID(ctx, tx, productID); err != nil {
			return notFoundOr(err, "product %d not found", productID)
		}

		line, err := s.cartRepo.Upsert(ctx, tx, owner, productID, quantity)
		if err != nil {
			return fmt.Errorf("upsert cart line: %w", err)
		}
		item = line
		return nil
	})
	if err != nil {
		return nil, false, apperror.Persistence(err, "add item to cart")
	}

	// quantities are positive, so only a fresh line can hold exactly the
	// amount just added
	return item, item.Quantity == quantity, nil
}

func (s *cartServiceImpl) SetQuantity(ctx context.Context, owner model.Owner, itemID uint, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, s.RemoveItem(ctx, owner, itemID)
	}

	var item *model.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.cartRepo.SetQuantity(ctx, tx, owner, itemID, quantity)
		if err != nil {
			return fmt.Errorf("update cart line: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("cart item %d not found", itemID)
		}

		item, err = s.cartRepo.FindOwned(ctx, tx, owner, itemID)
		return err
	})
	if err != nil {
		return nil, apperror.Persistence(err, "update cart item")
	}

	return item, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, owner model.Owner, itemID uint) error {
	n, err := s.cartRepo.Delete(ctx, s.db, owner, itemID)
	if err != nil {
		return apperror.Persistence(err, "remove cart item")
	}
	if n == 0 {
		return apperror.NotFound("cart item %d not found", itemID)
	}
	return nil
}

func (s *cartServiceImpl) ListItems(ctx context.Context, owner model.Owner) ([]*model.CartItem, error) {
	items, err := s.cartRepo.List(ctx, s.db, owner)
	if err != nil {
		return nil, apperror.Persistence(err, "list cart items")
	}
	return items, nil
}

func (s *cartServiceImpl) Quote(ctx context.Context, owner model.Owner, couponCode string) (*dto.CartSummary, error) {
	var summary *dto.CartSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.cartRepo.List(ctx, tx, owner)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}

		quote, err := quoteCart(ctx, tx, s.couponRepo, items, couponCode, time.Now())
		if err != nil {
			return err
		}

		summary = &dto.CartSummary{Summary: quote.Summary}
		for _, item := range items {
			summary.ItemCount += item.Quantity
		}
		if quote.Coupon != nil {
			summary.CouponCode = quote.Coupon.Code
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Persistence(err, "quote cart")
	}

	return summary, nil
}

// MergeSessionCart moves an anonymous cart into the user's cart, summing
// quantities for products present in both.
func (s *cartServiceImpl) MergeSessionCart(ctx context.Context, sessionID string, userID uint) (int, error) {
	if sessionID == "" {
		return 0, nil
	}
	from := model.SessionOwner(sessionID)
	to := model.UserOwner(userID)

	var merged int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.cartRepo.ListForUpdate(ctx, tx, from)
		if err != nil {
			return fmt.Errorf("load session cart: %w", err)
		}

		for _, item := range items {
			if _, err := s.cartRepo.Upsert(ctx, tx, to, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("merge product %d: %w", item.ProductID, err)
			}
		}

		if _, err := s.cartRepo.DeleteAll(ctx, tx, from); err != nil {
			return fmt.Errorf("clear session cart: %w", err)
		}
		merged = len(items)
		return nil
	})
	if err != nil {
		return 0, apperror.Persistence(err, "merge session cart")
	}

	if merged > 0 {
		s.log.Info("session cart merged",
			zap.Uint("user_id", userID),
			zap.Int("lines", merged),
		)
	}
	return merged, nil
}
