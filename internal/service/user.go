package service

import (
	"context"
	"errors"
	"storefront-api/internal/apperror"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"storefront-api/internal/token"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, sessionID string) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, sessionID string) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateProfileRequest) (*model.User, error)
}

type userServiceImpl struct {
	userRepo    repository.UserRepository
	cartService CartService
	tokens      *token.Manager
	log         *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	cartService CartService,
	tokens *token.Manager,
	log *zap.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		cartService: cartService,
		tokens:      tokens,
		log:         log,
	}
}

// Register creates a customer account. Any anonymous cart of the calling
// session becomes the new user's cart.
func (s *userServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest, sessionID string) (*dto.AuthResponse, error) {
	if len(req.Password) < 8 {
		return nil, apperror.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrPersistence, err, "hash password")
	}

	user := &model.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hash),
		FullName: strings.TrimSpace(req.FullName),
		Role:     model.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, apperror.New(apperror.ErrConflict, "username or email already registered")
		}
		return nil, apperror.Persistence(err, "create user")
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	return s.authenticate(ctx, user, sessionID)
}

func (s *userServiceImpl) Login(ctx context.Context, req *dto.LoginRequest, sessionID string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.ErrUnauthorized, "invalid credentials")
		}
		return nil, apperror.Persistence(err, "find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.New(apperror.ErrUnauthorized, "invalid credentials")
	}

	return s.authenticate(ctx, user, sessionID)
}

func (s *userServiceImpl) authenticate(ctx context.Context, user *model.User, sessionID string) (*dto.AuthResponse, error) {
	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrPersistence, err, "issue token")
	}

	// the account is already committed; a failed merge leaves the session
	// cart in place for the next login
	merged, err := s.cartService.MergeSessionCart(ctx, sessionID, user.ID)
	if err != nil {
		s.log.Warn("session cart merge failed",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		merged = 0
	}

	return &dto.AuthResponse{
		User:        user,
		Token:       signed,
		MergedItems: merged,
	}, nil
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Persistence(notFoundOr(err, "user %d not found", userID), "get profile")
	}
	return user, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateProfileRequest) (*model.User, error) {
	fields := map[string]interface{}{}
	set := func(column string, value *string) {
		if value != nil {
			fields[column] = strings.TrimSpace(*value)
		}
	}
	set("full_name", req.FullName)
	set("address", req.Address)
	set("city", req.City)
	set("state", req.State)
	set("zip_code", req.ZipCode)
	set("phone", req.Phone)
	if req.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateProfile(ctx, userID, fields); err != nil {
			if isDuplicate(err) {
				return nil, apperror.New(apperror.ErrConflict, "email already registered")
			}
			return nil, apperror.Persistence(notFoundOr(err, "user %d not found", userID), "update profile")
		}
	}

	return s.GetProfile(ctx, userID)
}
