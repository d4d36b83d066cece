package dto

import (
	"storefront-api/internal/model"
	"storefront-api/internal/pricing"
	"time"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"fullName" validate:"max=255"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"` // username or email
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
	// MergedItems is the number of anonymous cart lines moved into the user's cart.
	MergedItems int `json:"mergedItems"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Address  *string `json:"address" validate:"omitempty,max=255"`
	City     *string `json:"city" validate:"omitempty,max=128"`
	State    *string `json:"state" validate:"omitempty,max=128"`
	ZipCode  *string `json:"zipCode" validate:"omitempty,max=32"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type AddCartItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartSummary struct {
	pricing.Summary
	ItemCount  int    `json:"itemCount"`
	CouponCode string `json:"couponCode,omitempty"`
}

type Address struct {
	FullName string `json:"fullName" validate:"required,max=255"`
	Address  string `json:"address" validate:"required,max=255"`
	City     string `json:"city" validate:"required,max=128"`
	State    string `json:"state" validate:"required,max=128"`
	ZipCode  string `json:"zipCode" validate:"required,max=32"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

func (a Address) Model() model.Address {
	return model.Address{
		FullName: a.FullName,
		Address:  a.Address,
		City:     a.City,
		State:    a.State,
		ZipCode:  a.ZipCode,
		Phone:    a.Phone,
	}
}

// OrderLine is what the client believed it was buying. It is checked
// against the cart, never used to price the order.
type OrderLine struct {
	ProductID uint             `json:"productId" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	Price     *decimal.Decimal `json:"price"`
}

type PlaceOrderRequest struct {
	ShippingAddress Address     `json:"shippingAddress"`
	BillingAddress  *Address    `json:"billingAddress"`
	PaymentMethod   string      `json:"paymentMethod" validate:"required,oneof=credit_card paypal"`
	Notes           string      `json:"notes" validate:"max=2000"`
	CouponCode      string      `json:"couponCode" validate:"max=64"`
	Items           []OrderLine `json:"items" validate:"omitempty,dive"`

	// Figures the client displayed; optional, compared to the server's.
	Subtotal *decimal.Decimal `json:"subtotal"`
	Tax      *decimal.Decimal `json:"tax"`
	Shipping *decimal.Decimal `json:"shipping"`
	Discount *decimal.Decimal `json:"discount"`
	Total    *decimal.Decimal `json:"total"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" validate:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus model.PaymentStatus `json:"paymentStatus" validate:"required"`
}

type CreateReviewRequest struct {
	ProductID uint   `json:"productId" validate:"required"`
	Rating    int    `json:"rating"`
	Title     string `json:"title" validate:"max=255"`
	Content   string `json:"content" validate:"max=5000"`
}

type ProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Slug           *string          `json:"slug" validate:"omitempty,min=1,max=255"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	CategoryID     *uint            `json:"categoryId"`
	ImageURL       *string          `json:"imageUrl" validate:"omitempty,url,max=512"`
	Inventory      *int             `json:"inventory" validate:"omitempty,min=0"`
	IsNew          *bool            `json:"isNew"`
	IsOnSale       *bool            `json:"isOnSale"`
	Tags           []string         `json:"tags" validate:"omitempty,dive,max=64"`
}

type ProductDetail struct {
	*model.Product
	Related []*model.Product `json:"relatedProducts"`
	Reviews []*model.Review  `json:"reviews"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Slug        string `json:"slug" validate:"required,max=128"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url,max=512"`
}

type CreateCouponRequest struct {
	Code            string           `json:"code" validate:"required,max=64"`
	Type            model.CouponType `json:"type" validate:"required,oneof=percentage fixed_amount"`
	Value           decimal.Decimal  `json:"value"`
	MinimumPurchase *decimal.Decimal `json:"minimumPurchase"`
	StartsAt        *time.Time       `json:"startsAt"`
	ExpiresAt       *time.Time       `json:"expiresAt"`
	UsageLimit      *int             `json:"usageLimit" validate:"omitempty,min=1"`
}

type Metadata struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
}

func NewMetadata(total int64, page, limit int) Metadata {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Metadata{
		Total:       total,
		CurrentPage: page,
		Limit:       limit,
		TotalPages:  pages,
		HasPrevPage: page > 1,
		HasNextPage: page < pages,
	}
}

type ProductList struct {
	Products []*model.Product `json:"products"`
	Metadata Metadata         `json:"metadata"`
}

type OrderList struct {
	Orders   []*model.Order `json:"orders"`
	Metadata Metadata       `json:"metadata"`
}
