package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	FullName  string    `gorm:"size:255" json:"fullName"`
	Address   string    `gorm:"size:255" json:"address"`
	City      string    `gorm:"size:128" json:"city"`
	State     string    `gorm:"size:128" json:"state"`
	ZipCode   string    `gorm:"size:32" json:"zipCode"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Role      string    `gorm:"size:16;not null;default:customer" json:"role"` // customer, admin
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:128;not null" json:"name"`
	Slug        string `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:512" json:"imageUrl"`
}

type Product struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	Name           string                      `gorm:"size:255;not null" json:"name"`
	Slug           string                      `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description    string                      `gorm:"type:text" json:"description"`
	Price          decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"price"`
	CompareAtPrice decimal.NullDecimal         `gorm:"type:decimal(10,2)" json:"compareAtPrice"`
	CategoryID     *uint                       `gorm:"index" json:"categoryId"`
	Category       *Category                   `json:"category,omitempty"`
	ImageURL       string                      `gorm:"size:512" json:"imageUrl"`
	Inventory      int                         `gorm:"not null;default:0" json:"inventory"`
	IsNew          bool                        `gorm:"not null;default:false" json:"isNew"`
	IsOnSale       bool                        `gorm:"not null;default:false" json:"isOnSale"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	// rating and review_count are derived from reviews; only the review
	// aggregator writes them.
	Rating      decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`
	ReviewCount int             `gorm:"not null;default:0" json:"reviewCount"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// CartItem belongs to exactly one owner: a user or an anonymous session.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"uniqueIndex:idx_cart_user_product;check:chk_cart_items_owner,(user_id IS NULL) <> (session_id IS NULL)" json:"userId,omitempty"`
	SessionID *string   `gorm:"size:64;uniqueIndex:idx_cart_session_product" json:"-"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product;uniqueIndex:idx_cart_session_product" json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `gorm:"not null;check:chk_cart_items_quantity,quantity > 0" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Order struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	UserID          uint                        `gorm:"index;not null" json:"userId"`
	Status          OrderStatus                 `gorm:"size:32;index;not null;default:pending" json:"status"`
	Subtotal        decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Tax             decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"tax"`
	Shipping        decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"shipping"`
	Discount        decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"discount"`
	Total           decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"total"`
	CouponCode      string                      `gorm:"size:64" json:"couponCode,omitempty"`
	ShippingAddress datatypes.JSONType[Address] `json:"shippingAddress"`
	BillingAddress  datatypes.JSONType[Address] `json:"billingAddress"`
	PaymentMethod   string                      `gorm:"size:32;not null" json:"paymentMethod"`
	PaymentStatus   PaymentStatus               `gorm:"size:32;not null;default:pending" json:"paymentStatus"`
	Notes           string                      `gorm:"type:text" json:"notes,omitempty"`
	Items           []*OrderItem                `json:"items,omitempty"`
	CreatedAt       time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// OrderItem is the purchased line as it was at checkout. Price is the unit
// price at purchase time, not the live product price.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"orderId"`
	ProductID uint            `gorm:"index;not null" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	ProductID  uint      `gorm:"index;not null" json:"productId"`
	Rating     int       `gorm:"not null;check:chk_reviews_rating,rating BETWEEN 1 AND 5" json:"rating"`
	Title      string    `gorm:"size:255" json:"title,omitempty"`
	Content    string    `gorm:"type:text" json:"content,omitempty"`
	IsVerified bool      `gorm:"not null;default:false" json:"isVerified"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

type Coupon struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	Code            string              `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Type            CouponType          `gorm:"size:32;not null" json:"type"`
	Value           decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"value"`
	MinimumPurchase decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"minimumPurchase"`
	StartsAt        *time.Time          `json:"startsAt"`
	ExpiresAt       *time.Time          `json:"expiresAt"`
	IsActive        bool                `gorm:"not null;default:true" json:"isActive"`
	UsageLimit      *int                `json:"usageLimit"`
	UsageCount      int                 `gorm:"not null;default:0" json:"usageCount"`
	CreatedAt       time.Time           `json:"createdAt"`
}

type CouponType string

const (
	CouponPercentage  CouponType = "percentage"
	CouponFixedAmount CouponType = "fixed_amount"
)
