package repository

import (
	"context"
	"storefront-api/internal/model"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortRating    ProductSort = "rating"
	SortName      ProductSort = "name"
)

var productOrder = map[ProductSort]string{
	SortNewest:    "products.created_at DESC, products.id DESC",
	SortPriceAsc:  "products.price ASC, products.id ASC",
	SortPriceDesc: "products.price DESC, products.id ASC",
	SortRating:    "products.rating DESC, products.review_count DESC, products.id ASC",
	SortName:      "products.name ASC, products.id ASC",
}

func (s ProductSort) Valid() bool {
	_, ok := productOrder[s]
	return ok
}

// ProductFilter drives both the listing query and its total count.
type ProductFilter struct {
	CategorySlug string
	Search       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinRating    *decimal.Decimal
	Sort         ProductSort
	Page
}

func (f ProductFilter) apply(db *gorm.DB) *gorm.DB {
	if f.CategorySlug != "" {
		db = db.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		db = db.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", like, like)
	}
	if f.MinPrice != nil {
		db = db.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("products.price <= ?", *f.MaxPrice)
	}
	if f.MinRating != nil {
		db = db.Where("products.rating >= ?", *f.MinRating)
	}
	return db
}

type ProductRepository interface {
	Seed(ctx context.Context) error
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, tx *gorm.DB, productID uint, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, productID uint) (int64, error)
	FindByID(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*model.Product, int64, error)
	Related(ctx context.Context, product *model.Product, limit int) ([]*model.Product, error)
	UpdateRating(ctx context.Context, tx *gorm.DB, productID uint, rating decimal.Decimal, count int) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

// Seed loads a small demo catalog. Existing slugs are left untouched.
func (r *productRepoImpl) Seed(ctx context.Context) error {
	categories := []model.Category{
		{Name: "Electronics", Slug: "electronics", Description: "Gadgets and accessories"},
		{Name: "Home & Kitchen", Slug: "home-kitchen", Description: "Everything for the home"},
		{Name: "Books", Slug: "books", Description: "Paperbacks and hardcovers"},
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error
	if err != nil {
		return err
	}

	bySlug := make(map[string]uint)
	var stored []model.Category
	if err := r.db.WithContext(ctx).Find(&stored).Error; err != nil {
		return err
	}
	for _, c := range stored {
		bySlug[c.Slug] = c.ID
	}
	category := func(slug string) *uint {
		id := bySlug[slug]
		return &id
	}

	products := []model.Product{
		{Name: "Wireless Earbuds", Slug: "wireless-earbuds", Price: decimal.RequireFromString("49.99"), CategoryID: category("electronics"), Inventory: 120, IsNew: true, Tags: []string{"audio", "bluetooth"}},
		{Name: "USB-C Charger", Slug: "usb-c-charger", Price: decimal.RequireFromString("19.99"), CategoryID: category("electronics"), Inventory: 300, Tags: []string{"power"}},
		{Name: "Chef Knife", Slug: "chef-knife", Price: decimal.RequireFromString("34.50"), CategoryID: category("home-kitchen"), Inventory: 45, IsOnSale: true, CompareAtPrice: decimal.NewNullDecimal(decimal.RequireFromString("44.00"))},
		{Name: "Pour Over Kettle", Slug: "pour-over-kettle", Price: decimal.RequireFromString("27.00"), CategoryID: category("home-kitchen"), Inventory: 60},
		{Name: "The Go Programming Language", Slug: "go-programming-language", Price: decimal.RequireFromString("39.95"), CategoryID: category("books"), Inventory: 80, Tags: []string{"programming"}},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Create(product).Error
}

func (r *productRepoImpl) Update(ctx context.Context, tx *gorm.DB, productID uint, fields map[string]interface{}) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(fields)

	return result.RowsAffected, result.Error
}

func (r *productRepoImpl) Delete(ctx context.Context, tx *gorm.DB, productID uint) (int64, error) {
	result := tx.WithContext(ctx).Delete(&model.Product{}, productID)
	return result.RowsAffected, result.Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error) {
	var product model.Product
	err := tx.WithContext(ctx).
		Preload("Category").
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error) {
	var product model.Product
	err := forUpdate(tx.WithContext(ctx)).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ?", slug).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) List(ctx context.Context, filter ProductFilter) ([]*model.Product, int64, error) {
	page := filter.Page.Normalize(12)
	order, ok := productOrder[filter.Sort]
	if !ok {
		order = productOrder[SortNewest]
	}

	var total int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Scopes(filter.apply).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var products []*model.Product
	err = r.db.WithContext(ctx).
		Scopes(filter.apply).
		Preload("Category").
		Order(order).
		Limit(page.Limit).Offset(page.Offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepoImpl) Related(ctx context.Context, product *model.Product, limit int) ([]*model.Product, error) {
	var products []*model.Product
	if product.CategoryID == nil {
		return products, nil
	}

	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ?", *product.CategoryID, product.ID).
		Order("rating DESC").Order("id ASC").
		Limit(limit).
		Find(&products).Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

// UpdateRating writes both aggregate columns in one statement.
func (r *productRepoImpl) UpdateRating(ctx context.Context, tx *gorm.DB, productID uint, rating decimal.Decimal, count int) error {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       rating,
			"review_count": count,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
