// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"storefront-api/internal/client"
	"storefront-api/internal/config"
	"storefront-api/internal/model"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database in a temp dir. A file database is
// used rather than :memory: so every connection sees the same data.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.InitDatabase(config.Database{
		Driver:       "sqlite",
		URL:          filepath.Join(t.TempDir(), "test.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateProduct(t *testing.T, db *gorm.DB, slug, price string) *model.Product {
	t.Helper()

	product := &model.Product{
		Name:      slug,
		Slug:      slug,
		Price:     decimal.RequireFromString(price),
		Inventory: 100,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func CreateUser(t *testing.T, db *gorm.DB, username string, role string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		FullName: username,
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
