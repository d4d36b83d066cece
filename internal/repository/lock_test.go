package repository

import (
	"context"
	"storefront-api/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMySQLDryRun returns a mysql-dialect handle that builds statements
// without a server, and the list of SELECTs it has built.
func newMySQLDryRun(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/storefront?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var statements []string
	err = db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	})
	require.NoError(t, err)

	return db, &statements
}

func TestProductFindByIDForUpdateLocksRow(t *testing.T) {
	db, statements := newMySQLDryRun(t)
	repo := NewProductRepository(db)

	_, err := repo.FindByIDForUpdate(context.Background(), db, 7)
	require.NoError(t, err)

	require.NotEmpty(t, *statements)
	assert.Contains(t, (*statements)[0], "FROM `products`")
	assert.Contains(t, (*statements)[0], "FOR UPDATE")
}

func TestCartListForUpdateLocksRows(t *testing.T) {
	db, statements := newMySQLDryRun(t)
	repo := NewCartRepository(db)

	_, err := repo.ListForUpdate(context.Background(), db, model.UserOwner(3))
	require.NoError(t, err)

	require.NotEmpty(t, *statements)
	assert.Contains(t, (*statements)[0], "FROM `cart_items`")
	assert.Contains(t, (*statements)[0], "FOR UPDATE")
}

func TestCartListDoesNotLock(t *testing.T) {
	db, statements := newMySQLDryRun(t)
	repo := NewCartRepository(db)

	_, err := repo.List(context.Background(), db, model.UserOwner(3))
	require.NoError(t, err)

	require.NotEmpty(t, *statements)
	assert.NotContains(t, (*statements)[0], "FOR UPDATE")
}
