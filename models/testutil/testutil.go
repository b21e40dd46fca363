package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mytheresa/stockroom/config"
	"github.com/mytheresa/stockroom/database"
	"github.com/mytheresa/stockroom/logger"
	"github.com/mytheresa/stockroom/models"
)

// DB opens a fresh, migrated sqlite database in the test's temp dir.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &config.Config{
		Env:               "test",
		DBDriver:          config.DriverSQLite,
		SQLitePath:        filepath.Join(tb.TempDir(), "stockroom_test.db"),
		LowStockThreshold: config.DefaultLowStockThreshold,
		ShutdownTimeout:   time.Second,
	}
	db, err := database.Open(cfg, logger.Nop())
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := models.NewStore(db).AutoMigrate(context.Background()); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Store wraps DB in a models.Store.
func Store(tb testing.TB) *models.Store {
	tb.Helper()
	return models.NewStore(DB(tb))
}

func SeedCategory(tb testing.TB, store *models.Store, name string) *models.Category {
	tb.Helper()
	category := &models.Category{Name: name}
	if err := store.Categories.CreateCategory(context.Background(), category); err != nil {
		tb.Fatalf("seed category %q: %v", name, err)
	}
	return category
}

func SeedProduct(tb testing.TB, store *models.Store, categoryID uint, name string, quantity int, price string) *models.Product {
	tb.Helper()
	product := &models.Product{
		Name:       name,
		Quantity:   quantity,
		UnitPrice:  decimal.RequireFromString(price),
		CategoryID: categoryID,
	}
	if err := store.Products.CreateProduct(context.Background(), product); err != nil {
		tb.Fatalf("seed product %q: %v", name, err)
	}
	return product
}
