package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Store bundles the catalog repositories over one gorm handle. Inside InTx the
// handle is the transaction, so repository calls made through the tx Store
// commit or roll back together.
type Store struct {
	db         *gorm.DB
	now        func() time.Time
	Categories *CategoriesRepository
	Products   *ProductsRepository
}

func NewStore(db *gorm.DB) *Store {
	return newStore(db, func() time.Time { return time.Now().UTC() })
}

// NewStoreWithClock is NewStore with a custom time source for last_updated stamps.
func NewStoreWithClock(db *gorm.DB, now func() time.Time) *Store {
	return newStore(db, now)
}

func newStore(db *gorm.DB, now func() time.Time) *Store {
	return &Store{
		db:         db,
		now:        now,
		Categories: &CategoriesRepository{db: db, now: now},
		Products:   &ProductsRepository{db: db, now: now},
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// AutoMigrate creates or updates the categories and products tables.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Category{}, &Product{}); err != nil {
		return translateError("auto migrate", err)
	}
	return s.backfillNameLower(ctx)
}

// backfillNameLower fills name_lower for rows written before the column existed.
func (s *Store) backfillNameLower(ctx context.Context) error {
	var stale []Product
	if err := s.db.WithContext(ctx).
		Select("id", "name").
		Where("name_lower IS NULL OR name_lower = ''").
		Find(&stale).Error; err != nil {
		return translateError("backfill name_lower", err)
	}
	for _, p := range stale {
		if err := s.db.WithContext(ctx).
			Model(&Product{}).
			Where("id = ?", p.ID).
			UpdateColumn("name_lower", NormalizeName(p.Name)).Error; err != nil {
			return translateError("backfill name_lower", err)
		}
	}
	return nil
}

// InTx runs fn inside a single database transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newStore(tx, s.now))
	})
	if err != nil && !isClassified(err) {
		return translateError("transaction", err)
	}
	return err
}

func isClassified(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrDuplicateName, ErrInvalidCategory, ErrCategoryNotEmpty,
		ErrInsufficientStock, ErrInvalidQuantity, ErrInvalidPrice, ErrInvalidName, ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
