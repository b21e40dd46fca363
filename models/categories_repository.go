package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *CategoriesRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, translateError("list categories", err)
	}
	return categories, nil
}

func (r *CategoriesRepository) GetByID(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, translateError("get category", err)
	}
	return &category, nil
}

// CreateCategory inserts a category. The name is trimmed; an existing name
// (exact, case-sensitive match) fails with ErrDuplicateName.
func (r *CategoriesRepository) CreateCategory(ctx context.Context, category *Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return ErrInvalidName
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = r.now()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return translateError("create category", err)
	}
	return nil
}

// DeleteCategory removes an empty category. The product count and the delete
// run in one transaction; the RESTRICT foreign key backs the check up.
func (r *CategoriesRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return translateError("delete category", err)
		}

		products := &ProductsRepository{db: tx, now: r.now}
		count, err := products.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrCategoryNotEmpty
		}

		if err := tx.Delete(&category).Error; err != nil {
			if isForeignKeyViolation(err) {
				return ErrCategoryNotEmpty
			}
			return translateError("delete category", err)
		}
		return nil
	})
}
