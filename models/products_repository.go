package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// ProductFilters narrows GetFilteredProducts. Empty fields do not filter;
// set fields are combined with AND.
type ProductFilters struct {
	NameContains string
	MinPrice     *float64
	CategoryID   *uint
}

// joined selects products inner-joined to their category. Rows whose
// category_id does not resolve are excluded from every read that uses it.
func (r *ProductsRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Product{}).
		InnerJoins("Category").
		Order("products.id ASC")
}

// GetAllProducts returns every product together with its category.
func (r *ProductsRepository) GetAllProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := r.joined(ctx).Find(&products).Error; err != nil {
		return nil, translateError("list products", err)
	}
	return products, nil
}

func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, filters ProductFilters) ([]Product, error) {
	query := r.joined(ctx)

	if name := strings.TrimSpace(filters.NameContains); name != "" {
		query = query.Where("products.name_lower LIKE ? ESCAPE '\\'", "%"+escapeLike(NormalizeName(name))+"%")
	}
	if filters.MinPrice != nil {
		query = query.Where("products.unit_price >= ?", *filters.MinPrice)
	}
	if filters.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filters.CategoryID)
	}

	var products []Product
	if err := query.Find(&products).Error; err != nil {
		return nil, translateError("search products", err)
	}
	return products, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, translateError("get product", err)
	}
	return &product, nil
}

func (r *ProductsRepository) GetByName(ctx context.Context, name string) (*Product, error) {
	return r.getByName(ctx, name, false)
}

// GetByNameForUpdate is GetByName taking a row lock where the backend supports it.
// Only meaningful inside a transaction.
func (r *ProductsRepository) GetByNameForUpdate(ctx context.Context, name string) (*Product, error) {
	return r.getByName(ctx, name, true)
}

func (r *ProductsRepository) getByName(ctx context.Context, name string, lock bool) (*Product, error) {
	query := r.db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product Product
	if err := query.Where("name = ?", name).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, translateError("get product by name", err)
	}
	return &product, nil
}

// CreateProduct inserts a product. An unknown category fails with
// ErrInvalidCategory, a taken name with ErrDuplicateName.
func (r *ProductsRepository) CreateProduct(ctx context.Context, product *Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return ErrInvalidName
	}
	if product.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if !ValidPrice(product.UnitPrice) {
		return ErrInvalidPrice
	}

	db := r.db.WithContext(ctx)
	var count int64
	if err := db.Model(&Category{}).Where("id = ?", product.CategoryID).Count(&count).Error; err != nil {
		return translateError("create product", err)
	}
	if count == 0 {
		return ErrInvalidCategory
	}

	product.LastUpdated = r.now()
	if err := db.Omit(clause.Associations).Create(product).Error; err != nil {
		return translateError("create product", err)
	}
	return nil
}

// UpdateProductQuantity sets the quantity and, when price is non-nil, the unit price.
func (r *ProductsRepository) UpdateProductQuantity(ctx context.Context, id uint, quantity int, price *decimal.Decimal) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	updates := map[string]interface{}{
		"quantity":     quantity,
		"last_updated": r.now(),
	}
	if price != nil {
		if !ValidPrice(*price) {
			return ErrInvalidPrice
		}
		updates["unit_price"] = *price
	}
	return r.update("update product", r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id), updates)
}

// AddStock increments the quantity by delta and replaces the unit price in one statement.
func (r *ProductsRepository) AddStock(ctx context.Context, id uint, delta int, price decimal.Decimal) error {
	if delta <= 0 {
		return ErrInvalidQuantity
	}
	if !ValidPrice(price) {
		return ErrInvalidPrice
	}
	updates := map[string]interface{}{
		"quantity":     gorm.Expr("quantity + ?", delta),
		"unit_price":   price,
		"last_updated": r.now(),
	}
	return r.update("add stock", r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id), updates)
}

// WithdrawStock decrements the quantity only while enough units remain, so the
// quantity can never drop below zero even when two withdrawals race.
func (r *ProductsRepository) WithdrawStock(ctx context.Context, id uint, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	res := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Updates(map[string]interface{}{
			"quantity":     gorm.Expr("quantity - ?", qty),
			"last_updated": r.now(),
		})
	if res.Error != nil {
		return translateError("withdraw stock", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Nothing updated: tell a missing product apart from a short one.
	var count int64
	if err := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError("withdraw stock", err)
	}
	if count == 0 {
		return ErrProductNotFound
	}
	return ErrInsufficientStock
}

func (r *ProductsRepository) DeleteProduct(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return translateError("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductsRepository) DeleteProductByName(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&Product{})
	if res.Error != nil {
		return translateError("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductsRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Product{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, translateError("count products", err)
	}
	return count, nil
}

func (r *ProductsRepository) update(op string, query *gorm.DB, updates map[string]interface{}) error {
	res := query.Updates(updates)
	if res.Error != nil {
		return translateError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
