package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mytheresa/stockroom/logger"
	"github.com/mytheresa/stockroom/models"
)

// Delivery is an incoming batch of a product, identified by its name.
type Delivery struct {
	Name       string
	CategoryID uint
	Quantity   int
	UnitPrice  decimal.Decimal
}

// SearchQuery filters the product list. Both fields are optional.
type SearchQuery struct {
	Name     string
	MinPrice *float64
}

// Service implements the inventory rules on top of the catalog store.
// Every operation is one request against the store; the mutating ones that
// read before they write run in a single transaction.
type Service struct {
	store     *models.Store
	log       *logger.Logger
	threshold int
}

func NewService(store *models.Store, log *logger.Logger, lowStockThreshold int) *Service {
	return &Service{
		store:     store,
		log:       log.With("service", "inventory"),
		threshold: lowStockThreshold,
	}
}

// LowStockThreshold is the quantity under which products are flagged.
func (s *Service) LowStockThreshold() int {
	return s.threshold
}

// RegisterDelivery adds a delivery to stock. An existing product with the same
// name gets its quantity increased and its price replaced; otherwise a new
// product is created. The bool result is true when a product was created.
func (s *Service) RegisterDelivery(ctx context.Context, d Delivery) (*models.Product, bool, error) {
	d.Name = strings.TrimSpace(d.Name)
	switch {
	case d.Name == "":
		return nil, false, models.ErrInvalidName
	case d.Quantity <= 0:
		return nil, false, models.ErrInvalidQuantity
	case !models.ValidPrice(d.UnitPrice):
		return nil, false, models.ErrInvalidPrice
	}

	var (
		result  *models.Product
		created bool
	)
	err := s.store.InTx(ctx, func(tx *models.Store) error {
		if _, err := tx.Categories.GetByID(ctx, d.CategoryID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.ErrInvalidCategory
			}
			return err
		}

		existing, err := tx.Products.GetByNameForUpdate(ctx, d.Name)
		switch {
		case errors.Is(err, models.ErrNotFound):
			product := &models.Product{
				Name:       d.Name,
				Quantity:   d.Quantity,
				UnitPrice:  d.UnitPrice,
				CategoryID: d.CategoryID,
			}
			if err := tx.Products.CreateProduct(ctx, product); err != nil {
				if errors.Is(err, models.ErrDuplicateName) {
					// Another delivery created the row after our lookup.
					return fmt.Errorf("%w: %w", models.ErrConflict, err)
				}
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			if err := tx.Products.AddStock(ctx, existing.ID, d.Quantity, d.UnitPrice); err != nil {
				return err
			}
		}

		product, err := tx.Products.GetByName(ctx, d.Name)
		if err != nil {
			return err
		}
		result = product
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("register delivery: %w", err)
	}

	s.log.Info("Delivery registered",
		"product_id", result.ID,
		"name", result.Name,
		"added", d.Quantity,
		"quantity", result.Quantity,
		"created", created,
	)
	return result, created, nil
}

// IssueStock withdraws qty units. It fails with ErrInsufficientStock when fewer
// than qty units are on hand and leaves the quantity unchanged.
func (s *Service) IssueStock(ctx context.Context, productID uint, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, models.ErrInvalidQuantity
	}

	var result *models.Product
	err := s.store.InTx(ctx, func(tx *models.Store) error {
		if err := tx.Products.WithdrawStock(ctx, productID, qty); err != nil {
			return err
		}
		product, err := tx.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		result = product
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("issue stock: %w", err)
	}

	s.log.Info("Stock issued", "product_id", productID, "issued", qty, "quantity", result.Quantity)
	if result.Quantity < s.threshold {
		s.log.Warn("Product below low-stock threshold", "product_id", productID, "quantity", result.Quantity, "threshold", s.threshold)
	}
	return result, nil
}

func (s *Service) DeleteProduct(ctx context.Context, productID uint) error {
	if err := s.store.Products.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.log.Info("Product deleted", "product_id", productID)
	return nil
}

// DeleteCategory removes a category that no product references.
func (s *Service) DeleteCategory(ctx context.Context, categoryID uint) error {
	if err := s.store.Categories.DeleteCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.log.Info("Category deleted", "category_id", categoryID)
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	category := &models.Category{Name: name, Description: strings.TrimSpace(description)}
	if err := s.store.Categories.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.log.Info("Category created", "category_id", category.ID, "name", category.Name)
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories.GetAllCategories(ctx)
}

// CreateProduct adds a product directly, without the delivery upsert.
// A zero quantity is allowed here.
func (s *Service) CreateProduct(ctx context.Context, name string, quantity int, price decimal.Decimal, categoryID uint) (*models.Product, error) {
	product := &models.Product{
		Name:       name,
		Quantity:   quantity,
		UnitPrice:  price,
		CategoryID: categoryID,
	}
	if err := s.store.Products.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info("Product created", "product_id", product.ID, "name", product.Name)
	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct overwrites the quantity and, when price is non-nil, the unit price.
func (s *Service) UpdateProduct(ctx context.Context, productID uint, quantity int, price *decimal.Decimal) (*models.Product, error) {
	if err := s.store.Products.UpdateProductQuantity(ctx, productID, quantity, price); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.GetProduct(ctx, productID)
}

func (s *Service) GetProduct(ctx context.Context, productID uint) (*models.Product, error) {
	return s.store.Products.GetByID(ctx, productID)
}

// Search filters products by a case-insensitive name substring and an
// inclusive minimum price.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]models.Product, error) {
	return s.store.Products.GetFilteredProducts(ctx, models.ProductFilters{
		NameContains: q.Name,
		MinPrice:     q.MinPrice,
	})
}

func (s *Service) ComputeDashboard(ctx context.Context) (Dashboard, error) {
	products, err := s.store.Products.GetAllProducts(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("compute dashboard: %w", err)
	}
	return ComputeDashboard(products, s.threshold), nil
}

func (s *Service) ComputeCategoryReport(ctx context.Context) ([]CategoryShare, error) {
	products, err := s.store.Products.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute category report: %w", err)
	}
	return ComputeCategoryReport(products), nil
}
