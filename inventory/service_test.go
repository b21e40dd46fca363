package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/stockroom/logger"
	"github.com/mytheresa/stockroom/models"
	"github.com/mytheresa/stockroom/models/testutil"
)

func newTestService(t *testing.T) (*Service, *models.Store) {
	t.Helper()
	store := testutil.Store(t)
	return NewService(store, logger.Nop(), 5), store
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRegisterDeliveryAccumulates(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	electronics := testutil.SeedCategory(t, store, "Electronics")

	// Arrange / Act: first delivery creates the product.
	first, created, err := svc.RegisterDelivery(ctx, Delivery{Name: "Cable", CategoryID: electronics.ID, Quantity: 10, UnitPrice: price("2.50")})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 10, first.Quantity)
	assert.Equal(t, "25.00", first.Value().StringFixed(2))

	// Second delivery with the same name adds up and replaces the price.
	second, created, err := svc.RegisterDelivery(ctx, Delivery{Name: "Cable", CategoryID: electronics.ID, Quantity: 5, UnitPrice: price("2.75")})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 15, second.Quantity)
	assert.Equal(t, "2.75", second.UnitPrice.StringFixed(2))
	assert.Equal(t, "41.25", second.Value().StringFixed(2))
	assert.False(t, second.LastUpdated.Before(first.LastUpdated))

	products, err := store.Products.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestRegisterDeliveryValidation(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	electronics := testutil.SeedCategory(t, store, "Electronics")

	testCases := []struct {
		name     string
		delivery Delivery
		wantErr  error
	}{
		{name: "Zero quantity", delivery: Delivery{Name: "Cable", CategoryID: electronics.ID, Quantity: 0, UnitPrice: price("1")}, wantErr: models.ErrInvalidQuantity},
		{name: "Negative quantity", delivery: Delivery{Name: "Cable", CategoryID: electronics.ID, Quantity: -3, UnitPrice: price("1")}, wantErr: models.ErrInvalidQuantity},
		{name: "Negative price", delivery: Delivery{Name: "Cable", CategoryID: electronics.ID, Quantity: 1, UnitPrice: price("-0.01")}, wantErr: models.ErrInvalidPrice},
		{name: "Sub-cent price", delivery: Delivery{Name: "Cable", CategoryID: electronics.ID, Quantity: 1, UnitPrice: price("2.755")}, wantErr: models.ErrInvalidPrice},
		{name: "Price above column maximum", delivery: Delivery{Name: "Cable", CategoryID: electronics.ID, Quantity: 1, UnitPrice: price("100000000.00")}, wantErr: models.ErrInvalidPrice},
		{name: "Blank name", delivery: Delivery{Name: " ", CategoryID: electronics.ID, Quantity: 1, UnitPrice: price("1")}, wantErr: models.ErrInvalidName},
		{name: "Unknown category", delivery: Delivery{Name: "Cable", CategoryID: 404, Quantity: 1, UnitPrice: price("1")}, wantErr: models.ErrInvalidCategory},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.RegisterDelivery(ctx, tc.delivery)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	products, err := store.Products.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products, "failed deliveries must not leave rows behind")
}

func TestIssueStock(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	electronics := testutil.SeedCategory(t, store, "Electronics")
	cable := testutil.SeedProduct(t, store, electronics.ID, "Cable", 12, "2.00")

	got, err := svc.IssueStock(ctx, cable.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)

	got, err = svc.IssueStock(ctx, cable.ID, 12-5)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	_, err = svc.IssueStock(ctx, cable.ID, 1)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	_, err = svc.IssueStock(ctx, cable.ID, 0)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = svc.IssueStock(ctx, 999, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	stored, err := store.Products.GetByID(ctx, cable.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
}

func TestDeleteCategoryGuard(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	empty, err := svc.CreateCategory(ctx, "Empty", "")
	require.NoError(t, err)
	used, err := svc.CreateCategory(ctx, "Used", "has stock")
	require.NoError(t, err)
	product, err := svc.CreateProduct(ctx, "Cable", 0, price("1.00"), used.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, empty.ID))

	err = svc.DeleteCategory(ctx, used.ID)
	assert.ErrorIs(t, err, models.ErrCategoryNotEmpty)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Used", categories[0].Name)
	_, err = store.Products.GetByID(ctx, product.ID)
	assert.NoError(t, err)

	// Once the product is gone the category can go too.
	require.NoError(t, svc.DeleteProduct(ctx, product.ID))
	require.NoError(t, svc.DeleteCategory(ctx, used.ID))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, product.ID), models.ErrProductNotFound)
}

func TestCreateCategoryDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateCategory(ctx, "Electronics", "")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Electronics", "again")
	assert.ErrorIs(t, err, models.ErrDuplicateName)
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	electronics := testutil.SeedCategory(t, store, "Electronics")
	cable := testutil.SeedProduct(t, store, electronics.ID, "Cable", 3, "1.00")

	newPrice := price("1.25")
	got, err := svc.UpdateProduct(ctx, cable.ID, 9, &newPrice)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)
	assert.Equal(t, "1.25", got.UnitPrice.StringFixed(2))
	assert.Equal(t, "Electronics", got.Category.Name)
}

func TestComputeDashboardOnStore(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	d, err := svc.ComputeDashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, d.SKUCount)
	assert.Empty(t, d.LowStock)

	electronics := testutil.SeedCategory(t, store, "Electronics")
	testutil.SeedProduct(t, store, electronics.ID, "Four", 4, "1.00")
	testutil.SeedProduct(t, store, electronics.ID, "Five", 5, "2.00")

	d, err = svc.ComputeDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.SKUCount)
	assert.Equal(t, int64(9), d.TotalUnits)
	assert.Equal(t, "14.00", d.TotalValue.StringFixed(2))
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "Four", d.LowStock[0].Name)
}

func TestComputeCategoryReportOnStore(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	electronics := testutil.SeedCategory(t, store, "Electronics")
	garden := testutil.SeedCategory(t, store, "Garden")
	testutil.SeedProduct(t, store, electronics.ID, "Cable", 15, "2.75")
	testutil.SeedProduct(t, store, garden.ID, "Hose", 1, "123.75")

	report, err := svc.ComputeCategoryReport(ctx)
	require.NoError(t, err)

	require.Len(t, report, 2)
	assert.Equal(t, "Electronics", report[0].CategoryName)
	assert.Equal(t, int64(25), report[0].PercentShare)
	assert.Equal(t, "Garden", report[1].CategoryName)
	assert.Equal(t, int64(75), report[1].PercentShare)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	electronics := testutil.SeedCategory(t, store, "Electronics")
	testutil.SeedProduct(t, store, electronics.ID, "USB Cable", 10, "2.50")
	testutil.SeedProduct(t, store, electronics.ID, "Power Cable", 2, "8.00")
	testutil.SeedProduct(t, store, electronics.ID, "Plug", 2, "9.00")

	minPrice := 8.0
	products, err := svc.Search(ctx, SearchQuery{Name: "cAbLe", MinPrice: &minPrice})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Power Cable", products[0].Name)

	products, err = svc.Search(ctx, SearchQuery{})
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestSearchFoldsNonASCIINames(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	kitchen := testutil.SeedCategory(t, store, "Kitchen")

	_, _, err := svc.RegisterDelivery(ctx, Delivery{Name: "Éclair Tray", CategoryID: kitchen.ID, Quantity: 3, UnitPrice: price("12.00")})
	require.NoError(t, err)

	for _, q := range []string{"éclair", "ÉCLAIR", "Éclair tray"} {
		products, err := svc.Search(ctx, SearchQuery{Name: q})
		require.NoError(t, err, q)
		require.Len(t, products, 1, q)
		assert.Equal(t, "Éclair Tray", products[0].Name)
	}
}
