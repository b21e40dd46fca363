package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mytheresa/stockroom/app/api"
	"github.com/mytheresa/stockroom/inventory"
	"github.com/mytheresa/stockroom/logger"
	"github.com/mytheresa/stockroom/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Value       float64   `json:"value"`
	Category    Category  `json:"category"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewProduct maps a stored product onto its JSON shape.
func NewProduct(p models.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice.InexactFloat64(),
		Value:       p.Value().Round(2).InexactFloat64(),
		Category:    Category{ID: p.Category.ID, Name: p.Category.Name},
		LastUpdated: p.LastUpdated,
	}
}

type ProductProvider interface {
	Search(ctx context.Context, q inventory.SearchQuery) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, name string, quantity int, price decimal.Decimal, categoryID uint) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, quantity int, price *decimal.Decimal) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type CatalogHandler struct {
	svc ProductProvider
	log *logger.Logger
}

func NewCatalogHandler(s ProductProvider, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		svc: s,
		log: log.With("handler", "catalog"),
	}
}

// HandleGet lists products, optionally filtered by ?q= (name substring) and
// ?min_price= (inclusive, a finite number >= 0).
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	minPrice, ok := api.NonNegativeFloat(r, "min_price")
	if !ok {
		api.WriteError(w, http.StatusBadRequest, "Invalid min_price")
		return
	}
	query := inventory.SearchQuery{
		Name:     strings.TrimSpace(r.URL.Query().Get("q")),
		MinPrice: minPrice,
	}

	res, err := h.svc.Search(r.Context(), query)
	if err != nil {
		api.WriteDomainError(w, h.log, err, "failed to get products")
		return
	}

	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = NewProduct(p)
	}

	api.WriteJSON(w, http.StatusOK, Response{
		Total:    len(products),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		api.WriteDomainError(w, h.log, err, "Failed to retrieve product")
		return
	}

	api.WriteJSON(w, http.StatusOK, NewProduct(*product))
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name       string          `json:"name"`
		Quantity   int             `json:"quantity"`
		UnitPrice  decimal.Decimal `json:"unit_price"`
		CategoryID uint            `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(input.Name) == "" || input.CategoryID == 0 {
		api.WriteError(w, http.StatusBadRequest, "Missing name or category_id")
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), input.Name, input.Quantity, input.UnitPrice, input.CategoryID)
	if err != nil {
		api.WriteDomainError(w, h.log, err, "Failed to create product")
		return
	}

	api.WriteJSON(w, http.StatusCreated, NewProduct(*product))
}

func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	var input struct {
		Quantity  *int             `json:"quantity"`
		UnitPrice *decimal.Decimal `json:"unit_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.Quantity == nil {
		api.WriteError(w, http.StatusBadRequest, "Missing quantity")
		return
	}

	product, err := h.svc.UpdateProduct(r.Context(), id, *input.Quantity, input.UnitPrice)
	if err != nil {
		api.WriteDomainError(w, h.log, err, "Failed to update product")
		return
	}

	api.WriteJSON(w, http.StatusOK, NewProduct(*product))
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		api.WriteDomainError(w, h.log, err, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
