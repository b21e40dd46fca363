package stock

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mytheresa/stockroom/app/api"
	"github.com/mytheresa/stockroom/app/catalog"
	"github.com/mytheresa/stockroom/inventory"
	"github.com/mytheresa/stockroom/logger"
	"github.com/mytheresa/stockroom/models"
)

type StockProvider interface {
	RegisterDelivery(ctx context.Context, d inventory.Delivery) (*models.Product, bool, error)
	IssueStock(ctx context.Context, productID uint, qty int) (*models.Product, error)
}

type DeliveryResponse struct {
	Created bool            `json:"created"`
	Product catalog.Product `json:"product"`
}

type StockHandler struct {
	svc StockProvider
	log *logger.Logger
}

func NewStockHandler(s StockProvider, log *logger.Logger) *StockHandler {
	return &StockHandler{svc: s, log: log.With("handler", "stock")}
}

// HandleDelivery registers a delivery. It answers 201 when the product was
// created and 200 when an existing product was restocked.
func (h *StockHandler) HandleDelivery(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name       string          `json:"name"`
		CategoryID uint            `json:"category_id"`
		Quantity   int             `json:"quantity"`
		UnitPrice  decimal.Decimal `json:"unit_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(input.Name) == "" || input.CategoryID == 0 {
		api.WriteError(w, http.StatusBadRequest, "Missing name or category_id")
		return
	}

	product, created, err := h.svc.RegisterDelivery(r.Context(), inventory.Delivery{
		Name:       input.Name,
		CategoryID: input.CategoryID,
		Quantity:   input.Quantity,
		UnitPrice:  input.UnitPrice,
	})
	if err != nil {
		api.WriteDomainError(w, h.log, err, "Failed to register delivery")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	api.WriteJSON(w, status, DeliveryResponse{Created: created, Product: catalog.NewProduct(*product)})
}

func (h *StockHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := h.svc.IssueStock(r.Context(), id, input.Quantity)
	if err != nil {
		api.WriteDomainError(w, h.log, err, "Failed to issue stock")
		return
	}

	api.WriteJSON(w, http.StatusOK, catalog.NewProduct(*product))
}
