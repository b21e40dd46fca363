package reports

import (
	"context"
	"net/http"
	"strings"

	"github.com/mytheresa/stockroom/app/api"
	"github.com/mytheresa/stockroom/app/catalog"
	"github.com/mytheresa/stockroom/inventory"
	"github.com/mytheresa/stockroom/logger"
	"github.com/mytheresa/stockroom/models"
)

type DashboardResponse struct {
	SKUCount          int               `json:"sku_count"`
	TotalUnits        int64             `json:"total_units"`
	TotalValue        float64           `json:"total_value"`
	AveragePrice      float64           `json:"average_price"`
	LowStockThreshold int               `json:"low_stock_threshold"`
	LowStock          []catalog.Product `json:"low_stock"`
}

type CategoryShareResponse struct {
	CategoryID   uint    `json:"category_id"`
	Name         string  `json:"name"`
	SKUCount     int     `json:"sku_count"`
	SumValue     float64 `json:"sum_value"`
	PercentShare int64   `json:"percent_share"`
}

// NewDashboardResponse maps the dashboard figures onto their JSON shape.
func NewDashboardResponse(d inventory.Dashboard, threshold int) DashboardResponse {
	low := make([]catalog.Product, len(d.LowStock))
	for i, p := range d.LowStock {
		low[i] = catalog.NewProduct(p)
	}
	return DashboardResponse{
		SKUCount:          d.SKUCount,
		TotalUnits:        d.TotalUnits,
		TotalValue:        d.TotalValue.Round(2).InexactFloat64(),
		AveragePrice:      d.AveragePrice.InexactFloat64(),
		LowStockThreshold: threshold,
		LowStock:          low,
	}
}

func NewCategoryShares(shares []inventory.CategoryShare) []CategoryShareResponse {
	out := make([]CategoryShareResponse, len(shares))
	for i, s := range shares {
		out[i] = CategoryShareResponse{
			CategoryID:   s.CategoryID,
			Name:         s.CategoryName,
			SKUCount:     s.SKUCount,
			SumValue:     s.SumValue.Round(2).InexactFloat64(),
			PercentShare: s.PercentShare,
		}
	}
	return out
}

type ReportProvider interface {
	ComputeDashboard(ctx context.Context) (inventory.Dashboard, error)
	ComputeCategoryReport(ctx context.Context) ([]inventory.CategoryShare, error)
	Search(ctx context.Context, q inventory.SearchQuery) ([]models.Product, error)
	LowStockThreshold() int
}

type ReportHandler struct {
	svc ReportProvider
	log *logger.Logger
}

func NewReportHandler(s ReportProvider, log *logger.Logger) *ReportHandler {
	return &ReportHandler{svc: s, log: log.With("handler", "reports")}
}

func (h *ReportHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.ComputeDashboard(r.Context())
	if err != nil {
		api.WriteDomainError(w, h.log, err, "failed to compute dashboard")
		return
	}

	api.WriteJSON(w, http.StatusOK, NewDashboardResponse(d, h.svc.LowStockThreshold()))
}

func (h *ReportHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	shares, err := h.svc.ComputeCategoryReport(r.Context())
	if err != nil {
		api.WriteDomainError(w, h.log, err, "failed to compute category report")
		return
	}

	api.WriteJSON(w, http.StatusOK, NewCategoryShares(shares))
}

// HandleExport streams the (optionally filtered) product list as CSV.
func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	minPrice, ok := api.NonNegativeFloat(r, "min_price")
	if !ok {
		api.WriteError(w, http.StatusBadRequest, "Invalid min_price")
		return
	}
	products, err := h.svc.Search(r.Context(), inventory.SearchQuery{
		Name:     strings.TrimSpace(r.URL.Query().Get("q")),
		MinPrice: minPrice,
	})
	if err != nil {
		api.WriteDomainError(w, h.log, err, "failed to export products")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="stock.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := inventory.WriteCSV(w, products); err != nil {
		h.log.Error("failed to write csv export", "error", err)
	}
}
