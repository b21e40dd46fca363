package app

import (
	"net/http"

	"github.com/mytheresa/stockroom/app/api"
	"github.com/mytheresa/stockroom/app/catalog"
	"github.com/mytheresa/stockroom/app/categories"
	"github.com/mytheresa/stockroom/app/middleware"
	"github.com/mytheresa/stockroom/app/reports"
	"github.com/mytheresa/stockroom/app/stock"
	"github.com/mytheresa/stockroom/logger"
)

// Inventory is everything the HTTP API needs from the inventory service.
type Inventory interface {
	catalog.ProductProvider
	categories.CategoryProvider
	stock.StockProvider
	reports.ReportProvider
}

// NewRouter registers every route on a ServeMux and wraps it in the
// request id, request log and recovery middleware.
func NewRouter(svc Inventory, log *logger.Logger) http.Handler {
	catalogHandler := catalog.NewCatalogHandler(svc, log)
	categoriesHandler := categories.NewCategoryHandler(svc, log)
	stockHandler := stock.NewStockHandler(svc, log)
	reportHandler := reports.NewReportHandler(svc, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /categories", categoriesHandler.HandleGetAll)
	mux.HandleFunc("POST /categories", categoriesHandler.HandleCreate)
	mux.HandleFunc("DELETE /categories/{id}", categoriesHandler.HandleDelete)

	mux.HandleFunc("GET /products", catalogHandler.HandleGet)
	mux.HandleFunc("POST /products", catalogHandler.HandleCreate)
	mux.HandleFunc("GET /products/{id}", catalogHandler.HandleGetProduct)
	mux.HandleFunc("PATCH /products/{id}", catalogHandler.HandleUpdate)
	mux.HandleFunc("DELETE /products/{id}", catalogHandler.HandleDelete)

	mux.HandleFunc("POST /deliveries", stockHandler.HandleDelivery)
	mux.HandleFunc("POST /products/{id}/issue", stockHandler.HandleIssue)

	mux.HandleFunc("GET /reports/dashboard", reportHandler.HandleDashboard)
	mux.HandleFunc("GET /reports/categories", reportHandler.HandleCategories)
	mux.HandleFunc("GET /reports/export.csv", reportHandler.HandleExport)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLog(log),
		middleware.Recovery(log),
	)
}
