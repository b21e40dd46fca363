package categories

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mytheresa/stockroom/app/api"
	"github.com/mytheresa/stockroom/logger"
	"github.com/mytheresa/stockroom/models"
)

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryProvider interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type CategoryHandler struct {
	svc CategoryProvider
	log *logger.Logger
}

func NewCategoryHandler(s CategoryProvider, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{svc: s, log: log.With("handler", "categories")}
}

func toResponse(c models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		api.WriteDomainError(w, h.log, err, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = toResponse(c)
	}
	api.WriteJSON(w, http.StatusOK, response)
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if strings.TrimSpace(input.Name) == "" {
		api.WriteError(w, http.StatusBadRequest, "Missing name")
		return
	}

	category, err := h.svc.CreateCategory(r.Context(), input.Name, input.Description)
	if err != nil {
		api.WriteDomainError(w, h.log, err, "Failed to create category")
		return
	}

	api.WriteJSON(w, http.StatusCreated, toResponse(*category))
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		api.WriteDomainError(w, h.log, err, "Failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
