package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/mytheresa/stockroom/logger"
	"github.com/mytheresa/stockroom/models"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// StatusFor maps an inventory error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidPrice),
		errors.Is(err, models.ErrInvalidName),
		errors.Is(err, models.ErrInvalidCategory):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateName),
		errors.Is(err, models.ErrCategoryNotEmpty),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// MessageFor is the user-facing text for err. Unclassified errors get
// fallback so driver details never reach the client.
func MessageFor(err error, fallback string) string {
	for _, known := range []error{
		models.ErrProductNotFound,
		models.ErrCategoryNotFound,
		models.ErrInvalidQuantity,
		models.ErrInvalidPrice,
		models.ErrInvalidName,
		models.ErrInvalidCategory,
		models.ErrDuplicateName,
		models.ErrCategoryNotEmpty,
		models.ErrInsufficientStock,
		models.ErrConflict,
		models.ErrNotFound,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return fallback
}

// WriteDomainError writes err with the status and message derived from its kind.
// 5xx errors are logged.
func WriteDomainError(w http.ResponseWriter, log *logger.Logger, err error, fallback string) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(fallback, "error", err)
	}
	WriteError(w, status, MessageFor(err, fallback))
}

// PathID parses a positive numeric path value.
func PathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// NonNegativeFloat parses an optional query parameter. A missing value yields
// nil; ok is false when the value is present but not a finite number >= 0.
func NonNegativeFloat(r *http.Request, name string) (val *float64, ok bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil, false
	}
	return &f, true
}
