package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mpss/storefront/internal/database"
	"github.com/mpss/storefront/internal/models"
	"github.com/mpss/storefront/internal/photos"
	"go.uber.org/zap"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  []models.FieldError `json:"errors,omitempty"`
	Data    any                 `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// respondErr maps a domain error onto a status code. Anything unrecognised
// is logged and reported with the caller's generic message.
func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error, generic string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: verr.Message, Errors: verr.Fields})
		return
	}

	var perr *database.ProductError
	if errors.As(err, &perr) {
		status := http.StatusBadRequest
		if errors.Is(perr.Err, database.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, status, perr.Error())
		return
	}

	switch {
	case errors.Is(err, database.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, database.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, database.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, database.ErrDesignNotFound):
		respondError(w, http.StatusNotFound, "Design not found")
	case errors.Is(err, photos.ErrNotFound):
		respondError(w, http.StatusNotFound, "Image not found")
	case errors.Is(err, database.ErrAlreadyInWishlist):
		respondError(w, http.StatusBadRequest, "Product already in wishlist")
	case errors.Is(err, database.ErrProductUnavailable), errors.Is(err, database.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrDuplicate):
		respondError(w, http.StatusConflict, "Record already exists")
	case errors.Is(err, database.ErrReferenced):
		respondError(w, http.StatusConflict, "Record is still referenced by other data")
	case errors.Is(err, database.ErrOptimisticLockFailed):
		respondError(w, http.StatusConflict, "Record was modified concurrently, reload and retry")
	case errors.Is(err, database.ErrLockTimeout):
		respondError(w, http.StatusConflict, "Resource is busy, please retry")
	default:
		h.logger.Error(generic,
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, generic)
	}
}

// decodeJSON reads the request body into dst, answering 400 itself on
// malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func intQuery(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
