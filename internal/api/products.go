package api

import (
	"net/http"

	"github.com/mpss/storefront/internal/store"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := store.ListProducts(r.Context(), h.db, store.ProductFilter{
		PageRequest: pageRequest(r),
		Category:    q.Get("category"),
		Search:      q.Get("search"),
	})
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching products")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{
		"products":   page.Items,
		"pagination": pagination(page, "totalProducts"),
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := store.GetProduct(r.Context(), h.db, id)
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching product")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{"product": product})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in store.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}

	product, err := store.CreateProduct(r.Context(), h.db, in)
	if err != nil {
		h.respondErr(w, r, err, "Server error while creating product")
		return
	}

	respondData(w, http.StatusCreated, "Product created successfully", map[string]any{"product": product})
}

// UpdateStock sets the stock level if the caller's version is current.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var req struct {
		Stock   *int `json:"stock"`
		Version int  `json:"version"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Stock == nil || *req.Stock < 0 {
		respondError(w, http.StatusBadRequest, "Stock cannot be negative")
		return
	}

	product, err := store.UpdateStockOptimistic(r.Context(), h.db, id, *req.Stock, req.Version)
	if err != nil {
		h.respondErr(w, r, err, "Server error while updating stock")
		return
	}

	respondData(w, http.StatusOK, "Stock updated successfully", map[string]any{"product": product})
}

func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := store.AddReview(r.Context(), h.db, id, principal(r).UserID, req.Rating, req.Comment)
	if err != nil {
		h.respondErr(w, r, err, "Server error while adding review")
		return
	}

	respondData(w, http.StatusCreated, "Review added successfully", map[string]any{"product": product})
}
