package api

import (
	"net/http"
	"time"

	"github.com/mpss/storefront/internal/models"
	"github.com/mpss/storefront/internal/store"
)

// pagination renders page metadata with the total under totalKey
// (totalOrders, totalUsers, ...).
func pagination[T any](page *store.OffsetPage[T], totalKey string) map[string]any {
	return map[string]any{
		"currentPage": page.Page,
		"totalPages":  page.TotalPages,
		totalKey:      page.Total,
	}
}

func pageRequest(r *http.Request) store.PageRequest {
	return store.PageRequest{Page: intQuery(r, "page"), PageSize: intQuery(r, "limit")}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req store.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = principal(r).UserID

	order, err := store.CreateOrder(r.Context(), h.db, req)
	if err != nil {
		h.respondErr(w, r, err, "Server error while creating order")
		return
	}

	respondData(w, http.StatusCreated, "Order created successfully", map[string]any{"order": order})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))

	page, err := store.ListUserOrders(r.Context(), h.db, principal(r).UserID, status, pageRequest(r))
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching orders")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{
		"orders":     page.Items,
		"pagination": pagination(page, "totalOrders"),
	})
}

// OrderFeed pages the caller's orders by keyset for infinite scrolling.
func (h *Handler) OrderFeed(w http.ResponseWriter, r *http.Request) {
	page, err := store.ListOrdersCursor(r.Context(), h.db, principal(r).UserID, r.URL.Query().Get("cursor"), intQuery(r, "limit"))
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching orders")
		return
	}

	respondData(w, http.StatusOK, "", page)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}

	order, err := h.findOrder(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching order")
		return
	}

	caller := principal(r)
	if order.UserID != caller.UserID && !caller.IsAdmin() {
		respondError(w, http.StatusForbidden, "Not authorized to view this order")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{"order": order})
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}

	var req store.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := store.UpdateOrderStatus(r.Context(), h.db, id, principal(r).UserID, req, h.strict)
	if err != nil {
		h.respondErr(w, r, err, "Server error while updating order status")
		return
	}

	respondData(w, http.StatusOK, "Order status updated successfully", map[string]any{"order": order})
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.OrderFilter{
		PageRequest: pageRequest(r),
		Status:      models.OrderStatus(q.Get("status")),
	}

	var v models.Validator
	filter.StartDate = parseDate(&v, q.Get("startDate"), "startDate")
	filter.EndDate = parseDate(&v, q.Get("endDate"), "endDate")
	if err := v.Err(); err != nil {
		h.respondErr(w, r, err, "Invalid date filter")
		return
	}

	page, err := store.ListAllOrders(r.Context(), h.db, filter)
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching orders")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{
		"orders":     page.Items,
		"pagination": pagination(page, "totalOrders"),
	})
}

// parseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date.
func parseDate(v *models.Validator, s, field string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	v.Check(false, field, "Invalid date")
	return nil
}
