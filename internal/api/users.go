package api

import (
	"net/http"

	"github.com/mpss/storefront/internal/models"
	"github.com/mpss/storefront/internal/store"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := store.GetProfile(r.Context(), h.db, principal(r).UserID)
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching profile")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{"user": user})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in store.ProfileUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := store.UpdateProfile(r.Context(), h.db, principal(r).UserID, in)
	if err != nil {
		h.respondErr(w, r, err, "Server error while updating profile")
		return
	}

	respondData(w, http.StatusOK, "Profile updated successfully", map[string]any{"user": user})
}

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := store.ListWishlist(r.Context(), h.db, principal(r).UserID)
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching wishlist")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{"wishlist": list})
}

func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "productId")
	if !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	list, err := store.AddToWishlist(r.Context(), h.db, principal(r).UserID, productID)
	if err != nil {
		h.respondErr(w, r, err, "Server error while adding to wishlist")
		return
	}

	respondData(w, http.StatusOK, "Product added to wishlist", map[string]any{"wishlist": list})
}

func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "productId")
	if !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	list, err := store.RemoveFromWishlist(r.Context(), h.db, principal(r).UserID, productID)
	if err != nil {
		h.respondErr(w, r, err, "Server error while removing from wishlist")
		return
	}

	respondData(w, http.StatusOK, "Product removed from wishlist", map[string]any{"wishlist": list})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := store.ListUsers(r.Context(), h.db, store.UserFilter{
		PageRequest: pageRequest(r),
		Search:      q.Get("search"),
		Role:        models.Role(q.Get("role")),
	})
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching users")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{
		"users":      page.Items,
		"pagination": pagination(page, "totalUsers"),
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := store.GetUser(r.Context(), h.db, id)
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching user")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{"user": user})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	var in store.AdminUserUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := store.AdminUpdateUser(r.Context(), h.db, id, in)
	if err != nil {
		h.respondErr(w, r, err, "Server error while updating user")
		return
	}

	respondData(w, http.StatusOK, "User updated successfully", map[string]any{"user": user})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := store.DeleteUser(r.Context(), h.db, id); err != nil {
		h.respondErr(w, r, err, "Server error while deleting user")
		return
	}

	respondData(w, http.StatusOK, "User deleted successfully", nil)
}
