package api

import (
	"net/http"
	"time"

	"github.com/mpss/storefront/internal/cart"
	"github.com/mpss/storefront/internal/database"
	"github.com/shopspring/decimal"
)

type cartView struct {
	Items      []cart.Item     `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func viewCart(c *cart.Cart) cartView {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartView{Items: items, TotalItems: c.TotalItems(), TotalPrice: c.TotalPrice()}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Load(r.Context(), principal(r).UserID)
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching cart")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{"cart": viewCart(c)})
}

// AddCartItem puts a catalog product in the cart at its current selling
// price.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.findProduct(r.Context(), req.ProductID)
	if err != nil {
		h.respondErr(w, r, err, "Server error while updating cart")
		return
	}
	if !product.IsActive {
		h.respondErr(w, r, &database.ProductError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Err:         database.ErrProductUnavailable,
		}, "Server error while updating cart")
		return
	}

	item := cart.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.EffectivePrice(time.Now()),
	}
	if len(product.Images) > 0 {
		item.Image = product.Images[0].URL
	}

	c, err := h.carts.Update(r.Context(), principal(r).UserID, func(c *cart.Cart) {
		c.Add(item, req.Quantity)
	})
	if err != nil {
		h.respondErr(w, r, err, "Server error while updating cart")
		return
	}

	respondData(w, http.StatusOK, "Item added to cart", map[string]any{"cart": viewCart(c)})
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "productId")
	if !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.carts.Update(r.Context(), principal(r).UserID, func(c *cart.Cart) {
		c.UpdateQuantity(productID, req.Quantity)
	})
	if err != nil {
		h.respondErr(w, r, err, "Server error while updating cart")
		return
	}

	respondData(w, http.StatusOK, "Cart updated", map[string]any{"cart": viewCart(c)})
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "productId")
	if !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	c, err := h.carts.Update(r.Context(), principal(r).UserID, func(c *cart.Cart) {
		c.Remove(productID)
	})
	if err != nil {
		h.respondErr(w, r, err, "Server error while updating cart")
		return
	}

	respondData(w, http.StatusOK, "Item removed from cart", map[string]any{"cart": viewCart(c)})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), principal(r).UserID); err != nil {
		h.respondErr(w, r, err, "Server error while clearing cart")
		return
	}

	respondData(w, http.StatusOK, "Cart cleared", map[string]any{"cart": viewCart(&cart.Cart{})})
}
