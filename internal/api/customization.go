package api

import (
	"net/http"

	"github.com/mpss/storefront/internal/pricing"
	"github.com/mpss/storefront/internal/store"
	"github.com/shopspring/decimal"
)

type swatch struct {
	Name   string `json:"name"`
	Hex    string `json:"hex"`
	Border string `json:"border"`
}

var swatches = []swatch{
	{"white", "#FFFFFF", "#E5E7EB"},
	{"black", "#000000", "#374151"},
	{"red", "#EF4444", "#DC2626"},
	{"blue", "#3B82F6", "#2563EB"},
	{"green", "#10B981", "#059669"},
	{"yellow", "#F59E0B", "#D97706"},
	{"purple", "#8B5CF6", "#7C3AED"},
	{"brown", "#A0522D", "#8B4513"},
	{"gray", "#6B7280", "#4B5563"},
	{"pink", "#EC4899", "#DB2777"},
	{"orange", "#F97316", "#EA580C"},
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func (h *Handler) CustomizationOptions(w http.ResponseWriter, r *http.Request) {
	basePrices := make(map[string]float64, len(pricing.BasePrices))
	for outfit, price := range pricing.BasePrices {
		basePrices[outfit] = price.InexactFloat64()
	}

	respondData(w, http.StatusOK, "", map[string]any{
		"options": map[string]any{
			"outfitTypes":    pricing.OutfitTypes,
			"colors":         swatches,
			"textPlacements": pricing.TextPlacements,
			"maxTextLength":  pricing.MaxCustomTextLength,
			"maxQuantity":    pricing.MaxCustomQuantity,
			"basePrices":     basePrices,
			"customizationCosts": map[string]float64{
				"text":         pricing.TextCost.InexactFloat64(),
				"premiumColor": pricing.PremiumColorCost.InexactFloat64(),
			},
		},
	})
}

func (h *Handler) CalculatePrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OutfitType    string `json:"outfitType"`
		Quantity      int    `json:"quantity"`
		CustomText    string `json:"customText"`
		SelectedColor string `json:"selectedColor"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	quote, err := pricing.QuoteCustom(pricing.CustomRequest{
		OutfitType: req.OutfitType,
		Quantity:   req.Quantity,
		CustomText: req.CustomText,
		Color:      req.SelectedColor,
	})
	if err != nil {
		h.respondErr(w, r, err, "Server error while calculating price")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{
		"unitPrice":  money(quote.UnitPrice),
		"totalPrice": money(quote.Totals.Subtotal),
		"breakdown": map[string]any{
			"basePrice":         money(quote.BasePrice),
			"customizationCost": money(quote.CustomizationCost),
			"quantity":          quote.Quantity,
			"unitPrice":         money(quote.UnitPrice),
		},
	})
}

func (h *Handler) SaveDesign(w http.ResponseWriter, r *http.Request) {
	var in store.DesignInput
	if !decodeJSON(w, r, &in) {
		return
	}

	design, err := store.SaveDesign(r.Context(), h.db, principal(r).UserID, in)
	if err != nil {
		h.respondErr(w, r, err, "Server error while saving design")
		return
	}

	respondData(w, http.StatusCreated, "Design saved successfully", map[string]any{
		"designId": design.ID,
		"design":   design,
	})
}

func (h *Handler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	designs, err := store.ListDesigns(r.Context(), h.db, principal(r).UserID)
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching designs")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{"designs": designs})
}

func (h *Handler) CreateCustomOrder(w http.ResponseWriter, r *http.Request) {
	var req store.CustomOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = principal(r).UserID

	order, err := store.CreateCustomOrder(r.Context(), h.db, req)
	if err != nil {
		h.respondErr(w, r, err, "Server error while creating custom order")
		return
	}

	respondData(w, http.StatusCreated, "Custom order created successfully", map[string]any{"order": order})
}
