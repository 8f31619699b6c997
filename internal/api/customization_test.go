package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomizationOptions(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/customization/options", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Options struct {
			OutfitTypes []string `json:"outfitTypes"`
			Colors      []struct {
				Name   string `json:"name"`
				Hex    string `json:"hex"`
				Border string `json:"border"`
			} `json:"colors"`
			TextPlacements     []string           `json:"textPlacements"`
			MaxTextLength      int                `json:"maxTextLength"`
			MaxQuantity        int                `json:"maxQuantity"`
			BasePrices         map[string]float64 `json:"basePrices"`
			CustomizationCosts map[string]float64 `json:"customizationCosts"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &data))

	opts := data.Options
	assert.Len(t, opts.OutfitTypes, 6)
	assert.Len(t, opts.Colors, 11)
	assert.Equal(t, "#FFFFFF", opts.Colors[0].Hex)
	assert.Equal(t, []string{"Chest", "Back", "Sleeve", "Bottom corner"}, opts.TextPlacements)
	assert.Equal(t, 50, opts.MaxTextLength)
	assert.Equal(t, 100, opts.MaxQuantity)
	assert.Equal(t, 60.0, opts.BasePrices["Full Set"])
	assert.Equal(t, map[string]float64{"text": 5, "premiumColor": 3}, opts.CustomizationCosts)
}

func TestCalculatePrice(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/customization/calculate-price", "", map[string]any{
		"outfitType":    "Top",
		"quantity":      2,
		"customText":    "HELLO",
		"selectedColor": "Gold",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"unitPrice": "33.00",
		"totalPrice": "66.00",
		"breakdown": {"basePrice": "25.00", "customizationCost": "8.00", "quantity": 2, "unitPrice": "33.00"}
	}`, string(decodeResponse(t, rec).Data))

	rec = s.do(t, http.MethodPost, "/api/customization/calculate-price", "", map[string]any{
		"outfitType":    "Cape",
		"quantity":      101,
		"selectedColor": "red",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "Validation errors", resp.Message)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "outfitType", resp.Errors[0].Field)
	assert.Equal(t, "Quantity must be between 1 and 100", resp.Errors[1].Message)
}

func TestCustomizationWritesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/customization/save-design"},
		{http.MethodGet, "/api/customization/designs"},
		{http.MethodPost, "/api/customization/order"},
	} {
		rec := s.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}
