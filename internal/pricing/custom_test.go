package pricing

import (
	"testing"

	"github.com/mpss/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteCustom(t *testing.T) {
	tests := []struct {
		name     string
		req      CustomRequest
		unit     string
		extra    string
		subtotal string
		shipping string
		total    string
	}{
		{
			name: "plain t-shirt",
			req:  CustomRequest{OutfitType: "T-Shirt", Quantity: 1, Color: "blue"},
			unit: "20", extra: "0", subtotal: "20", shipping: "10", total: "32",
		},
		{
			name: "text and premium color",
			req:  CustomRequest{OutfitType: "Top", Quantity: 2, CustomText: "MPSS", Color: "Gold"},
			unit: "33", extra: "8", subtotal: "66", shipping: "10", total: "82.6",
		},
		{
			name: "full set in bulk ships free",
			req:  CustomRequest{OutfitType: "Full Set", Quantity: 3, Color: "metallic"},
			unit: "63", extra: "3", subtotal: "189", shipping: "0", total: "207.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := QuoteCustom(tt.req)
			require.NoError(t, err)

			assertDec(t, tt.unit, q.UnitPrice, "unit")
			assertDec(t, tt.extra, q.CustomizationCost, "customization")
			assertDec(t, tt.subtotal, q.Totals.Subtotal, "subtotal")
			assertDec(t, tt.shipping, q.Totals.Shipping, "shipping")
			assertDec(t, tt.total, q.Totals.Total, "total")
		})
	}
}

func TestQuoteCustomValidation(t *testing.T) {
	long := "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijX"

	tests := []struct {
		name  string
		req   CustomRequest
		field string
	}{
		{"unknown type", CustomRequest{OutfitType: "Cape", Quantity: 1, Color: "red"}, "outfitType"},
		{"zero quantity", CustomRequest{OutfitType: "Top", Quantity: 0, Color: "red"}, "quantity"},
		{"too many", CustomRequest{OutfitType: "Top", Quantity: 101, Color: "red"}, "quantity"},
		{"long text", CustomRequest{OutfitType: "Top", Quantity: 1, Color: "red", CustomText: long}, "customText"},
		{"no color", CustomRequest{OutfitType: "Top", Quantity: 1}, "selectedColor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := QuoteCustom(tt.req)

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestIsPremiumColor(t *testing.T) {
	assert.True(t, IsPremiumColor("SILVER"))
	assert.True(t, IsPremiumColor(" gold "))
	assert.False(t, IsPremiumColor("black"))
}
