package pricing

import (
	"testing"

	"github.com/mpss/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestComputeExamples(t *testing.T) {
	tests := []struct {
		name                           string
		lines                          []Line
		discount                       string
		subtotal, tax, shipping, total string
	}{
		{
			name:     "free shipping",
			lines:    []Line{{UnitPrice: dec("450"), Quantity: 2}},
			discount: "0",
			subtotal: "900", tax: "90", shipping: "0", total: "990",
		},
		{
			name:     "flat shipping",
			lines:    []Line{{UnitPrice: dec("10"), Quantity: 1}},
			discount: "0",
			subtotal: "10", tax: "1", shipping: "10", total: "21",
		},
		{
			name:     "boundary at exactly 100 pays shipping",
			lines:    []Line{{UnitPrice: dec("25"), Quantity: 4}},
			discount: "0",
			subtotal: "100", tax: "10", shipping: "10", total: "120",
		},
		{
			name:     "just above threshold",
			lines:    []Line{{UnitPrice: dec("100.01"), Quantity: 1}},
			discount: "0",
			subtotal: "100.01", tax: "10", shipping: "0", total: "110.01",
		},
		{
			name:     "discount subtracted",
			lines:    []Line{{UnitPrice: dec("60"), Quantity: 2}, {UnitPrice: dec("5.5"), Quantity: 3}},
			discount: "20",
			subtotal: "136.5", tax: "13.65", shipping: "0", total: "130.15",
		},
		{
			name:     "cents do not drift",
			lines:    []Line{{UnitPrice: dec("0.1"), Quantity: 3}, {UnitPrice: dec("0.2"), Quantity: 1}},
			discount: "0",
			subtotal: "0.5", tax: "0.05", shipping: "10", total: "10.55",
		},
		{
			name:     "zero price allowed",
			lines:    []Line{{UnitPrice: dec("0"), Quantity: 1}},
			discount: "0",
			subtotal: "0", tax: "0", shipping: "10", total: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.lines, dec(tt.discount))
			require.NoError(t, err)

			assertDec(t, tt.subtotal, got.Subtotal, "subtotal")
			assertDec(t, tt.tax, got.Tax, "tax")
			assertDec(t, tt.shipping, got.Shipping, "shipping")
			assertDec(t, tt.total, got.Total, "total")
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax).Add(got.Shipping).Sub(got.Discount)))
		})
	}
}

func TestComputeTaxRounding(t *testing.T) {
	got, err := Compute([]Line{{UnitPrice: dec("19.99"), Quantity: 3}}, decimal.Zero)
	require.NoError(t, err)

	assertDec(t, "59.97", got.Subtotal, "subtotal")
	assertDec(t, "6", got.Tax, "tax")
}

func TestComputeIsIdempotent(t *testing.T) {
	lines := []Line{{UnitPrice: dec("33.33"), Quantity: 3}, {UnitPrice: dec("12.49"), Quantity: 2}}

	first, err := Compute(lines, dec("1.5"))
	require.NoError(t, err)
	second, err := Compute(lines, dec("1.5"))
	require.NoError(t, err)

	assert.Equal(t, first.Total.String(), second.Total.String())
	assert.Equal(t, first.Tax.String(), second.Tax.String())
}

func TestComputeValidation(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		discount decimal.Decimal
		field    string
	}{
		{"empty", nil, decimal.Zero, "items"},
		{"zero quantity", []Line{{UnitPrice: dec("1"), Quantity: 0}}, decimal.Zero, "items[0].quantity"},
		{"negative price", []Line{{UnitPrice: dec("1"), Quantity: 1}, {UnitPrice: dec("-1"), Quantity: 1}}, decimal.Zero, "items[1].price"},
		{"negative discount", []Line{{UnitPrice: dec("1"), Quantity: 1}}, dec("-5"), "discount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.lines, tt.discount)

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestRecalculateOverwritesClientTotals(t *testing.T) {
	order := &models.Order{
		Items: []models.OrderItem{
			{UnitPrice: dec("450"), Quantity: 2},
		},
		Subtotal: dec("1"),
		Total:    dec("1"),
	}

	require.NoError(t, Recalculate(order))

	assertDec(t, "900", order.Subtotal, "subtotal")
	assertDec(t, "900", order.Items[0].Subtotal, "line subtotal")
	assertDec(t, "990", order.Total, "total")
}
