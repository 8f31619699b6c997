// Package pricing computes order money amounts. All arithmetic is done in
// decimal and rounded to cents, so totals never drift the way binary floats
// would.
package pricing

import (
	"fmt"

	"github.com/mpss/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var (
	TaxRate               = decimal.RequireFromString("0.10")
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShipping          = decimal.NewFromInt(10)
)

const minorUnitPlaces = 2

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Compute returns subtotal, 10% tax, shipping (free strictly above 100) and
// total = subtotal + tax + shipping - discount.
func Compute(lines []Line, discount decimal.Decimal) (Totals, error) {
	var v models.Validator
	v.Check(len(lines) > 0, "items", "At least one item is required")
	v.Check(!discount.IsNegative(), "discount", "Discount cannot be negative")
	for i, l := range lines {
		v.Check(l.Quantity >= 1, fmt.Sprintf("items[%d].quantity", i), "Quantity must be at least 1")
		v.Check(!l.UnitPrice.IsNegative(), fmt.Sprintf("items[%d].price", i), "Price must be a positive number")
	}
	if err := v.Err(); err != nil {
		return Totals{}, err
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(minorUnitPlaces)

	return FromSubtotal(subtotal, discount), nil
}

// FromSubtotal applies tax, shipping and discount to an already summed
// subtotal.
func FromSubtotal(subtotal, discount decimal.Decimal) Totals {
	tax := subtotal.Mul(TaxRate).Round(minorUnitPlaces)

	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	discount = discount.Round(minorUnitPlaces)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount),
	}
}

// Recalculate recomputes every money field of o from its items and
// discount, overwriting whatever totals it carried. Line subtotals are
// refreshed too.
func Recalculate(o *models.Order) error {
	lines := make([]Line, len(o.Items))
	for i, item := range o.Items {
		lines[i] = Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}

	t, err := Compute(lines, o.Discount)
	if err != nil {
		return err
	}

	for i := range o.Items {
		o.Items[i].Subtotal = o.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity))).Round(minorUnitPlaces)
	}
	o.Subtotal = t.Subtotal
	o.Tax = t.Tax
	o.Shipping = t.Shipping
	o.Discount = t.Discount
	o.Total = t.Total
	return nil
}
