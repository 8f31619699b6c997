package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountActive reports whether the percentage discount applies at now.
func (p *Product) DiscountActive(now time.Time) bool {
	if !p.DiscountPercentage.IsPositive() {
		return false
	}
	return p.DiscountValidUntil == nil || now.Before(*p.DiscountValidUntil)
}

// EffectivePrice is the price a new order line snapshots.
func (p *Product) EffectivePrice(now time.Time) decimal.Decimal {
	if !p.DiscountActive(now) {
		return p.Price
	}
	off := p.Price.Mul(p.DiscountPercentage).Div(hundred)
	return p.Price.Sub(off).Round(2)
}

func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Images:   p.Images,
	}
}

func ValidCategory(c string) bool {
	for _, v := range ProductCategories {
		if v == c {
			return true
		}
	}
	return false
}
