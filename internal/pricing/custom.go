package pricing

import (
	"strings"
	"unicode/utf8"

	"github.com/mpss/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const (
	MaxCustomTextLength = 50
	MaxCustomQuantity   = 100
)

var OutfitTypes = []string{"Top", "T-Shirt", "Bottom", "Both", "Accessories", "Full Set"}

var BasePrices = map[string]decimal.Decimal{
	"Top":         decimal.NewFromInt(25),
	"T-Shirt":     decimal.NewFromInt(20),
	"Bottom":      decimal.NewFromInt(30),
	"Both":        decimal.NewFromInt(45),
	"Accessories": decimal.NewFromInt(15),
	"Full Set":    decimal.NewFromInt(60),
}

var TextPlacements = []string{"Chest", "Back", "Sleeve", "Bottom corner"}

var (
	TextCost         = decimal.NewFromInt(5)
	PremiumColorCost = decimal.NewFromInt(3)
	premiumColors    = map[string]bool{"gold": true, "silver": true, "metallic": true}
)

type CustomRequest struct {
	OutfitType string
	Quantity   int
	CustomText string
	Color      string
}

type CustomQuote struct {
	BasePrice         decimal.Decimal
	CustomizationCost decimal.Decimal
	UnitPrice         decimal.Decimal
	Quantity          int
	Totals            Totals
}

func IsPremiumColor(color string) bool {
	return premiumColors[strings.ToLower(strings.TrimSpace(color))]
}

func ValidOutfitType(t string) bool {
	_, ok := BasePrices[t]
	return ok
}

func ValidTextPlacement(p string) bool {
	for _, v := range TextPlacements {
		if v == p {
			return true
		}
	}
	return false
}

// QuoteCustom prices a made-to-order item: base price for the outfit type,
// plus 5.00 with custom text, plus 3.00 for a premium color. The subtotal
// goes through the same tax and shipping rules as catalog orders.
func QuoteCustom(req CustomRequest) (CustomQuote, error) {
	var v models.Validator
	v.Check(ValidOutfitType(req.OutfitType), "outfitType", "Invalid outfit type")
	v.Check(req.Quantity >= 1 && req.Quantity <= MaxCustomQuantity, "quantity", "Quantity must be between 1 and 100")
	v.Check(utf8.RuneCountInString(req.CustomText) <= MaxCustomTextLength, "customText", "Custom text cannot exceed 50 characters")
	v.Required(req.Color, "selectedColor", "Color is required")
	if err := v.Err(); err != nil {
		return CustomQuote{}, err
	}

	base := BasePrices[req.OutfitType]
	extra := decimal.Zero
	if req.CustomText != "" {
		extra = extra.Add(TextCost)
	}
	if IsPremiumColor(req.Color) {
		extra = extra.Add(PremiumColorCost)
	}

	unit := base.Add(extra)
	subtotal := unit.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(minorUnitPlaces)

	return CustomQuote{
		BasePrice:         base,
		CustomizationCost: extra,
		UnitPrice:         unit,
		Quantity:          req.Quantity,
		Totals:            FromSubtotal(subtotal, decimal.Zero),
	}, nil
}
