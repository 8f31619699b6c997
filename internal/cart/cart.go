// Package cart keeps each user's shopping cart between requests. A cart is
// an ordered list of items, unique by product id.
package cart

import "github.com/shopspring/decimal"

type Item struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

type Cart struct {
	Items []Item `json:"items"`
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges qty into an existing entry for the product or appends a new
// one. A quantity below 1 counts as 1.
func (c *Cart) Add(item Item, qty int) {
	if qty < 1 {
		qty = 1
	}
	if i := c.indexOf(item.ProductID); i >= 0 {
		c.Items[i].Quantity += qty
		return
	}
	item.Quantity = qty
	c.Items = append(c.Items, item)
}

func (c *Cart) Remove(productID int64) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// UpdateQuantity sets the quantity of a listed product, never below 1.
// Removal goes through Remove.
func (c *Cart) UpdateQuantity(productID int64, qty int) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity = max(1, qty)
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2)
}
