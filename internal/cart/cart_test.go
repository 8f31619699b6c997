package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func tee() Item {
	return Item{ProductID: 1, Name: "Tee", Price: decimal.RequireFromString("19.99")}
}

func TestAddMergesByProduct(t *testing.T) {
	var c Cart
	c.Add(tee(), 2)
	c.Add(tee(), 3)

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, 5, c.TotalItems())
	assert.Equal(t, "99.95", c.TotalPrice().StringFixed(2))
}

func TestAddDefaultsQuantity(t *testing.T) {
	var c Cart
	c.Add(tee(), 0)
	c.Add(Item{ProductID: 2, Name: "Cap", Price: decimal.NewFromInt(10)}, 1)

	assert.Equal(t, []int64{1, 2}, []int64{c.Items[0].ProductID, c.Items[1].ProductID})
	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, 2, c.TotalItems())
}

func TestUpdateQuantityFloorsAtOne(t *testing.T) {
	var c Cart
	c.Add(tee(), 4)

	c.UpdateQuantity(1, 0)
	assert.Equal(t, 1, c.Items[0].Quantity)

	c.UpdateQuantity(1, -7)
	assert.Equal(t, 1, c.Items[0].Quantity)

	c.UpdateQuantity(1, 6)
	assert.Equal(t, 6, c.Items[0].Quantity)

	c.UpdateQuantity(99, 3)
	assert.Len(t, c.Items, 1)
}

func TestRemoveAndClear(t *testing.T) {
	var c Cart
	c.Add(tee(), 1)
	c.Add(Item{ProductID: 2, Price: decimal.NewFromInt(5)}, 2)
	c.Add(Item{ProductID: 3, Price: decimal.NewFromInt(1)}, 1)

	c.Remove(2)
	assert.Equal(t, 2, len(c.Items))
	assert.Equal(t, int64(3), c.Items[1].ProductID)

	c.Remove(42)
	assert.Equal(t, 2, len(c.Items))

	c.Clear()
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.TotalItems())
	assert.True(t, c.TotalPrice().IsZero())
}
