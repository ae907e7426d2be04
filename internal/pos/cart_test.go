package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func line(productID int64, variant string, salesType SalesType, qty int) CartLine {
	return CartLine{
		ProductID: productID,
		Name:      "item",
		Price:     10000,
		Quantity:  qty,
		Variant:   variant,
		SalesType: salesType,
	}
}

func TestCartAddMergesSameKey(t *testing.T) {
	c := NewCart()
	c.Add(line(1, DefaultVariant, SalesTypeDineIn, 1))
	c.Add(line(1, DefaultVariant, SalesTypeDineIn, 2))

	lines := c.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestCartAddSeparatesByVariantAndSalesType(t *testing.T) {
	c := NewCart()
	c.Add(line(1, DefaultVariant, SalesTypeDineIn, 1))
	c.Add(line(1, "Large", SalesTypeDineIn, 1))
	c.Add(line(1, DefaultVariant, SalesTypeTakeAway, 1))

	assert.Equal(t, 3, c.Len())
}

func TestCartAddIgnoresNonPositiveQuantity(t *testing.T) {
	c := NewCart()
	c.Add(line(1, DefaultVariant, SalesTypeDineIn, 0))
	c.Add(line(1, DefaultVariant, SalesTypeDineIn, -2))
	assert.True(t, c.IsEmpty())
}

func TestCartUpdateQuantity(t *testing.T) {
	c := NewCart()
	c.Add(line(1, DefaultVariant, SalesTypeDineIn, 2))

	c.UpdateQuantity(1, DefaultVariant, SalesTypeDineIn, 5)
	assert.Equal(t, 5, c.Lines()[0].Quantity)

	// zero removes the line
	c.UpdateQuantity(1, DefaultVariant, SalesTypeDineIn, 0)
	assert.True(t, c.IsEmpty())
}

func TestCartUpdateQuantityMissingLineIsNoop(t *testing.T) {
	c := NewCart()
	c.Add(line(1, DefaultVariant, SalesTypeDineIn, 2))

	c.UpdateQuantity(99, DefaultVariant, SalesTypeDineIn, 5)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Lines()[0].Quantity)
}

func TestCartClear(t *testing.T) {
	c := NewCart()
	c.Add(line(1, DefaultVariant, SalesTypeDineIn, 2))
	c.Add(line(2, DefaultVariant, SalesTypeDineIn, 1))
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, Totals{}, c.Totals())
}

func TestCartLinesReturnsCopy(t *testing.T) {
	c := NewCart()
	c.Add(line(1, DefaultVariant, SalesTypeDineIn, 2))

	lines := c.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 2, c.Lines()[0].Quantity)
}
