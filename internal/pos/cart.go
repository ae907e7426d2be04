package pos

// SalesType classifies a cart line for receipt labeling. It has no price
// effect.
type SalesType string

const (
	SalesTypeDineIn   SalesType = "Dine In"
	SalesTypeTakeAway SalesType = "Take Away"
)

// LineKey is the composite identity of a cart line. Lines with equal keys
// merge on add.
type LineKey struct {
	ProductID int64
	Variant   string
	SalesType SalesType
}

// CartLine is one product+variant+sales-type entry in the cart. Price is a
// snapshot taken when the line is added and does not track later catalog
// price changes.
type CartLine struct {
	ProductID int64     `json:"product_id,string"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	Variant   string    `json:"variant"`
	SalesType SalesType `json:"sales_type"`
	Notes     string    `json:"notes,omitempty"`
}

// Key returns the merge identity of the line.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Variant: l.Variant, SalesType: l.SalesType}
}

// Cart holds the in-progress sale lines in insertion order. Quantity of any
// present line is always >= 1. Cart is not safe for concurrent use; the
// owning Session serializes access.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// Add merges the incoming quantity into an existing line with the same
// (product, variant, sales type) key, or appends a new line. Non-positive
// quantities are ignored.
func (c *Cart) Add(line CartLine) {
	if line.Quantity < 1 {
		return
	}
	key := line.Key()
	for i := range c.lines {
		if c.lines[i].Key() == key {
			c.lines[i].Quantity += line.Quantity
			return
		}
	}
	c.lines = append(c.lines, line)
}

// UpdateQuantity sets the quantity of the matching line. A quantity <= 0
// removes the line. Missing lines are a no-op.
func (c *Cart) UpdateQuantity(productID int64, variant string, salesType SalesType, quantity int) {
	key := LineKey{ProductID: productID, Variant: variant, SalesType: salesType}
	for i := range c.lines {
		if c.lines[i].Key() != key {
			continue
		}
		if quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = quantity
		}
		return
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Totals derives the current order totals.
func (c *Cart) Totals() Totals {
	return CalculateTotals(c.lines)
}
