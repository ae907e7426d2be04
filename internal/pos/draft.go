package pos

import "github.com/bjo163/warungpos/internal/domain"

// DefaultVariant is the variant label for products without a selected
// variant.
const DefaultVariant = "Default"

// DiscountFlags mirror the tender-screen toggles. They are label-only and
// have no price effect in the current design.
type DiscountFlags struct {
	Member       bool `json:"member"`
	BuyOneGetOne bool `json:"buy_one_get_one"`
	DineIn       bool `json:"dine_in"`
	Owner        bool `json:"owner"`
	Opening      bool `json:"opening"`
	Compliment   bool `json:"compliment"`
}

// Draft is the transient working copy of a product being configured before
// it is committed to the cart. It snapshots the product at open time;
// reconciliation against the live catalog happens on commit.
type Draft struct {
	ProductID   int64
	Name        string
	Price       int64
	Stock       int
	CategoryID  int64
	Description string

	Variant   string
	Quantity  int
	SalesType SalesType
	Discounts DiscountFlags
	Notes     string
}

// NewDraft opens a draft over a snapshot of the given product.
func NewDraft(p domain.Product) *Draft {
	return &Draft{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		Variant:     DefaultVariant,
		Quantity:    1,
		SalesType:   SalesTypeDineIn,
	}
}

func (d *Draft) clamp(q int) int {
	if q < 1 {
		return 1
	}
	if q > d.Stock {
		return d.Stock
	}
	return q
}

// Increment steps the quantity up by one, clamped to the snapshot stock.
func (d *Draft) Increment() {
	d.Quantity = d.clamp(d.Quantity + 1)
}

// Decrement steps the quantity down by one, never below one.
func (d *Draft) Decrement() {
	d.Quantity = d.clamp(d.Quantity - 1)
}

// SetQuantity sets the quantity directly, clamped to [1, stock].
func (d *Draft) SetQuantity(q int) {
	d.Quantity = d.clamp(q)
}

// SetSalesType overwrites the single-select sales type.
func (d *Draft) SetSalesType(t SalesType) {
	d.SalesType = t
}

// SetVariant overwrites the single-select variant.
func (d *Draft) SetVariant(v string) {
	if v == "" {
		v = DefaultVariant
	}
	d.Variant = v
}

// SetNotes attaches free-text notes, carried verbatim onto the cart line.
func (d *Draft) SetNotes(notes string) {
	d.Notes = notes
}

// Line converts the draft into a cart line with the snapshot price.
func (d *Draft) Line() CartLine {
	return CartLine{
		ProductID: d.ProductID,
		Name:      d.Name,
		Price:     d.Price,
		Quantity:  d.clamp(d.Quantity),
		Variant:   d.Variant,
		SalesType: d.SalesType,
		Notes:     d.Notes,
	}
}
