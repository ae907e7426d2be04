package pos

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Tax components applied unconditionally to every order, in basis points.
// These are not configurable per item.
const (
	TipServerBP     = 300  // service tip 3%
	PajakRestoranBP = 1000 // restaurant tax 10%
	PpnBP           = 1000 // value-added tax 10%
)

// Totals is derived order state, recomputed on every cart change and never
// stored independently. Total == Subtotal + TipServer + PajakRestoran + Ppn.
type Totals struct {
	Subtotal      int64 `json:"subtotal"`
	TipServer     int64 `json:"tip_server"`
	PajakRestoran int64 `json:"pajak_restoran"`
	Ppn           int64 `json:"ppn"`
	Total         int64 `json:"total"`
}

// Subtotal sums price*quantity over all lines.
func Subtotal(lines []CartLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Price * int64(l.Quantity)
	}
	return sum
}

// Tax applies a basis-point rate to an amount, rounding half-up to the
// nearest integer currency unit.
func Tax(amount int64, basisPoints int64) int64 {
	if amount <= 0 {
		return 0
	}
	return (amount*basisPoints + 5000) / 10000
}

// CalculateTotals derives the order totals from the cart lines.
func CalculateTotals(lines []CartLine) Totals {
	sub := Subtotal(lines)
	t := Totals{
		Subtotal:      sub,
		TipServer:     Tax(sub, TipServerBP),
		PajakRestoran: Tax(sub, PajakRestoranBP),
		Ppn:           Tax(sub, PpnBP),
	}
	t.Total = t.Subtotal + t.TipServer + t.PajakRestoran + t.Ppn
	return t
}

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an integer Rupiah amount with id-ID thousands
// grouping and the fixed currency prefix, e.g. 91020 -> "Rp 91.020".
func FormatRupiah(amount int64) string {
	return rupiahPrinter.Sprintf("Rp %v", number.Decimal(amount))
}
