package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxRounding(t *testing.T) {
	assert.Equal(t, int64(0), Tax(0, TipServerBP))
	assert.Equal(t, int64(0), Tax(-100, PpnBP))
	assert.Equal(t, int64(3), Tax(100, TipServerBP))
	// 1.5 rounds up
	assert.Equal(t, int64(2), Tax(50, TipServerBP))
	// 0.99 rounds up
	assert.Equal(t, int64(1), Tax(33, TipServerBP))
	// 9.9 rounds up
	assert.Equal(t, int64(10), Tax(99, PajakRestoranBP))
}

func TestCalculateTotals(t *testing.T) {
	lines := []CartLine{
		{ProductID: 1, Name: "Nasi Goreng Spesial", Price: 25000, Quantity: 2, Variant: DefaultVariant, SalesType: SalesTypeDineIn},
		{ProductID: 2, Name: "Es Teh Manis", Price: 8000, Quantity: 3, Variant: DefaultVariant, SalesType: SalesTypeDineIn},
	}
	totals := CalculateTotals(lines)
	assert.Equal(t, int64(74000), totals.Subtotal)
	assert.Equal(t, int64(2220), totals.TipServer)
	assert.Equal(t, int64(7400), totals.PajakRestoran)
	assert.Equal(t, int64(7400), totals.Ppn)
	assert.Equal(t, int64(91020), totals.Total)
}

func TestCalculateTotalsEmpty(t *testing.T) {
	totals := CalculateTotals(nil)
	assert.Equal(t, Totals{}, totals)
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 0", FormatRupiah(0))
	assert.Equal(t, "Rp 8.000", FormatRupiah(8000))
	assert.Equal(t, "Rp 91.020", FormatRupiah(91020))
	assert.Equal(t, "Rp 1.250.000", FormatRupiah(1250000))
}
