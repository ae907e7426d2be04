package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjo163/warungpos/internal/domain"
)

func successfulTransaction(t *testing.T) *domain.Transaction {
	t.Helper()
	tx := &domain.Transaction{
		ID:            1,
		ReceiptNo:     "K2J4X9",
		CustomerName:  "Budi",
		OrderType:     "Dine in",
		Subtotal:      74000,
		TipServer:     2220,
		PajakRestoran: 7400,
		Ppn:           7400,
		Total:         91020,
		Status:        domain.TxStatusSuccess,
	}
	require.NoError(t, tx.SetItems([]domain.TransactionItem{
		{ProductID: 1, Name: "Nasi Goreng Spesial", Price: 25000, Quantity: 2, Variant: "Default", SalesType: "Dine In"},
		{ProductID: 2, Name: "Es Teh Manis", Price: 8000, Quantity: 3, Variant: "Default", SalesType: "Dine In"},
	}))
	return tx
}

func TestRenderRequiresSuccess(t *testing.T) {
	tx := successfulTransaction(t)
	for _, status := range []string{domain.TxStatusPending, domain.TxStatusCancelled, domain.TxStatusExpired} {
		tx.Status = status
		_, err := Render(tx, "Ella Watson", time.Now())
		assert.ErrorIs(t, err, ErrNotFinalized)
	}
}

func TestRenderReceipt(t *testing.T) {
	tx := successfulTransaction(t)
	at := time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)

	r, err := Render(tx, "Ella Watson", at)
	require.NoError(t, err)

	assert.Equal(t, "K2J4X9", r.ReceiptNo)
	assert.Equal(t, "05/03/2024", r.Date)
	assert.Equal(t, "14:07", r.Time)
	assert.Equal(t, "Budi", r.CustomerName)
	assert.Equal(t, "Ella Watson", r.CashierName)
	assert.Equal(t, "Dine in", r.OrderType)

	require.Len(t, r.Lines, 2)
	assert.Equal(t, int64(50000), r.Lines[0].Amount)
	assert.Equal(t, "Rp 50.000", r.Lines[0].AmountText)
	assert.Equal(t, int64(24000), r.Lines[1].Amount)

	assert.Equal(t, "Rp 74.000", r.SubtotalText)
	assert.Equal(t, "Rp 2.220", r.TipServerText)
	assert.Equal(t, "Rp 7.400", r.PajakRestoranText)
	assert.Equal(t, "Rp 7.400", r.PpnText)
	assert.Equal(t, "Rp 91.020", r.TotalText)
}

func TestRenderIsDeterministic(t *testing.T) {
	tx := successfulTransaction(t)
	at := time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)

	a, err := Render(tx, "Ella Watson", at)
	require.NoError(t, err)
	b, err := Render(tx, "Ella Watson", at)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReceiptText(t *testing.T) {
	tx := successfulTransaction(t)
	at := time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)

	r, err := Render(tx, "Ella Watson", at)
	require.NoError(t, err)

	text := r.Text()
	assert.Contains(t, text, "05/03/2024 14:07")
	assert.Contains(t, text, "Receipt Number  K2J4X9")
	assert.Contains(t, text, "Cashier         Ella Watson")
	assert.Contains(t, text, "Tip Server (3%)")
	assert.Contains(t, text, "Pajak Restoran (10%)")
	assert.Contains(t, text, "PPN (10%)")
	assert.Contains(t, text, "Rp 91.020")
}
