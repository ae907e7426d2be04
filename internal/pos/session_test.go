package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjo163/warungpos/internal/domain"
)

type fakeCharge struct {
	id        int64
	cancelled bool
	cancelErr error
}

func (f *fakeCharge) TransactionID() int64 { return f.id }
func (f *fakeCharge) Cancel() error {
	f.cancelled = true
	return f.cancelErr
}

func TestSessionStartsBrowsing(t *testing.T) {
	s := NewSession("t1")
	assert.Equal(t, StateBrowsing, s.State())
	assert.Equal(t, DefaultCustomerName, s.CustomerName())
	assert.Equal(t, OrderTypeDineIn, s.OrderType())
}

func TestSessionSetOrderType(t *testing.T) {
	s := NewSession("t1")
	require.NoError(t, s.SetOrderType(OrderTypeDelivery))
	assert.Equal(t, OrderTypeDelivery, s.OrderType())
	assert.ErrorIs(t, s.SetOrderType("Drive Through"), ErrInvalidOrderType)
}

func TestSessionSetCustomerNameIgnoresEmpty(t *testing.T) {
	s := NewSession("t1")
	s.SetCustomerName("Budi")
	assert.Equal(t, "Budi", s.CustomerName())
	s.SetCustomerName("")
	assert.Equal(t, "Budi", s.CustomerName())
}

func TestOpenDraftRequiresAvailableProduct(t *testing.T) {
	s := NewSession("t1")

	inactive := product(1, 15000, 10)
	inactive.IsActive = false
	assert.ErrorIs(t, s.OpenDraft(inactive), ErrProductUnavailable)

	empty := product(1, 15000, 0)
	assert.ErrorIs(t, s.OpenDraft(empty), ErrProductUnavailable)

	require.NoError(t, s.OpenDraft(product(1, 15000, 10)))
	assert.Equal(t, StateConfiguringItem, s.State())

	// no second draft while configuring
	assert.ErrorIs(t, s.OpenDraft(product(2, 9000, 5)), ErrInvalidState)
}

func TestCancelDraftDiscards(t *testing.T) {
	s := NewSession("t1")
	require.NoError(t, s.OpenDraft(product(1, 15000, 10)))
	require.NoError(t, s.CancelDraft())
	assert.Equal(t, StateBrowsing, s.State())
	assert.Nil(t, s.Draft())
	assert.Empty(t, s.Lines())
}

func TestCommitDraftAddsLine(t *testing.T) {
	s := NewSession("t1")
	p := product(1, 15000, 10)
	require.NoError(t, s.OpenDraft(p))
	require.NoError(t, s.UpdateDraft(func(d *Draft) { d.SetQuantity(2) }))

	require.NoError(t, s.CommitDraft(&p))
	assert.Equal(t, StateBrowsing, s.State())
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 2, s.Lines()[0].Quantity)
}

func TestCommitDraftProductVanished(t *testing.T) {
	s := NewSession("t1")
	require.NoError(t, s.OpenDraft(product(1, 15000, 10)))

	assert.ErrorIs(t, s.CommitDraft(nil), ErrProductUnavailable)
	// draft is discarded either way
	assert.Equal(t, StateBrowsing, s.State())
	assert.Nil(t, s.Draft())
	assert.Empty(t, s.Lines())
}

func TestCommitDraftPriceChanged(t *testing.T) {
	s := NewSession("t1")
	require.NoError(t, s.OpenDraft(product(1, 15000, 10)))

	repriced := product(1, 17000, 10)
	assert.ErrorIs(t, s.CommitDraft(&repriced), ErrPriceChanged)
	assert.Empty(t, s.Lines())
}

func TestCommitDraftClampsToLiveStock(t *testing.T) {
	s := NewSession("t1")
	require.NoError(t, s.OpenDraft(product(1, 15000, 10)))
	require.NoError(t, s.UpdateDraft(func(d *Draft) { d.SetQuantity(8) }))

	shrunk := product(1, 15000, 3)
	require.NoError(t, s.CommitDraft(&shrunk))
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 3, s.Lines()[0].Quantity)
}

func TestBeginPaymentRequiresLines(t *testing.T) {
	s := NewSession("t1")
	assert.ErrorIs(t, s.BeginPayment(&fakeCharge{id: 1}), ErrEmptyCart)
}

func TestPaymentLifecycle(t *testing.T) {
	s := NewSession("t1")
	p := product(1, 15000, 10)
	require.NoError(t, s.OpenDraft(p))
	require.NoError(t, s.CommitDraft(&p))

	charge := &fakeCharge{id: 42}
	require.NoError(t, s.BeginPayment(charge))
	assert.Equal(t, StatePaying, s.State())

	// cart mutation is locked while paying
	assert.ErrorIs(t, s.UpdateQuantity(1, DefaultVariant, SalesTypeDineIn, 5), ErrInvalidState)
	assert.ErrorIs(t, s.ClearSale(), ErrInvalidState)

	tx := &domain.Transaction{ID: 42, Status: domain.TxStatusSuccess}
	s.ShowReceipt(tx)
	assert.Equal(t, StateShowingReceipt, s.State())
	assert.Equal(t, tx, s.CompletedTransaction())

	// cart survives until Clear Sale
	require.NoError(t, s.CloseReceipt())
	assert.Equal(t, StateBrowsing, s.State())
	assert.Len(t, s.Lines(), 1)
}

func TestCancelPaymentReturnsToBrowsing(t *testing.T) {
	s := NewSession("t1")
	p := product(1, 15000, 10)
	require.NoError(t, s.OpenDraft(p))
	require.NoError(t, s.CommitDraft(&p))

	charge := &fakeCharge{id: 42}
	require.NoError(t, s.BeginPayment(charge))
	require.NoError(t, s.CancelPayment())

	assert.True(t, charge.cancelled)
	assert.Equal(t, StateBrowsing, s.State())
	assert.Len(t, s.Lines(), 1)
}

func TestShowReceiptIgnoredOutsidePaying(t *testing.T) {
	s := NewSession("t1")
	s.ShowReceipt(&domain.Transaction{ID: 1})
	assert.Equal(t, StateBrowsing, s.State())
	assert.Nil(t, s.CompletedTransaction())
}

func TestClearSaleResetsHeader(t *testing.T) {
	s := NewSession("t1")
	p := product(1, 15000, 10)
	require.NoError(t, s.OpenDraft(p))
	require.NoError(t, s.CommitDraft(&p))
	s.SetCustomerName("Budi")
	require.NoError(t, s.SetOrderType(OrderTypeTakeAway))

	require.NoError(t, s.ClearSale())
	assert.Empty(t, s.Lines())
	assert.Equal(t, DefaultCustomerName, s.CustomerName())
	assert.Equal(t, OrderTypeDineIn, s.OrderType())
}

func TestManagerReturnsSameSession(t *testing.T) {
	m := NewManager()
	a := m.Session("t1")
	b := m.Session("t1")
	assert.Same(t, a, b)
	assert.NotSame(t, a, m.Session("t2"))

	m.Remove("t1")
	assert.NotSame(t, a, m.Session("t1"))
}
