package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjo163/warungpos/config"
	"github.com/bjo163/warungpos/internal/domain"
	"github.com/bjo163/warungpos/internal/pos"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore records store calls without a database.
type fakeStore struct {
	mu          sync.Mutex
	created     *domain.Transaction
	status      string
	cancelled   bool
	rejectMarks bool
	createErr   error
	cancelErrs  []error
}

func (f *fakeStore) CreatePending(ctx context.Context, tx *domain.Transaction, lines []pos.CartLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = tx
	f.status = domain.TxStatusPending
	return nil
}

func (f *fakeStore) MarkSuccess(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectMarks || f.status != domain.TxStatusPending {
		return ErrNotPending
	}
	f.status = domain.TxStatusSuccess
	return nil
}

func (f *fakeStore) CancelPending(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.cancelErrs) > 0 {
		err := f.cancelErrs[0]
		f.cancelErrs = f.cancelErrs[1:]
		return err
	}
	if f.status != domain.TxStatusPending {
		return ErrNotPending
	}
	f.status = domain.TxStatusCancelled
	f.cancelled = true
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.created == nil {
		return nil, errStoreDown
	}
	row := *f.created
	row.Status = f.status
	return &row, nil
}

func (f *fakeStore) List(ctx context.Context, status string, page, pageSize int) ([]domain.Transaction, int64, error) {
	return nil, 0, nil
}

func (f *fakeStore) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, nil
}

func (f *fakeStore) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func testOrder() Order {
	return Order{
		Lines: []pos.CartLine{
			{ProductID: 1, Name: "Nasi Goreng Spesial", Price: 25000, Quantity: 2, Variant: "Default", SalesType: pos.SalesTypeDineIn},
			{ProductID: 2, Name: "Es Teh Manis", Price: 8000, Quantity: 3, Variant: "Default", SalesType: pos.SalesTypeDineIn},
		},
		CustomerName: "Budi",
		OrderType:    "Dine in",
	}
}

func shortConfig(source string) Config {
	return Config{
		DelaySource:  source,
		PendingDelay: 20 * time.Millisecond,
		StoreDelay:   20 * time.Millisecond,
		DisplayDelay: 20 * time.Millisecond,
	}
}

func TestChargeRejectsEmptyCart(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(shortConfig(config.DelaySourceClient), store, nil)

	_, err := svc.Charge(context.Background(), Order{}, Callbacks{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, store.created)
}

func TestChargeSurfacesStoreFailure(t *testing.T) {
	store := &fakeStore{createErr: ErrInsufficientStock}
	svc := NewService(shortConfig(config.DelaySourceClient), store, nil)

	_, err := svc.Charge(context.Background(), testOrder(), Callbacks{})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestChargePersistsTotals(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(shortConfig(config.DelaySourceClient), store, nil)

	ch, err := svc.Charge(context.Background(), testOrder(), Callbacks{})
	require.NoError(t, err)
	defer func() { _ = ch.Cancel() }()

	tx := ch.Transaction()
	assert.Equal(t, int64(74000), tx.Subtotal)
	assert.Equal(t, int64(2220), tx.TipServer)
	assert.Equal(t, int64(7400), tx.PajakRestoran)
	assert.Equal(t, int64(7400), tx.Ppn)
	assert.Equal(t, int64(91020), tx.Total)
	assert.NotEmpty(t, tx.ReceiptNo)

	items, err := tx.ItemsList()
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestChargeClientSourceLifecycle(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(shortConfig(config.DelaySourceClient), store, nil)

	successCh := make(chan *domain.Transaction, 1)
	closedCh := make(chan *domain.Transaction, 1)
	ch, err := svc.Charge(context.Background(), testOrder(), Callbacks{
		OnSuccess: func(tx *domain.Transaction) { successCh <- tx },
		OnClosed:  func(tx *domain.Transaction) { closedCh <- tx },
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, ch.Status())

	select {
	case tx := <-successCh:
		assert.Equal(t, domain.TxStatusSuccess, tx.Status)
	case <-time.After(time.Second):
		t.Fatal("success callback never fired")
	}
	assert.Equal(t, domain.TxStatusSuccess, store.Status())

	select {
	case <-closedCh:
	case <-time.After(time.Second):
		t.Fatal("closed callback never fired")
	}
	assert.Equal(t, StatusClosed, ch.Status())
}

func TestChargeStoreSourceLifecycle(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(shortConfig(config.DelaySourceStore), store, nil)

	closedCh := make(chan *domain.Transaction, 1)
	ch, err := svc.Charge(context.Background(), testOrder(), Callbacks{
		OnClosed: func(tx *domain.Transaction) { closedCh <- tx },
	})
	require.NoError(t, err)

	select {
	case <-closedCh:
	case <-time.After(time.Second):
		t.Fatal("closed callback never fired")
	}
	assert.Equal(t, StatusClosed, ch.Status())
	assert.Equal(t, domain.TxStatusSuccess, store.Status())
}

func TestCancelWhilePending(t *testing.T) {
	store := &fakeStore{}
	cfg := shortConfig(config.DelaySourceClient)
	cfg.PendingDelay = time.Hour
	svc := NewService(cfg, store, nil)

	ch, err := svc.Charge(context.Background(), testOrder(), Callbacks{})
	require.NoError(t, err)

	require.NoError(t, ch.Cancel())
	assert.Equal(t, StatusCancelled, ch.Status())
	assert.True(t, store.cancelled)

	// terminal; cannot cancel twice
	assert.ErrorIs(t, ch.Cancel(), ErrNotPending)
}

func TestCancelAfterSuccessFails(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(shortConfig(config.DelaySourceClient), store, nil)

	closedCh := make(chan *domain.Transaction, 1)
	ch, err := svc.Charge(context.Background(), testOrder(), Callbacks{
		OnClosed: func(tx *domain.Transaction) { closedCh <- tx },
	})
	require.NoError(t, err)

	select {
	case <-closedCh:
	case <-time.After(time.Second):
		t.Fatal("closed callback never fired")
	}
	assert.ErrorIs(t, ch.Cancel(), ErrNotPending)
	assert.False(t, store.cancelled)
}

func TestCancelRetriesAfterStoreFailure(t *testing.T) {
	store := &fakeStore{cancelErrs: []error{errStoreDown}}
	cfg := shortConfig(config.DelaySourceClient)
	cfg.PendingDelay = time.Hour
	svc := NewService(cfg, store, nil)

	ch, err := svc.Charge(context.Background(), testOrder(), Callbacks{})
	require.NoError(t, err)

	// a transient store failure leaves the charge pending so the operator
	// can retry
	assert.ErrorIs(t, ch.Cancel(), errStoreDown)
	assert.Equal(t, StatusPending, ch.Status())
	assert.Equal(t, domain.TxStatusPending, store.Status())
	assert.False(t, store.cancelled)

	require.NoError(t, ch.Cancel())
	assert.Equal(t, StatusCancelled, ch.Status())
	assert.Equal(t, domain.TxStatusCancelled, store.Status())
	assert.True(t, store.cancelled)
}

func TestCancelRollsForwardWhenPaymentWon(t *testing.T) {
	store := &fakeStore{}
	cfg := shortConfig(config.DelaySourceClient)
	cfg.PendingDelay = time.Hour
	svc := NewService(cfg, store, nil)

	closedCh := make(chan *domain.Transaction, 1)
	ch, err := svc.Charge(context.Background(), testOrder(), Callbacks{
		OnClosed: func(tx *domain.Transaction) { closedCh <- tx },
	})
	require.NoError(t, err)

	// the persisted row flips to success underneath the operator's cancel
	require.NoError(t, store.MarkSuccess(context.Background(), ch.TransactionID()))

	assert.ErrorIs(t, ch.Cancel(), ErrNotPending)
	assert.False(t, store.cancelled)

	// the machine rolls forward to the receipt instead of wedging
	select {
	case <-closedCh:
	case <-time.After(time.Second):
		t.Fatal("closed callback never fired")
	}
	assert.Equal(t, StatusClosed, ch.Status())
}

func TestCancelAfterBackgroundExpiry(t *testing.T) {
	store := &fakeStore{}
	cfg := shortConfig(config.DelaySourceClient)
	cfg.PendingDelay = time.Hour
	svc := NewService(cfg, store, nil)

	ch, err := svc.Charge(context.Background(), testOrder(), Callbacks{})
	require.NoError(t, err)

	// stale-charge expiry released the row first; cancel still settles the
	// local machine
	store.mu.Lock()
	store.status = domain.TxStatusExpired
	store.mu.Unlock()

	require.NoError(t, ch.Cancel())
	assert.Equal(t, StatusCancelled, ch.Status())
}

func TestTimerStopsWhenStoreRejects(t *testing.T) {
	store := &fakeStore{rejectMarks: true}
	svc := NewService(shortConfig(config.DelaySourceClient), store, nil)

	ch, err := svc.Charge(context.Background(), testOrder(), Callbacks{
		OnSuccess: func(tx *domain.Transaction) { t.Error("success must not fire") },
	})
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, StatusPending, ch.Status())
}
