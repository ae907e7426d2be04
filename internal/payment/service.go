// Package payment drives a simulated biometric charge through its state
// machine: Idle -> Pending -> Success -> Closed, with an explicit, configured
// delay source. The original design carried two divergent timing strategies
// (a client-side timer and a store-side status flip); here exactly one is
// selected by configuration and never mixed.
package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/bjo163/warungpos/internal/domain"
	"github.com/bjo163/warungpos/internal/pos"
	"github.com/bjo163/warungpos/pkg/common"
	"github.com/bjo163/warungpos/pkg/metrics"
	"go.uber.org/zap"
)

// Charge statuses as seen by the session.
const (
	StatusPending   = "pending"
	StatusSuccess   = "success"
	StatusClosed    = "closed"
	StatusCancelled = "cancelled"
)

// TopicChargeStatus carries (transactionID int64, status string) events for
// every charge transition.
const TopicChargeStatus = "payment.charge.status"

var ErrEmptyCart = errors.New("payment: cart is empty")

// Config controls the simulated payment timing. DelaySource selects which
// of the two delays drives Pending -> Success.
type Config struct {
	DelaySource  string        // config.DelaySourceClient or config.DelaySourceStore
	PendingDelay time.Duration // client source: local scan simulation
	StoreDelay   time.Duration // store source: persisted status flip
	DisplayDelay time.Duration // success screen hold before the receipt opens
}

// Order is the finalized cart handed to Charge.
type Order struct {
	Lines        []pos.CartLine
	CustomerName string
	OrderType    string
}

// Callbacks let the owning session follow the charge lifecycle. They are
// invoked from timer goroutines.
type Callbacks struct {
	OnSuccess func(*domain.Transaction)
	OnClosed  func(*domain.Transaction)
}

// Service creates and tracks in-flight charges.
type Service struct {
	cfg   Config
	store Store
	bus   EventBus.Bus
}

func NewService(cfg Config, store Store, bus EventBus.Bus) *Service {
	return &Service{cfg: cfg, store: store, bus: bus}
}

// Charge finalizes a cart into a pending transaction: the record is created
// and stock decremented in one storage transaction before any state change.
// An empty cart is rejected with no side effect. On storage failure no
// payment view opens and the error is surfaced to the caller.
func (s *Service) Charge(ctx context.Context, order Order, cb Callbacks) (*Charge, error) {
	if len(order.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := pos.CalculateTotals(order.Lines)
	now := time.Now()
	tx := &domain.Transaction{
		ID:            common.UUIDint64(),
		ReceiptNo:     common.ReceiptCode(),
		CustomerName:  order.CustomerName,
		OrderType:     order.OrderType,
		Subtotal:      totals.Subtotal,
		TipServer:     totals.TipServer,
		PajakRestoran: totals.PajakRestoran,
		Ppn:           totals.Ppn,
		Total:         totals.Total,
		Status:        domain.TxStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	items := make([]domain.TransactionItem, 0, len(order.Lines))
	for _, l := range order.Lines {
		items = append(items, domain.TransactionItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Variant:   l.Variant,
			SalesType: string(l.SalesType),
			Notes:     l.Notes,
		})
	}
	if err := tx.SetItems(items); err != nil {
		return nil, err
	}

	if err := s.store.CreatePending(ctx, tx, order.Lines); err != nil {
		zap.L().Error("charge persistence failed",
			zap.String("receipt_no", tx.ReceiptNo),
			zap.Int64("total", tx.Total),
			zap.Error(err))
		return nil, err
	}

	ch := &Charge{svc: s, tx: tx, cb: cb, status: StatusPending}
	s.publish(tx.ID, StatusPending)
	zap.L().Info("charge created",
		zap.Int64("transaction_id", tx.ID),
		zap.String("receipt_no", tx.ReceiptNo),
		zap.Int64("total", tx.Total),
		zap.String("delay_source", s.cfg.DelaySource))

	// Exactly one delay source arms the Pending -> Success transition.
	ch.mu.Lock()
	if s.cfg.DelaySource == "store" {
		ch.timer = time.AfterFunc(s.cfg.StoreDelay, ch.completeFromStore)
	} else {
		ch.timer = time.AfterFunc(s.cfg.PendingDelay, ch.completeFromClient)
	}
	ch.mu.Unlock()
	return ch, nil
}

func (s *Service) publish(transactionID int64, status string) {
	if s.bus != nil {
		s.bus.Publish(TopicChargeStatus, transactionID, status)
	}
}

// Charge is one in-flight simulated payment.
type Charge struct {
	svc *Service
	tx  *domain.Transaction
	cb  Callbacks

	mu     sync.Mutex
	status string
	timer  *time.Timer
}

// TransactionID returns the persisted transaction identifier.
func (c *Charge) TransactionID() int64 {
	return c.tx.ID
}

// Status returns the current charge status.
func (c *Charge) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Transaction returns the charge's transaction record.
func (c *Charge) Transaction() *domain.Transaction {
	return c.tx
}

// completeFromClient is the client delay source: the local timer simulates
// the biometric scan, then the success is persisted.
func (c *Charge) completeFromClient() {
	if err := c.svc.store.MarkSuccess(context.Background(), c.tx.ID); err != nil {
		// Cancelled or expired underneath the timer; the machine stops here.
		zap.L().Warn("charge no longer pending, success not applied",
			zap.Int64("transaction_id", c.tx.ID),
			zap.Error(err))
		return
	}
	c.succeed()
}

// completeFromStore is the store delay source: the status flip happens on
// the persisted record first (standing in for the device gateway) and the
// machine advances only once the store accepted it.
func (c *Charge) completeFromStore() {
	if err := c.svc.store.MarkSuccess(context.Background(), c.tx.ID); err != nil {
		zap.L().Warn("store status flip rejected",
			zap.Int64("transaction_id", c.tx.ID),
			zap.Error(err))
		return
	}
	c.succeed()
}

func (c *Charge) succeed() {
	c.mu.Lock()
	if c.status != StatusPending {
		c.mu.Unlock()
		return
	}
	c.status = StatusSuccess
	c.tx.Status = domain.TxStatusSuccess
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.svc.cfg.DisplayDelay, c.close)
	c.mu.Unlock()

	metrics.IncrCounter("orders_total", 1)
	metrics.IncrCounter("revenue_total", c.tx.Total)
	c.svc.publish(c.tx.ID, StatusSuccess)
	zap.L().Info("payment success",
		zap.Int64("transaction_id", c.tx.ID),
		zap.String("receipt_no", c.tx.ReceiptNo))
	if c.cb.OnSuccess != nil {
		c.cb.OnSuccess(c.tx)
	}
}

// close ends the success display and hands off to the receipt view. The
// cart is left to the operator's Clear Sale.
func (c *Charge) close() {
	c.mu.Lock()
	if c.status != StatusSuccess {
		c.mu.Unlock()
		return
	}
	c.status = StatusClosed
	c.mu.Unlock()

	c.svc.publish(c.tx.ID, StatusClosed)
	if c.cb.OnClosed != nil {
		c.cb.OnClosed(c.tx)
	}
}

// Cancel dismisses the charge. Allowed only while pending; the persisted
// transaction is marked cancelled and its stock decrement restored as the
// compensating action. The local machine leaves pending only once the store
// accepted the transition, so a failed cancel can be retried.
func (c *Charge) Cancel() error {
	c.mu.Lock()
	if c.status != StatusPending {
		c.mu.Unlock()
		return ErrNotPending
	}
	c.mu.Unlock()

	err := c.svc.store.CancelPending(context.Background(), c.tx.ID)
	if errors.Is(err, ErrNotPending) {
		return c.reconcile()
	}
	if err != nil {
		zap.L().Error("charge cancel failed to release stock",
			zap.Int64("transaction_id", c.tx.ID),
			zap.Error(err))
		return err
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.status = StatusCancelled
	c.mu.Unlock()

	c.tx.Status = domain.TxStatusCancelled
	c.svc.publish(c.tx.ID, StatusCancelled)
	zap.L().Info("charge cancelled", zap.Int64("transaction_id", c.tx.ID))
	return nil
}

// reconcile aligns the local machine with a persisted row that already left
// pending under a concurrent transition.
func (c *Charge) reconcile() error {
	row, err := c.svc.store.Get(context.Background(), c.tx.ID)
	if err != nil {
		return ErrNotPending
	}
	switch row.Status {
	case domain.TxStatusSuccess:
		// The payment won the race; roll forward so the receipt still opens.
		c.succeed()
		return ErrNotPending
	case domain.TxStatusCancelled, domain.TxStatusExpired:
		c.mu.Lock()
		if c.status != StatusPending {
			c.mu.Unlock()
			return ErrNotPending
		}
		if c.timer != nil {
			c.timer.Stop()
		}
		c.status = StatusCancelled
		c.mu.Unlock()

		c.tx.Status = row.Status
		c.svc.publish(c.tx.ID, StatusCancelled)
		return nil
	default:
		return ErrNotPending
	}
}
