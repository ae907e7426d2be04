package pos

import (
	"errors"
	"sync"

	"github.com/bjo163/warungpos/internal/domain"
)

// ViewState is the single explicit state of a sale session, replacing the
// independent modal flags of the original design so invalid combinations
// (two modals open at once) are unrepresentable.
type ViewState int

const (
	StateBrowsing ViewState = iota
	StateConfiguringItem
	StatePaying
	StateShowingReceipt
)

func (s ViewState) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateConfiguringItem:
		return "configuring_item"
	case StatePaying:
		return "paying"
	case StateShowingReceipt:
		return "showing_receipt"
	default:
		return "unknown"
	}
}

// Order types selectable on the sale header.
const (
	OrderTypeDineIn   = "Dine in"
	OrderTypeTakeAway = "Take Away"
	OrderTypeDelivery = "Delivery"
)

// DefaultCustomerName seeds the editable customer field on a fresh sale.
const DefaultCustomerName = "Customer Name"

var (
	ErrInvalidState       = errors.New("pos: operation not allowed in current view state")
	ErrNoDraft            = errors.New("pos: no item draft open")
	ErrProductUnavailable = errors.New("pos: product unavailable")
	ErrPriceChanged       = errors.New("pos: product price changed since draft opened")
	ErrEmptyCart          = errors.New("pos: cart is empty")
	ErrInvalidOrderType   = errors.New("pos: invalid order type")
)

// ChargeRef is the session's handle on an in-flight payment. Implemented by
// the payment package; kept as an interface so the session does not depend
// on the payment state machine.
type ChargeRef interface {
	TransactionID() int64
	Cancel() error
}

// Session is one terminal's sale in progress: the cart, the open draft, the
// customer header and the current view state. All access is serialized by
// the session mutex; payment timer callbacks re-enter through the exported
// methods.
type Session struct {
	mu sync.Mutex

	ID           string
	customerName string
	orderType    string

	cart      *Cart
	draft     *Draft
	state     ViewState
	charge    ChargeRef
	completed *domain.Transaction
}

func NewSession(id string) *Session {
	return &Session{
		ID:           id,
		customerName: DefaultCustomerName,
		orderType:    OrderTypeDineIn,
		cart:         NewCart(),
		state:        StateBrowsing,
	}
}

func (s *Session) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) CustomerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customerName
}

func (s *Session) OrderType() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderType
}

func (s *Session) SetCustomerName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" {
		s.customerName = name
	}
}

func (s *Session) SetOrderType(orderType string) error {
	switch orderType {
	case OrderTypeDineIn, OrderTypeTakeAway, OrderTypeDelivery:
	default:
		return ErrInvalidOrderType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderType = orderType
	return nil
}

// Lines returns a copy of the current cart lines.
func (s *Session) Lines() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// Totals derives the current order totals.
func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Totals()
}

// OpenDraft opens the item configuration draft over a product snapshot.
func (s *Session) OpenDraft(p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing {
		return ErrInvalidState
	}
	if !p.IsActive || p.Stock <= 0 {
		return ErrProductUnavailable
	}
	s.draft = NewDraft(p)
	s.state = StateConfiguringItem
	return nil
}

// Draft returns the open draft for mutation, or nil.
func (s *Session) Draft() *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// UpdateDraft applies fn to the open draft under the session lock.
func (s *Session) UpdateDraft(fn func(*Draft)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConfiguringItem || s.draft == nil {
		return ErrNoDraft
	}
	fn(s.draft)
	return nil
}

// CancelDraft discards the draft with no side effect.
func (s *Session) CancelDraft() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConfiguringItem {
		return ErrNoDraft
	}
	s.draft = nil
	s.state = StateBrowsing
	return nil
}

// CommitDraft reconciles the draft against the live product and hands the
// resulting line to the cart. The catalog may have changed under the open
// draft (realtime push); a vanished or repriced product invalidates the
// draft explicitly, shrunken stock clamps the quantity.
func (s *Session) CommitDraft(live *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConfiguringItem || s.draft == nil {
		return ErrNoDraft
	}
	draft := s.draft
	s.draft = nil
	s.state = StateBrowsing

	if live == nil || !live.IsActive || live.Stock <= 0 {
		return ErrProductUnavailable
	}
	if live.Price != draft.Price {
		return ErrPriceChanged
	}
	if draft.Quantity > live.Stock {
		draft.Quantity = live.Stock
	}
	s.cart.Add(draft.Line())
	return nil
}

// UpdateQuantity adjusts a cart line; quantity <= 0 removes it.
func (s *Session) UpdateQuantity(productID int64, variant string, salesType SalesType, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing {
		return ErrInvalidState
	}
	s.cart.UpdateQuantity(productID, variant, salesType, quantity)
	return nil
}

// ClearSale resets the cart and closes a shown receipt. The cart survives a
// completed charge until the operator clears it.
func (s *Session) ClearSale() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing && s.state != StateShowingReceipt {
		return ErrInvalidState
	}
	s.cart.Clear()
	s.completed = nil
	s.customerName = DefaultCustomerName
	s.orderType = OrderTypeDineIn
	s.state = StateBrowsing
	return nil
}

// BeginPayment moves the session into the paying state with the given
// in-flight charge. The charge must already be persisted.
func (s *Session) BeginPayment(charge ChargeRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing {
		return ErrInvalidState
	}
	if s.cart.IsEmpty() {
		return ErrEmptyCart
	}
	s.charge = charge
	s.state = StatePaying
	return nil
}

// CancelPayment dismisses a pending payment and returns to browsing with
// the cart intact.
func (s *Session) CancelPayment() error {
	s.mu.Lock()
	if s.state != StatePaying || s.charge == nil {
		s.mu.Unlock()
		return ErrInvalidState
	}
	charge := s.charge
	s.mu.Unlock()

	if err := charge.Cancel(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.charge = nil
	s.state = StateBrowsing
	return nil
}

// ShowReceipt closes the payment view and opens the receipt for the
// completed transaction. Called by the payment state machine when the
// success display delay elapses.
func (s *Session) ShowReceipt(tx *domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaying {
		return
	}
	s.charge = nil
	s.completed = tx
	s.state = StateShowingReceipt
}

// CompletedTransaction returns the transaction behind the shown receipt.
func (s *Session) CompletedTransaction() *domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// CloseReceipt dismisses the receipt view without clearing the cart.
func (s *Session) CloseReceipt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateShowingReceipt {
		return ErrInvalidState
	}
	s.state = StateBrowsing
	return nil
}

// Manager tracks sale sessions per terminal.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Session returns the session for a terminal, creating it on first use.
func (m *Manager) Session(id string) *Session {
	m.mu.RLock()
	if s, ok := m.sessions[id]; ok {
		m.mu.RUnlock()
		return s
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := NewSession(id)
	m.sessions[id] = s
	return s
}

// Remove drops a terminal session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
