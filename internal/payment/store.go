package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bjo163/warungpos/internal/domain"
	"github.com/bjo163/warungpos/internal/pos"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrInsufficientStock aborts a charge when any line cannot be covered
	// by the remaining stock.
	ErrInsufficientStock = errors.New("payment: insufficient stock")

	// ErrNotPending is returned for status transitions on a transaction
	// that is no longer pending.
	ErrNotPending = errors.New("payment: transaction is not pending")
)

// Store persists charges. Creating a charge and decrementing stock happen in
// one database transaction: both succeed or neither does. Cancelling restores
// the decremented stock the same way.
type Store interface {
	// CreatePending inserts the pending transaction and decrements stock
	// for every line atomically.
	CreatePending(ctx context.Context, tx *domain.Transaction, lines []pos.CartLine) error

	// MarkSuccess flips a pending transaction to success.
	MarkSuccess(ctx context.Context, id int64) error

	// CancelPending marks a pending transaction cancelled and restores the
	// decremented stock atomically.
	CancelPending(ctx context.Context, id int64) error

	// Get retrieves a transaction by ID.
	Get(ctx context.Context, id int64) (*domain.Transaction, error)

	// List retrieves transactions filtered by status with pagination.
	List(ctx context.Context, status string, page, pageSize int) ([]domain.Transaction, int64, error)

	// ExpireStale marks pending transactions older than the cutoff as
	// expired, restoring their stock. Returns the number expired.
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// GormStore is the GORM implementation of Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreatePending(ctx context.Context, tx *domain.Transaction, lines []pos.CartLine) error {
	return s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(tx).Error; err != nil {
			return err
		}
		for _, l := range lines {
			res := dbtx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", l.ProductID, l.Quantity).
				Update("stock", gorm.Expr("stock - ?", l.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: product %d needs %d", ErrInsufficientStock, l.ProductID, l.Quantity)
			}
		}
		return nil
	})
}

func (s *GormStore) MarkSuccess(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TxStatusPending).
		Updates(map[string]interface{}{
			"status":     domain.TxStatusSuccess,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *GormStore) CancelPending(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		return releasePending(dbtx, id, domain.TxStatusCancelled)
	})
}

func (s *GormStore) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := s.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *GormStore) List(ctx context.Context, status string, page, pageSize int) ([]domain.Transaction, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.Transaction{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.Transaction
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	return rows, total, err
}

func (s *GormStore) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	var stale []domain.Transaction
	cutoff := time.Now().Add(-olderThan)
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.TxStatusPending, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, tx := range stale {
		err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
			return releasePending(dbtx, tx.ID, domain.TxStatusExpired)
		})
		if err != nil {
			zap.L().Error("failed to expire stale transaction",
				zap.Int64("transaction_id", tx.ID),
				zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

// releasePending flips a pending transaction to the terminal status and
// restores the stock it had decremented, inside the caller's database
// transaction.
func releasePending(dbtx *gorm.DB, id int64, status string) error {
	var tx domain.Transaction
	if err := dbtx.First(&tx, id).Error; err != nil {
		return err
	}
	if tx.Status != domain.TxStatusPending {
		return ErrNotPending
	}

	res := dbtx.Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TxStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}

	items, err := tx.ItemsList()
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := dbtx.Model(&domain.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}
