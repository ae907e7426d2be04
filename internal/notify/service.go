// Package notify delivers receipts out-of-band once a charge succeeds:
// email through SMTP and an optional webhook POST. Delivery is best-effort
// and fully asynchronous behind a worker pool; failures are logged and never
// affect the sale.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/guonaihong/gout"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/bjo163/warungpos/config"
	"github.com/bjo163/warungpos/internal/domain"
	"github.com/bjo163/warungpos/internal/payment"
	"github.com/bjo163/warungpos/internal/receipt"
)

// Store is the minimal transaction lookup the notifier needs.
type Store interface {
	Get(ctx context.Context, id int64) (*domain.Transaction, error)
}

// Service fans out transaction success events to the configured channels.
type Service struct {
	smtp    config.SmtpConfig
	webhook config.WebhookConfig
	cashier string
	pool    *ants.Pool
	bus     EventBus.Bus
	store   Store
}

func NewService(cfg *config.AppConfig, store Store, bus EventBus.Bus) (*Service, error) {
	pool, err := ants.NewPool(8)
	if err != nil {
		return nil, err
	}
	s := &Service{
		smtp:    cfg.Smtp,
		webhook: cfg.Webhook,
		cashier: cfg.Payment.CashierName,
		pool:    pool,
		bus:     bus,
		store:   store,
	}
	if bus != nil {
		if err := bus.Subscribe(payment.TopicChargeStatus, s.onChargeStatus); err != nil {
			pool.Release()
			return nil, err
		}
	}
	return s, nil
}

// Stop releases the worker pool.
func (s *Service) Stop() {
	if s.bus != nil {
		_ = s.bus.Unsubscribe(payment.TopicChargeStatus, s.onChargeStatus)
	}
	s.pool.Release()
}

func (s *Service) onChargeStatus(transactionID int64, status string) {
	if status != payment.StatusSuccess || !s.webhook.Enable {
		return
	}
	err := s.pool.Submit(func() {
		s.sendWebhook(transactionID)
	})
	if err != nil {
		zap.L().Warn("notify pool rejected task",
			zap.Int64("transaction_id", transactionID),
			zap.Error(err))
	}
}

func (s *Service) sendWebhook(transactionID int64) {
	body := map[string]interface{}{
		"event":          "transaction.success",
		"transaction_id": fmt.Sprintf("%d", transactionID),
		"sent_at":        time.Now().Format(time.RFC3339),
	}
	if tx, err := s.store.Get(context.Background(), transactionID); err == nil {
		body["receipt_no"] = tx.ReceiptNo
		body["total"] = tx.Total
		body["order_type"] = tx.OrderType
	}
	err := gout.POST(s.webhook.URL).
		SetJSON(body).
		SetTimeout(10 * time.Second).
		Do()
	if err != nil {
		zap.L().Warn("transaction webhook delivery failed",
			zap.Int64("transaction_id", transactionID),
			zap.String("url", s.webhook.URL),
			zap.Error(err))
		return
	}
	zap.L().Info("transaction webhook delivered", zap.Int64("transaction_id", transactionID))
}

// SendReceiptEmail emails the rendered receipt to the given address
// ("Send Receipt" on the receipt view). Runs on the worker pool.
func (s *Service) SendReceiptEmail(tx *domain.Transaction, to string) error {
	if !s.smtp.Enable {
		return fmt.Errorf("notify: smtp is disabled")
	}
	r, err := receipt.Render(tx, s.cashier, time.Now())
	if err != nil {
		return err
	}
	return s.pool.Submit(func() {
		m := gomail.NewMessage()
		m.SetHeader("From", s.smtp.From)
		m.SetHeader("To", to)
		m.SetHeader("Subject", fmt.Sprintf("Receipt %s", r.ReceiptNo))
		m.SetBody("text/plain", r.Text())

		d := gomail.NewDialer(s.smtp.Host, s.smtp.Port, s.smtp.Username, s.smtp.Password)
		if err := d.DialAndSend(m); err != nil {
			zap.L().Warn("receipt email delivery failed",
				zap.String("receipt_no", r.ReceiptNo),
				zap.String("to", to),
				zap.Error(err))
			return
		}
		zap.L().Info("receipt email delivered",
			zap.String("receipt_no", r.ReceiptNo),
			zap.String("to", to))
	})
}
