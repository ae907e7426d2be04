package report

import (
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/montanaflynn/stats"
	"gorm.io/gorm"

	"github.com/bjo163/warungpos/internal/domain"
)

// Summary aggregates successful transactions over a date range.
type Summary struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Orders        int       `json:"orders"`
	Revenue       int64     `json:"revenue"`
	TaxCollected  int64     `json:"tax_collected"`
	AverageOrder  float64   `json:"average_order"`
	MedianOrder   float64   `json:"median_order"`
	LargestOrder  int64     `json:"largest_order"`
	SmallestOrder int64     `json:"smallest_order"`
}

// Service builds sales reports from the transaction table.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ParseRange parses free-form start/end parameters. An empty start defaults
// to the beginning of today, an empty end to now.
func ParseRange(start, end string) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := now

	if start != "" {
		t, err := dateparse.ParseAny(start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse start %q: %w", start, err)
		}
		from = t
	}
	if end != "" {
		t, err := dateparse.ParseAny(end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse end %q: %w", end, err)
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s before start %s", to, from)
	}
	return from, to, nil
}

// SalesSummary computes order statistics for successful transactions in the
// range.
func (s *Service) SalesSummary(ctx context.Context, from, to time.Time) (*Summary, error) {
	var rows []domain.Transaction
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at >= ? AND created_at <= ?", domain.TxStatusSuccess, from, to).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &Summary{Start: from, End: to, Orders: len(rows)}
	if len(rows) == 0 {
		return summary, nil
	}

	totals := make([]float64, 0, len(rows))
	summary.SmallestOrder = rows[0].Total
	for _, tx := range rows {
		summary.Revenue += tx.Total
		summary.TaxCollected += tx.TipServer + tx.PajakRestoran + tx.Ppn
		totals = append(totals, float64(tx.Total))
		if tx.Total > summary.LargestOrder {
			summary.LargestOrder = tx.Total
		}
		if tx.Total < summary.SmallestOrder {
			summary.SmallestOrder = tx.Total
		}
	}
	if mean, err := stats.Mean(totals); err == nil {
		summary.AverageOrder = mean
	}
	if median, err := stats.Median(totals); err == nil {
		summary.MedianOrder = median
	}
	return summary, nil
}

// Transactions lists the successful transactions in the range, oldest first.
func (s *Service) Transactions(ctx context.Context, from, to time.Time) ([]domain.Transaction, error) {
	var rows []domain.Transaction
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at >= ? AND created_at <= ?", domain.TxStatusSuccess, from, to).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
