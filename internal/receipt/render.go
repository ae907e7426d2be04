// Package receipt projects a completed transaction into a printable
// receipt. Rendering is read-only and has no side effects.
package receipt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bjo163/warungpos/internal/domain"
	"github.com/bjo163/warungpos/internal/pos"
)

var ErrNotFinalized = errors.New("receipt: transaction is not successful")

// Line is one item row on the receipt.
type Line struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Amount     int64  `json:"amount"`
	AmountText string `json:"amount_text"`
}

// Receipt is the rendered projection of a finalized order.
type Receipt struct {
	ReceiptNo    string `json:"receipt_no"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	CustomerName string `json:"customer_name"`
	CashierName  string `json:"cashier_name"`
	OrderType    string `json:"order_type"`
	Lines        []Line `json:"lines"`

	Subtotal          int64  `json:"subtotal"`
	TipServer         int64  `json:"tip_server"`
	PajakRestoran     int64  `json:"pajak_restoran"`
	Ppn               int64  `json:"ppn"`
	Total             int64  `json:"total"`
	SubtotalText      string `json:"subtotal_text"`
	TipServerText     string `json:"tip_server_text"`
	PajakRestoranText string `json:"pajak_restoran_text"`
	PpnText           string `json:"ppn_text"`
	TotalText         string `json:"total_text"`
}

// Render builds the receipt for a successful transaction. The generated-at
// timestamp is passed in so rendering stays deterministic.
func Render(tx *domain.Transaction, cashierName string, at time.Time) (*Receipt, error) {
	if tx.Status != domain.TxStatusSuccess {
		return nil, ErrNotFinalized
	}
	items, err := tx.ItemsList()
	if err != nil {
		return nil, fmt.Errorf("decode transaction items: %w", err)
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		amount := item.Price * int64(item.Quantity)
		lines = append(lines, Line{
			Name:       item.Name,
			Quantity:   item.Quantity,
			Amount:     amount,
			AmountText: pos.FormatRupiah(amount),
		})
	}

	return &Receipt{
		ReceiptNo:         tx.ReceiptNo,
		Date:              at.Format("02/01/2006"),
		Time:              at.Format("15:04"),
		CustomerName:      tx.CustomerName,
		CashierName:       cashierName,
		OrderType:         tx.OrderType,
		Lines:             lines,
		Subtotal:          tx.Subtotal,
		TipServer:         tx.TipServer,
		PajakRestoran:     tx.PajakRestoran,
		Ppn:               tx.Ppn,
		Total:             tx.Total,
		SubtotalText:      pos.FormatRupiah(tx.Subtotal),
		TipServerText:     pos.FormatRupiah(tx.TipServer),
		PajakRestoranText: pos.FormatRupiah(tx.PajakRestoran),
		PpnText:           pos.FormatRupiah(tx.Ppn),
		TotalText:         pos.FormatRupiah(tx.Total),
	}, nil
}

// Text renders the plain-text form for the printer feed.
func (r *Receipt) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", r.Date, r.Time)
	fmt.Fprintf(&b, "Receipt Number  %s\n", r.ReceiptNo)
	fmt.Fprintf(&b, "Customer        %s\n", r.CustomerName)
	fmt.Fprintf(&b, "Cashier         %s\n", r.CashierName)
	fmt.Fprintf(&b, "----------------------------------------\n")
	fmt.Fprintf(&b, "%s\n", r.OrderType)
	fmt.Fprintf(&b, "----------------------------------------\n")
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "%-20s x%-3d %s\n", l.Name, l.Quantity, l.AmountText)
	}
	fmt.Fprintf(&b, "----------------------------------------\n")
	fmt.Fprintf(&b, "Subtotal             %s\n", r.SubtotalText)
	fmt.Fprintf(&b, "Tip Server (3%%)      %s\n", r.TipServerText)
	fmt.Fprintf(&b, "Pajak Restoran (10%%) %s\n", r.PajakRestoranText)
	fmt.Fprintf(&b, "PPN (10%%)            %s\n", r.PpnText)
	fmt.Fprintf(&b, "Total                %s\n", r.TotalText)
	return b.String()
}
