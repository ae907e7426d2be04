package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bjo163/warungpos/internal/payment"
	"github.com/bjo163/warungpos/internal/pos"
	"github.com/bjo163/warungpos/internal/receipt"
	"github.com/bjo163/warungpos/internal/webserver"
)

func registerPosRoutes() {
	webserver.ApiGET("/pos/catalog", posCatalog)
	webserver.ApiGET("/pos/:sid", posSessionView)
	webserver.ApiPUT("/pos/:sid/header", posUpdateHeader)
	webserver.ApiPOST("/pos/:sid/draft", posOpenDraft)
	webserver.ApiPUT("/pos/:sid/draft", posUpdateDraft)
	webserver.ApiPOST("/pos/:sid/draft/commit", posCommitDraft)
	webserver.ApiDELETE("/pos/:sid/draft", posCancelDraft)
	webserver.ApiPUT("/pos/:sid/lines", posUpdateQuantity)
	webserver.ApiPOST("/pos/:sid/clear", posClearSale)
	webserver.ApiPOST("/pos/:sid/charge", posCharge)
	webserver.ApiPOST("/pos/:sid/payment/cancel", posCancelPayment)
	webserver.ApiGET("/pos/:sid/receipt", posReceipt)
	webserver.ApiPOST("/pos/:sid/receipt/close", posCloseReceipt)
	webserver.ApiPOST("/pos/:sid/receipt/send", posSendReceipt)
}

func session(c echo.Context) *pos.Session {
	return webserver.App().PosManager().Session(c.Param("sid"))
}

// posCatalog serves the filtered storefront grid. The result is recomputed
// on every request; zero-stock products are never returned.
func posCatalog(c echo.Context) error {
	var categoryID int64
	if raw := strings.TrimSpace(c.QueryParam("category_id")); raw != "" && raw != "all" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_CATEGORY", "Invalid category ID", nil)
		}
		categoryID = id
	}
	products, err := webserver.App().CatalogService().Products(c.Request().Context(), categoryID, c.QueryParam("q"))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load catalog", err.Error())
	}
	return ok(c, products)
}

type sessionView struct {
	ID           string     `json:"id"`
	State        string     `json:"state"`
	CustomerName string     `json:"customer_name"`
	OrderType    string     `json:"order_type"`
	Lines        []lineView `json:"lines"`
	Totals       totalsView `json:"totals"`
	Draft        *pos.Draft `json:"draft,omitempty"`
}

type lineView struct {
	pos.CartLine
	AmountText string `json:"amount_text"`
}

type totalsView struct {
	pos.Totals
	SubtotalText      string `json:"subtotal_text"`
	TipServerText     string `json:"tip_server_text"`
	PajakRestoranText string `json:"pajak_restoran_text"`
	PpnText           string `json:"ppn_text"`
	TotalText         string `json:"total_text"`
}

func viewOf(s *pos.Session) sessionView {
	lines := s.Lines()
	totals := s.Totals()
	lv := make([]lineView, 0, len(lines))
	for _, l := range lines {
		lv = append(lv, lineView{
			CartLine:   l,
			AmountText: pos.FormatRupiah(l.Price * int64(l.Quantity)),
		})
	}
	return sessionView{
		ID:           s.ID,
		State:        s.State().String(),
		CustomerName: s.CustomerName(),
		OrderType:    s.OrderType(),
		Lines:        lv,
		Totals: totalsView{
			Totals:            totals,
			SubtotalText:      pos.FormatRupiah(totals.Subtotal),
			TipServerText:     pos.FormatRupiah(totals.TipServer),
			PajakRestoranText: pos.FormatRupiah(totals.PajakRestoran),
			PpnText:           pos.FormatRupiah(totals.Ppn),
			TotalText:         pos.FormatRupiah(totals.Total),
		},
		Draft: s.Draft(),
	}
}

func posSessionView(c echo.Context) error {
	return ok(c, viewOf(session(c)))
}

type headerPayload struct {
	CustomerName string `json:"customer_name"`
	OrderType    string `json:"order_type"`
}

func posUpdateHeader(c echo.Context) error {
	var payload headerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse header", nil)
	}
	s := session(c)
	s.SetCustomerName(strings.TrimSpace(payload.CustomerName))
	if payload.OrderType != "" {
		if err := s.SetOrderType(payload.OrderType); err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ORDER_TYPE", "Order type must be Dine in, Take Away or Delivery", nil)
		}
	}
	return ok(c, viewOf(s))
}

type openDraftPayload struct {
	ProductID int64 `json:"product_id,string" validate:"required"`
}

func posOpenDraft(c echo.Context) error {
	var payload openDraftPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse draft request", nil)
	}
	live, err := webserver.App().CatalogService().Product(c.Request().Context(), payload.ProductID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load product", err.Error())
	}
	if live == nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	s := session(c)
	if err := s.OpenDraft(*live); err != nil {
		return posError(c, err)
	}
	return ok(c, viewOf(s))
}

type draftPayload struct {
	Variant   *string            `json:"variant"`
	Quantity  *int               `json:"quantity"`
	Step      *int               `json:"step"`
	SalesType *string            `json:"sales_type"`
	Notes     *string            `json:"notes"`
	Discounts *pos.DiscountFlags `json:"discounts"`
}

func posUpdateDraft(c echo.Context) error {
	var payload draftPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse draft", nil)
	}
	s := session(c)
	err := s.UpdateDraft(func(d *pos.Draft) {
		if payload.Variant != nil {
			d.SetVariant(*payload.Variant)
		}
		if payload.Quantity != nil {
			d.SetQuantity(*payload.Quantity)
		}
		if payload.Step != nil {
			if *payload.Step > 0 {
				d.Increment()
			} else if *payload.Step < 0 {
				d.Decrement()
			}
		}
		if payload.SalesType != nil {
			d.SetSalesType(pos.SalesType(*payload.SalesType))
		}
		if payload.Notes != nil {
			d.SetNotes(*payload.Notes)
		}
		if payload.Discounts != nil {
			d.Discounts = *payload.Discounts
		}
	})
	if err != nil {
		return posError(c, err)
	}
	return ok(c, viewOf(s))
}

func posCommitDraft(c echo.Context) error {
	s := session(c)
	d := s.Draft()
	if d == nil {
		return posError(c, pos.ErrNoDraft)
	}
	live, err := webserver.App().CatalogService().Product(c.Request().Context(), d.ProductID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load product", err.Error())
	}
	if err := s.CommitDraft(live); err != nil {
		return posError(c, err)
	}
	return ok(c, viewOf(s))
}

func posCancelDraft(c echo.Context) error {
	s := session(c)
	if err := s.CancelDraft(); err != nil {
		return posError(c, err)
	}
	return ok(c, viewOf(s))
}

type quantityPayload struct {
	ProductID int64  `json:"product_id,string" validate:"required"`
	Variant   string `json:"variant"`
	SalesType string `json:"sales_type"`
	Quantity  int    `json:"quantity"`
}

func posUpdateQuantity(c echo.Context) error {
	var payload quantityPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quantity update", nil)
	}
	if payload.Variant == "" {
		payload.Variant = pos.DefaultVariant
	}
	s := session(c)
	if err := s.UpdateQuantity(payload.ProductID, payload.Variant, pos.SalesType(payload.SalesType), payload.Quantity); err != nil {
		return posError(c, err)
	}
	return ok(c, viewOf(s))
}

func posClearSale(c echo.Context) error {
	s := session(c)
	if err := s.ClearSale(); err != nil {
		return posError(c, err)
	}
	return ok(c, viewOf(s))
}

func posCharge(c echo.Context) error {
	s := session(c)
	lines := s.Lines()
	if len(lines) == 0 {
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Add items to cart before charging", nil)
	}

	order := payment.Order{
		Lines:        lines,
		CustomerName: s.CustomerName(),
		OrderType:    s.OrderType(),
	}
	charge, err := webserver.App().PaymentService().Charge(c.Request().Context(), order, payment.Callbacks{
		OnClosed: s.ShowReceipt,
	})
	if err != nil {
		if errors.Is(err, payment.ErrInsufficientStock) {
			return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock to complete the sale", err.Error())
		}
		return fail(c, http.StatusInternalServerError, "CHARGE_FAILED", "Failed to create transaction", err.Error())
	}
	if err := s.BeginPayment(charge); err != nil {
		// Session raced into another state; release the created charge.
		_ = charge.Cancel()
		return posError(c, err)
	}
	return ok(c, map[string]interface{}{
		"transaction_id": strconv.FormatInt(charge.TransactionID(), 10),
		"status":         charge.Status(),
		"total":          charge.Transaction().Total,
		"total_text":     pos.FormatRupiah(charge.Transaction().Total),
	})
}

func posCancelPayment(c echo.Context) error {
	s := session(c)
	if err := s.CancelPayment(); err != nil {
		return posError(c, err)
	}
	return ok(c, viewOf(s))
}

func posReceipt(c echo.Context) error {
	s := session(c)
	tx := s.CompletedTransaction()
	if tx == nil {
		return fail(c, http.StatusNotFound, "NO_RECEIPT", "No completed transaction to show", nil)
	}
	cashier := webserver.App().Config().Payment.CashierName
	r, err := receipt.Render(tx, cashier, time.Now())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "RECEIPT_ERROR", "Failed to render receipt", err.Error())
	}
	return ok(c, r)
}

func posCloseReceipt(c echo.Context) error {
	s := session(c)
	if err := s.CloseReceipt(); err != nil {
		return posError(c, err)
	}
	return ok(c, viewOf(s))
}

type sendReceiptPayload struct {
	Email string `json:"email" validate:"required,email"`
}

func posSendReceipt(c echo.Context) error {
	var payload sendReceiptPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_EMAIL", "A valid email address is required", nil)
	}
	s := session(c)
	tx := s.CompletedTransaction()
	if tx == nil {
		return fail(c, http.StatusNotFound, "NO_RECEIPT", "No completed transaction to send", nil)
	}
	if err := webserver.App().NotifyService().SendReceiptEmail(tx, payload.Email); err != nil {
		return fail(c, http.StatusServiceUnavailable, "SEND_FAILED", "Failed to queue receipt email", err.Error())
	}
	return ok(c, map[string]string{"status": "queued"})
}

// posError maps session/payment errors onto API failures.
func posError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, pos.ErrInvalidState), errors.Is(err, pos.ErrNoDraft):
		return fail(c, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, pos.ErrProductUnavailable):
		return fail(c, http.StatusConflict, "PRODUCT_UNAVAILABLE", "Product is no longer available", nil)
	case errors.Is(err, pos.ErrPriceChanged):
		return fail(c, http.StatusConflict, "PRICE_CHANGED", "Product price changed; reopen the item", nil)
	case errors.Is(err, pos.ErrEmptyCart):
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty", nil)
	case errors.Is(err, payment.ErrNotPending):
		return fail(c, http.StatusConflict, "NOT_PENDING", "Payment is no longer pending", nil)
	default:
		return fail(c, http.StatusInternalServerError, "POS_ERROR", err.Error(), nil)
	}
}
