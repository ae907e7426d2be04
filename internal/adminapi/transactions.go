package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bjo163/warungpos/internal/receipt"
	"github.com/bjo163/warungpos/internal/webserver"
)

func registerTransactionRoutes() {
	webserver.ApiGET("/transactions", listTransactions)
	webserver.ApiGET("/transactions/:id", getTransaction)
	webserver.ApiGET("/transactions/:id/receipt", getTransactionReceipt)
}

func listTransactions(c echo.Context) error {
	page, pageSize := parsePagination(c)
	rows, total, err := webserver.App().PaymentStore().List(c.Request().Context(), c.QueryParam("status"), page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query transactions", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getTransaction(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid transaction ID", nil)
	}
	tx, err := webserver.App().PaymentStore().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Transaction not found", nil)
	}
	return ok(c, tx)
}

// getTransactionReceipt re-renders the printable receipt for a past sale.
func getTransactionReceipt(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid transaction ID", nil)
	}
	tx, err := webserver.App().PaymentStore().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Transaction not found", nil)
	}
	cashier := webserver.App().Config().Payment.CashierName
	r, err := receipt.Render(tx, cashier, time.Now())
	if err != nil {
		return fail(c, http.StatusConflict, "NOT_FINALIZED", "Receipt is only available for successful transactions", nil)
	}
	return ok(c, r)
}
