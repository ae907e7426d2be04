package adminapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bjo163/warungpos/internal/report"
	"github.com/bjo163/warungpos/internal/webserver"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func registerReportRoutes() {
	webserver.ApiGET("/report/sales/summary", salesSummary)
	webserver.ApiGET("/report/sales/export", salesExport)
}

func salesSummary(c echo.Context) error {
	from, to, err := report.ParseRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "Invalid date range", err.Error())
	}
	summary, err := webserver.App().ReportService().SalesSummary(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build sales summary", err.Error())
	}
	return ok(c, summary)
}

// salesExport serves the range's successful transactions as an xlsx workbook.
func salesExport(c echo.Context) error {
	from, to, err := report.ParseRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "Invalid date range", err.Error())
	}

	filename := fmt.Sprintf("sales-%s.xlsx", time.Now().Format("20060102-150405"))
	return writeWorkbook(c, filename, func(w io.Writer) error {
		return webserver.App().ReportService().ExportTransactions(c.Request().Context(), from, to, w)
	})
}

// writeWorkbook buffers the workbook before touching the response, so a
// failed build still returns the standard error envelope instead of a
// truncated 200.
func writeWorkbook(c echo.Context, filename string, build func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := build(&buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build export", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
