package adminapi

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/report/sales/export", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteWorkbookFailureReturnsEnvelope(t *testing.T) {
	c, rec := exportContext()

	err := writeWorkbook(c, "sales.xlsx", func(io.Writer) error {
		return errors.New("query failed")
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "EXPORT_FAILED")
	assert.Empty(t, rec.Header().Get(echo.HeaderContentDisposition))
}

func TestWriteWorkbookServesAttachment(t *testing.T) {
	c, rec := exportContext()

	err := writeWorkbook(c, "sales.xlsx", func(w io.Writer) error {
		_, err := w.Write([]byte("PK"))
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `"sales.xlsx"`)
	assert.Equal(t, "PK", rec.Body.String())
}
