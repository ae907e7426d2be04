package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"

	"github.com/bjo163/warungpos/internal/pos"
)

const exportSheet = "Transactions"

// ExportTransactions writes the successful transactions in the range as an
// xlsx workbook.
func (s *Service) ExportTransactions(ctx context.Context, from, to time.Time, w io.Writer) error {
	rows, err := s.Transactions(ctx, from, to)
	if err != nil {
		return err
	}

	xlsx := excelize.NewFile()
	xlsx.SetSheetName("Sheet1", exportSheet)

	headers := []string{"Receipt No", "Created At", "Customer", "Order Type",
		"Subtotal", "Tip Server", "Pajak Restoran", "PPN", "Total"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		xlsx.SetCellValue(exportSheet, cell, h)
	}

	for i, tx := range rows {
		rowNum := i + 2
		xlsx.SetCellValue(exportSheet, fmt.Sprintf("A%d", rowNum), tx.ReceiptNo)
		xlsx.SetCellValue(exportSheet, fmt.Sprintf("B%d", rowNum), tx.CreatedAt.Format("02/01/2006 15:04"))
		xlsx.SetCellValue(exportSheet, fmt.Sprintf("C%d", rowNum), tx.CustomerName)
		xlsx.SetCellValue(exportSheet, fmt.Sprintf("D%d", rowNum), tx.OrderType)
		xlsx.SetCellValue(exportSheet, fmt.Sprintf("E%d", rowNum), pos.FormatRupiah(tx.Subtotal))
		xlsx.SetCellValue(exportSheet, fmt.Sprintf("F%d", rowNum), pos.FormatRupiah(tx.TipServer))
		xlsx.SetCellValue(exportSheet, fmt.Sprintf("G%d", rowNum), pos.FormatRupiah(tx.PajakRestoran))
		xlsx.SetCellValue(exportSheet, fmt.Sprintf("H%d", rowNum), pos.FormatRupiah(tx.Ppn))
		xlsx.SetCellValue(exportSheet, fmt.Sprintf("I%d", rowNum), pos.FormatRupiah(tx.Total))
	}

	return xlsx.Write(w)
}
