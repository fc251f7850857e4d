package cli

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/storefront/internal/shop"
	"github.com/roach88/storefront/internal/store"
)

const exportSheet = "Checkouts"

var exportHeaders = []string{
	"Seq",
	"Started",
	"Updated",
	"State",
	"Stage",
	"Failure",
	"Order ID",
	"Method",
	"Items",
	"Subtotal",
	"Total",
	"Checkout URL",
	"Token",
}

// exportSubmissions writes journal entries to an .xlsx workbook at path,
// one row per attempt under a styled, filterable header row.
func exportSubmissions(subs []store.Submission, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetCellValue(exportSheet, col+"1", header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		f.SetColWidth(exportSheet, col, col, 15)
	}

	for r, sub := range subs {
		row := []interface{}{
			sub.Seq,
			sub.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			sub.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
			sub.State,
			sub.Stage,
			sub.FailureKind,
			sub.OrderID,
			sub.DeliveryMethod,
			sub.ItemCount,
			amountText(sub.Subtotal),
			amountText(sub.Total),
			sub.CheckoutURL,
			sub.Token,
		}
		for i, value := range row {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetCellValue(exportSheet, fmt.Sprintf("%s%d", col, r+2), value); err != nil {
				return fmt.Errorf("write row %d: %w", r+2, err)
			}
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E0E0E0"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(exportSheet, 1, 1, style)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	lastRow := len(subs) + 1
	if err := f.AutoFilter(exportSheet, fmt.Sprintf("A1:%s%d", lastCol, lastRow), []excelize.AutoFilterOptions{}); err != nil {
		return fmt.Errorf("add filter: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// amountText renders a stored exact amount with two decimals.
func amountText(exact string) string {
	if exact == "" {
		return ""
	}
	m, err := shop.ParseMoney(exact)
	if err != nil {
		return exact
	}
	return m.String()
}
