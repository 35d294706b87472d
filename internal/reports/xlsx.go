// Package reports renders projection data into downloadable report files.
package reports

import (
	"fmt"

	"depot/internal/models"

	"github.com/xuri/excelize/v2"
)

// StockSummaryXLSX renders the current-stock projection as a spreadsheet.
func StockSummaryXLSX(views []*models.StockView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Stock"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Product", "SKU", "Warehouse", "Quantity", "Last Updated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, v := range views {
		values := []any{v.ProductName, v.ProductSKU, v.WarehouseName, v.Quantity, v.UpdatedAt.Format("2006-01-02 15:04")}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "E", 22); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write stock workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// MovementsXLSX renders ledger history as a spreadsheet. Warehouse names
// are resolved by the caller into the rows.
func MovementsXLSX(rows []MovementRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Movements"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Type", "Product", "Quantity", "From", "To", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, m := range rows {
		values := []any{m.Date, m.Type, m.Product, m.Quantity, m.From, m.To, m.Notes}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "G", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write movements workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// AdjustmentsXLSX renders adjustment audit history as a spreadsheet.
func AdjustmentsXLSX(rows []AdjustmentRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Adjustments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Product", "Warehouse", "Previous", "New", "Difference", "Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, a := range rows {
		values := []any{a.Date, a.Product, a.Warehouse, a.Previous, a.New, a.New - a.Previous, a.Reason}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "G", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write adjustments workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// MovementRow is one rendered line of ledger history.
type MovementRow struct {
	Date     string
	Type     string
	Product  string
	Quantity int
	From     string
	To       string
	Notes    string
}

// AdjustmentRow is one rendered line of adjustment history.
type AdjustmentRow struct {
	Date      string
	Product   string
	Warehouse string
	Previous  int
	New       int
	Reason    string
}
