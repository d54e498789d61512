package report

import (
	"fmt"

	"github.com/expensedesk/expensectl/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelWriter renders the currently filtered expense list as a local
// spreadsheet, the client-generated counterpart of the backend xlsx
// export.
type ExcelWriter struct {
	catalog *entity.CategoryCatalog
	logger  *zap.Logger
}

// NewExcelWriter creates an Excel report writer.
func NewExcelWriter(catalog *entity.CategoryCatalog, logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{catalog: catalog, logger: logger}
}

var excelHeaders = []string{"ID", "Date", "Category", "Description", "Amount", "Status", "Priority"}

// Write renders the expense list to outputPath.
func (w *ExcelWriter) Write(expenses []entity.Expense, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for col, header := range excelHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	total := 0.0
	for i, e := range expenses {
		row := i + 2
		category := e.Category
		if w.catalog != nil {
			info := w.catalog.Resolve(e.Category)
			category = fmt.Sprintf("%s %s", info.Emoji, info.Name)
		}
		values := []interface{}{e.ID, e.Date, category, e.Description, e.Amount, e.ApprovalStatus, e.Priority}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
		total += e.Amount
	}

	totalRow := len(expenses) + 3
	totalLabel, _ := excelize.CoordinatesToCellName(4, totalRow)
	totalCell, _ := excelize.CoordinatesToCellName(5, totalRow)
	if err := f.SetCellValue(sheet, totalLabel, "Total"); err != nil {
		return fmt.Errorf("failed to write total label: %w", err)
	}
	if err := f.SetCellValue(sheet, totalCell, total); err != nil {
		return fmt.Errorf("failed to write total: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	w.logger.Info("Excel report written",
		zap.String("path", outputPath),
		zap.Int("rows", len(expenses)))
	return nil
}
