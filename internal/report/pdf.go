package report

import (
	"fmt"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/expensedesk/expensectl/internal/domain/entity"
	"go.uber.org/zap"
)

// PDFWriter renders the filtered expense list as a tabular PDF report,
// mirroring the in-browser table export.
type PDFWriter struct {
	logger *zap.Logger
}

// NewPDFWriter creates a PDF report writer.
func NewPDFWriter(logger *zap.Logger) *PDFWriter {
	return &PDFWriter{logger: logger}
}

// Write renders the expense list to outputPath.
func (w *PDFWriter) Write(expenses []entity.Expense, title, outputPath string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+time.Now().Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Date", "Category", "Description", "Amount", "Status"}
	widths := []float64{24, 32, 70, 26, 28}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	total := 0.0
	for _, e := range expenses {
		desc := e.Description
		if len(desc) > 44 {
			desc = desc[:41] + "..."
		}
		pdf.CellFormat(widths[0], 7, e.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, e.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", e.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, e.ApprovalStatus, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		total += e.Amount
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, fmt.Sprintf("%.2f", total), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 8, "", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF file: %w", err)
	}

	w.logger.Info("PDF report written",
		zap.String("path", outputPath),
		zap.Int("rows", len(expenses)))
	return nil
}
