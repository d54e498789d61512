package report

import (
	"fmt"
	"sort"

	"github.com/expensedesk/expensectl/internal/domain/entity"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ChartWriter renders the dashboard's monthly expense series as a PNG bar
// chart, the local counterpart of the in-browser expense graph.
type ChartWriter struct {
	logger *zap.Logger
}

// NewChartWriter creates a chart writer.
func NewChartWriter(logger *zap.Logger) *ChartWriter {
	return &ChartWriter{logger: logger}
}

// WriteMonthly renders the monthly series of the given stats to
// outputPath. Months sort lexicographically, which is chronological for
// the backend's YYYY-MM keys.
func (w *ChartWriter) WriteMonthly(stats *entity.DashboardStats, outputPath string) error {
	if stats == nil || len(stats.MonthlyExpenses) == 0 {
		return fmt.Errorf("no monthly data to chart")
	}

	months := make([]string, 0, len(stats.MonthlyExpenses))
	for month := range stats.MonthlyExpenses {
		months = append(months, month)
	}
	sort.Strings(months)

	values := make(plotter.Values, len(months))
	for i, month := range months {
		values[i] = stats.MonthlyExpenses[month]
	}

	p := plot.New()
	p.Title.Text = "Monthly Expenses"
	p.Y.Label.Text = "Amount"
	p.NominalX(months...)

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	p.Add(bars)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, outputPath); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}

	w.logger.Info("Monthly chart written",
		zap.String("path", outputPath),
		zap.Int("months", len(months)))
	return nil
}
