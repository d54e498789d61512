package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/expensedesk/expensectl/internal/dashboard"
	"github.com/expensedesk/expensectl/internal/report"
)

func renderDashboard(d *dashboard.Dashboard) {
	cfg := d.Config()
	fmt.Printf("== %s dashboard ==\n", cfg.Role)

	if stats := d.Stats(); stats != nil {
		fmt.Printf("Total: %.2f  Pending: %.2f  Approved: %.2f  Rejected: %.2f\n",
			stats.TotalExpenses, stats.PendingExpenses,
			stats.ApprovedExpenses, stats.RejectedExpenses)
	}
	if budget := d.Budget(); budget != nil && budget.BudgetLimit > 0 {
		fmt.Printf("Monthly budget: %.2f\n", budget.BudgetLimit)
	}

	catalog := d.Catalog()
	fmt.Println()
	for _, e := range d.Visible() {
		info := catalog.Resolve(e.Category)
		actions := ""
		if d.Actionable(&e) {
			actions = "  [approve|reject]"
		}
		fmt.Printf("#%-5d %s  %s %-18s %8.2f  %-8s %s%s\n",
			e.ID, e.Date, info.Emoji, info.Name, e.Amount,
			e.ApprovalStatus, e.Description, actions)
	}

	if logs := d.AuditLogs(); len(logs) > 0 {
		fmt.Println("\nRecent audit activity:")
		for i, l := range logs {
			if i >= 10 {
				break
			}
			fmt.Printf("  %s  %s  %s\n", l.Timestamp, l.Username, l.Action)
		}
	}
	if users := d.Users(); len(users) > 0 {
		fmt.Printf("\n%d users in directory\n", len(users))
	}
}

// cmdReport generates a report locally from the fetched expense list,
// without going through the backend export endpoints.
func (a *app) cmdReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	format := fs.String("format", "pdf", "pdf, xlsx or png")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.store.IsAuthenticated() {
		return fmt.Errorf("sign in first: expensectl login <email> <password>")
	}

	cfg := dashboard.ConfigForRole(a.store.Identity().PrimaryRole())
	d := dashboard.New(cfg, dashboard.APIs{
		Expense:   a.expenses,
		Dashboard: a.dashAPI,
		Auth:      a.auth,
	}, a.toasts, a.logger)
	if err := d.Load(ctx); err != nil {
		return err
	}

	name := fmt.Sprintf("expense-report-%s.%s", time.Now().Format("2006-01-02"), *format)
	path := filepath.Join(a.cfg.State.DownloadsDir, name)

	switch *format {
	case "xlsx":
		writer := report.NewExcelWriter(d.Catalog(), a.logger)
		if err := writer.Write(d.Visible(), path); err != nil {
			return err
		}
	case "pdf":
		writer := report.NewPDFWriter(a.logger)
		if err := writer.Write(d.Visible(), "Expense Report", path); err != nil {
			return err
		}
	case "png":
		writer := report.NewChartWriter(a.logger)
		if err := writer.WriteMonthly(d.Stats(), path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported report format: %s", *format)
	}

	fmt.Printf("Saved %s\n", path)
	return nil
}
