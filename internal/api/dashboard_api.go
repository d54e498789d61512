package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/expensedesk/expensectl/internal/domain/entity"
	"go.uber.org/zap"
)

// DashboardAPI handles aggregate statistics, audit logs and budget settings
type DashboardAPI struct {
	client *Client
	logger *zap.Logger
}

// NewDashboardAPI creates a new dashboard API handler
func NewDashboardAPI(client *Client, logger *zap.Logger) *DashboardAPI {
	return &DashboardAPI{client: client, logger: logger}
}

// Stats returns the aggregate dashboard object: totals, per-category and
// monthly series, status counts and recent expenses.
func (a *DashboardAPI) Stats(ctx context.Context) (*entity.DashboardStats, error) {
	var stats entity.DashboardStats
	if err := a.client.getJSON(ctx, "/api/dashboard", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AuditLogs returns the system audit trail (admin only).
func (a *DashboardAPI) AuditLogs(ctx context.Context) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	if err := a.client.getJSON(ctx, "/api/audit/logs", &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// budgetResponse tolerates both the wrapped and bare budget shapes.
type budgetResponse struct {
	Budget *entity.Budget `json:"budget"`
}

// MonthlyBudget returns the configured monthly budget.
func (a *DashboardAPI) MonthlyBudget(ctx context.Context) (*entity.Budget, error) {
	var raw json.RawMessage
	if err := a.client.getJSON(ctx, "/api/settings/monthly-budget", &raw); err != nil {
		return nil, err
	}
	var resp budgetResponse
	if err := json.Unmarshal(raw, &resp); err == nil && resp.Budget != nil {
		return resp.Budget, nil
	}
	var budget entity.Budget
	if err := json.Unmarshal(raw, &budget); err != nil {
		return nil, fmt.Errorf("failed to decode budget: %w", err)
	}
	return &budget, nil
}

// SetMonthlyBudget stores a new monthly budget.
func (a *DashboardAPI) SetMonthlyBudget(ctx context.Context, budget entity.Budget) (*entity.Budget, error) {
	var resp budgetResponse
	if err := a.client.sendJSON(ctx, http.MethodPost, "/api/settings/monthly-budget", budget, &resp); err != nil {
		return nil, err
	}
	if resp.Budget != nil {
		return resp.Budget, nil
	}
	return &budget, nil
}

// CreateBudget stores a per-category budget.
func (a *DashboardAPI) CreateBudget(ctx context.Context, budget entity.Budget) error {
	return a.client.sendJSON(ctx, http.MethodPost, "/api/budgets", budget, nil)
}
