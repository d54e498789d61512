package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensedesk/expensectl/internal/domain/entity"
)

func TestDashboardAPI_Stats(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/dashboard", r.URL.Path)
		w.Write([]byte(`{
			"totalExpenses": 1200.5,
			"expensesByCategory": {"FOOD": 300},
			"monthlyExpenses": {"2026-08": 450},
			"statusCounts": {"PENDING": 3}
		}`))
	}))
	dashAPI := NewDashboardAPI(client, zap.NewNop())

	stats, err := dashAPI.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1200.5, stats.TotalExpenses)
	assert.Equal(t, 300.0, stats.ExpensesByCategory["FOOD"])
	assert.Equal(t, 3, stats.StatusCounts["PENDING"])
}

func TestDashboardAPI_MonthlyBudgetShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped", `{"budget":{"id":1,"budgetLimit":5000}}`},
		{"bare", `{"id":1,"budgetLimit":5000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			dashAPI := NewDashboardAPI(client, zap.NewNop())

			budget, err := dashAPI.MonthlyBudget(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 5000.0, budget.BudgetLimit)
		})
	}
}

func TestDashboardAPI_SetMonthlyBudget(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/settings/monthly-budget", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var sent entity.Budget
		require.NoError(t, json.Unmarshal(body, &sent))
		assert.Equal(t, 8000.0, sent.BudgetLimit)
		w.Write([]byte(`{"budget":{"id":2,"budgetLimit":8000}}`))
	}))
	dashAPI := NewDashboardAPI(client, zap.NewNop())

	budget, err := dashAPI.SetMonthlyBudget(context.Background(), entity.Budget{BudgetLimit: 8000})
	require.NoError(t, err)
	assert.Equal(t, int64(2), budget.ID)
}

func TestAuthAPI_UpdateUserRole(t *testing.T) {
	var gotPath, gotRole string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		json.Unmarshal(body, &req)
		gotRole = req["role"]
		w.Write([]byte(`{}`))
	}))
	authAPI := NewAuthAPI(client, zap.NewNop())

	require.NoError(t, authAPI.UpdateUserRole(context.Background(), 7, entity.RoleFinance))
	assert.Equal(t, "/api/auth/users/7/role", gotPath)
	assert.Equal(t, entity.RoleFinance, gotRole)
}
