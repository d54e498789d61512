package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/expensedesk/expensectl/internal/api"
	"github.com/expensedesk/expensectl/internal/domain/approval"
	"github.com/expensedesk/expensectl/internal/domain/entity"
	"github.com/expensedesk/expensectl/internal/notify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State is the render state of a dashboard.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

// Config parameterizes the one shared dashboard implementation by role:
// which pending-list endpoint it reads, which auxiliary lists it loads and
// which actions it offers. The four role dashboards are configurations of
// this type, not separate implementations.
type Config struct {
	Role         string
	PendingLevel string // empty: fetch the caller's own expenses instead
	WithBudget   bool
	WithAudit    bool
	WithUsers    bool
	CanApprove   bool
	CanExportAll bool
}

// EmployeeConfig is the employee dashboard: own expenses, no actions.
func EmployeeConfig() Config {
	return Config{Role: entity.RoleEmployee, WithBudget: true}
}

// ManagerConfig is the first approval stage.
func ManagerConfig() Config {
	return Config{
		Role:         entity.RoleManager,
		PendingLevel: entity.LevelManager,
		WithBudget:   true,
		CanApprove:   true,
	}
}

// FinanceConfig is the second approval stage.
func FinanceConfig() Config {
	return Config{
		Role:         entity.RoleFinance,
		PendingLevel: entity.LevelFinance,
		WithBudget:   true,
		CanApprove:   true,
	}
}

// AdminConfig is the final approval stage plus the audit trail and user
// directory.
func AdminConfig() Config {
	return Config{
		Role:         entity.RoleAdmin,
		PendingLevel: entity.LevelAdmin,
		WithBudget:   true,
		WithAudit:    true,
		WithUsers:    true,
		CanApprove:   true,
		CanExportAll: true,
	}
}

// ConfigForRole maps a role to its dashboard configuration.
func ConfigForRole(role string) Config {
	switch role {
	case entity.RoleManager:
		return ManagerConfig()
	case entity.RoleFinance:
		return FinanceConfig()
	case entity.RoleAdmin:
		return AdminConfig()
	default:
		return EmployeeConfig()
	}
}

// APIs bundles the backend accessors a dashboard needs.
type APIs struct {
	Expense   *api.ExpenseAPI
	Dashboard *api.DashboardAPI
	Auth      *api.AuthAPI
}

// Dashboard is the role-scoped view model shared by all four dashboards.
// Mount fetches run concurrently, the render waits for all of them, and
// the first failure short-circuits to the error state; a mutation is
// always followed by a re-fetch of the pending list rather than a local
// patch, because the server decides what the expense's next approval level
// is.
type Dashboard struct {
	cfg    Config
	apis   APIs
	toasts *notify.Store
	logger *zap.Logger

	generation atomic.Uint64

	mu       sync.Mutex
	state    State
	errMsg   string
	stats    *entity.DashboardStats
	expenses []entity.Expense
	audit    []entity.AuditLog
	users    []entity.Identity
	budget   *entity.Budget
	catalog  *entity.CategoryCatalog
	filter   Filter
}

// New creates a dashboard for the given configuration.
func New(cfg Config, apis APIs, toasts *notify.Store, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		cfg:    cfg,
		apis:   apis,
		toasts: toasts,
		logger: logger,
		state:  StateLoading,
	}
}

// Load runs the mount fetch sequence. Responses belonging to a load that
// was superseded (a newer Load or an Invalidate) are discarded so a stale
// response is never applied.
func (d *Dashboard) Load(ctx context.Context) error {
	gen := d.generation.Add(1)

	d.mu.Lock()
	d.state = StateLoading
	d.errMsg = ""
	d.mu.Unlock()

	var (
		stats    *entity.DashboardStats
		expenses []entity.Expense
		audit    []entity.AuditLog
		users    []entity.Identity
		budget   *entity.Budget
		catalog  map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = d.apis.Dashboard.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = d.fetchExpenses(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = d.apis.Expense.Categories(gctx)
		return err
	})
	if d.cfg.WithBudget {
		g.Go(func() error {
			var err error
			budget, err = d.apis.Dashboard.MonthlyBudget(gctx)
			return err
		})
	}
	if d.cfg.WithAudit {
		g.Go(func() error {
			var err error
			audit, err = d.apis.Dashboard.AuditLogs(gctx)
			return err
		})
	}
	if d.cfg.WithUsers {
		g.Go(func() error {
			var err error
			users, err = d.apis.Auth.Users(gctx)
			return err
		})
	}

	err := g.Wait()

	if d.generation.Load() != gen {
		d.logger.Debug("Discarding stale dashboard load",
			zap.String("role", d.cfg.Role))
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = StateError
		d.errMsg = api.UserMessage(err)
		d.logger.Error("Dashboard load failed",
			zap.String("role", d.cfg.Role), zap.Error(err))
		return err
	}

	d.state = StateReady
	d.stats = stats
	d.expenses = expenses
	d.audit = audit
	d.users = users
	d.budget = budget
	d.catalog = entity.NewCategoryCatalog(catalog)
	return nil
}

// Invalidate marks the dashboard unmounted: in-flight responses are
// dropped on arrival.
func (d *Dashboard) Invalidate() {
	d.generation.Add(1)
}

func (d *Dashboard) fetchExpenses(ctx context.Context) ([]entity.Expense, error) {
	if d.cfg.PendingLevel == "" {
		return d.apis.Expense.List(ctx)
	}
	return d.apis.Expense.ListPending(ctx, d.cfg.PendingLevel)
}

// refetchExpenses refreshes the expense list after a mutation. It starts
// only after the mutation response has been received and is discarded if
// the dashboard was invalidated meanwhile.
func (d *Dashboard) refetchExpenses(ctx context.Context) error {
	gen := d.generation.Load()
	expenses, err := d.fetchExpenses(ctx)
	if err != nil {
		return err
	}
	if d.generation.Load() != gen {
		return nil
	}
	d.mu.Lock()
	d.expenses = expenses
	d.mu.Unlock()
	return nil
}

// Approve approves an expense, then re-fetches the pending list for a
// server-confirmed view.
func (d *Dashboard) Approve(ctx context.Context, id int64) error {
	return d.act(ctx, id, "approved", d.apis.Expense.Approve)
}

// Reject rejects an expense, then re-fetches the pending list.
func (d *Dashboard) Reject(ctx context.Context, id int64) error {
	return d.act(ctx, id, "rejected", d.apis.Expense.Reject)
}

func (d *Dashboard) act(ctx context.Context, id int64, verb string, mutate func(context.Context, int64) error) error {
	if !d.cfg.CanApprove {
		return fmt.Errorf("role %s cannot act on expenses", d.cfg.Role)
	}
	if err := mutate(ctx, id); err != nil {
		d.toasts.AddNotification(api.UserMessage(err), entity.ToastError)
		return err
	}
	d.toasts.AddNotification(fmt.Sprintf("Expense %s successfully", verb), entity.ToastSuccess)

	if err := d.refetchExpenses(ctx); err != nil {
		d.logger.Warn("Refetch after action failed", zap.Error(err))
		return err
	}
	return nil
}

// SetFilter replaces the user-chosen filter values.
func (d *Dashboard) SetFilter(f Filter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = f
}

// CurrentFilter returns the filter values currently applied.
func (d *Dashboard) CurrentFilter() Filter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter
}

// Visible returns the cached expense list with the current filter applied.
func (d *Dashboard) Visible() []entity.Expense {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter.Apply(d.expenses)
}

// Actionable reports whether approve/reject actions are offered for an
// expense on this dashboard.
func (d *Dashboard) Actionable(e *entity.Expense) bool {
	if !d.cfg.CanApprove {
		return false
	}
	return approval.Actionable(e, d.cfg.Role)
}

// CurrentState returns the render state and, in the error state, the
// user-facing message.
func (d *Dashboard) CurrentState() (State, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.errMsg
}

// Stats returns the aggregate statistics, nil before the first load.
func (d *Dashboard) Stats() *entity.DashboardStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// AuditLogs returns the audit trail, admin only.
func (d *Dashboard) AuditLogs() []entity.AuditLog {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.audit
}

// Users returns the user directory, admin only.
func (d *Dashboard) Users() []entity.Identity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.users
}

// Budget returns the monthly budget, nil when the dashboard doesn't load
// one.
func (d *Dashboard) Budget() *entity.Budget {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.budget
}

// Catalog returns the category catalog resolved at load time.
func (d *Dashboard) Catalog() *entity.CategoryCatalog {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog
}

// Config returns the dashboard's configuration.
func (d *Dashboard) Config() Config {
	return d.cfg
}
