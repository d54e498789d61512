package entity

// DashboardStats is the aggregate object returned by GET /api/dashboard.
type DashboardStats struct {
	TotalExpenses      float64            `json:"totalExpenses"`
	PendingExpenses    float64            `json:"pendingExpenses"`
	ApprovedExpenses   float64            `json:"approvedExpenses"`
	RejectedExpenses   float64            `json:"rejectedExpenses"`
	ExpensesByCategory map[string]float64 `json:"expensesByCategory"`
	MonthlyExpenses    map[string]float64 `json:"monthlyExpenses"`
	StatusCounts       map[string]int     `json:"statusCounts"`
	RecentExpenses     []ExpenseSummary   `json:"recentExpenses"`
}

// ExpenseSummary is the trimmed expense shape embedded in dashboard stats.
type ExpenseSummary struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
}

// AuditLog is one entry of the admin audit trail.
type AuditLog struct {
	ID        int64  `json:"id"`
	Action    string `json:"action"`
	Username  string `json:"username"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

// Budget is the monthly budget setting for a category (or overall when the
// category is empty).
type Budget struct {
	ID          int64   `json:"id,omitempty"`
	Category    string  `json:"category,omitempty"`
	BudgetLimit float64 `json:"budgetLimit"`
}
