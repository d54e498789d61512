package dashboard

import (
	"strings"

	"github.com/expensedesk/expensectl/internal/domain/entity"
)

// Filter holds the user-chosen client-side filters. Filtering runs over
// the already-fetched list only: changing a filter never triggers a
// re-fetch, and the same filter is re-applied unchanged after any
// re-fetch.
type Filter struct {
	Category string
	Status   string
	DateFrom string
	DateTo   string
	Query    string
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether an expense passes the filter.
func (f Filter) Matches(e *entity.Expense) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Status != "" && e.ApprovalStatus != f.Status {
		return false
	}
	// ISO dates compare correctly as strings.
	if f.DateFrom != "" && e.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && e.Date > f.DateTo {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(e.Description), q) &&
			!strings.Contains(strings.ToLower(e.Category), q) {
			return false
		}
	}
	return true
}

// Apply returns the expenses passing the filter, preserving order.
func (f Filter) Apply(expenses []entity.Expense) []entity.Expense {
	if f.IsZero() {
		out := make([]entity.Expense, len(expenses))
		copy(out, expenses)
		return out
	}
	var out []entity.Expense
	for i := range expenses {
		if f.Matches(&expenses[i]) {
			out = append(out, expenses[i])
		}
	}
	return out
}
