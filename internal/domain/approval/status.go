package approval

import "github.com/expensedesk/expensectl/internal/domain/entity"

// Status is the lifecycle stage of an expense as reported by the backend.
// The client never computes transitions; it only reflects them.
type Status string

const (
	StatusPending  Status = entity.StatusPending
	StatusApproved Status = entity.StatusApproved
	StatusRejected Status = entity.StatusRejected
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

var terminalStatuses = map[Status]bool{
	StatusApproved: true,
	StatusRejected: true,
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is one the backend can report.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if no further approval action can follow.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// Level identifies which role must act next while an expense is pending.
type Level string

const (
	LevelManager Level = entity.LevelManager
	LevelFinance Level = entity.LevelFinance
	LevelAdmin   Level = entity.LevelAdmin
)

var validLevels = map[Level]bool{
	LevelManager: true,
	LevelFinance: true,
	LevelAdmin:   true,
}

// levelRoles maps an approval level to the role allowed to act on it.
var levelRoles = map[Level]string{
	LevelManager: entity.RoleManager,
	LevelFinance: entity.RoleFinance,
	LevelAdmin:   entity.RoleAdmin,
}

// String returns the string representation of the level.
func (l Level) String() string {
	return string(l)
}

// IsValid returns true if the level is one the backend can report.
func (l Level) IsValid() bool {
	return validLevels[l]
}

// Role returns the role that may act on expenses at this level.
func (l Level) Role() string {
	return levelRoles[l]
}

// LevelForRole returns the approval level a role acts on, and false for
// roles with no approval duty (employees).
func LevelForRole(role string) (Level, bool) {
	for level, r := range levelRoles {
		if r == role {
			return level, true
		}
	}
	return "", false
}

// Actionable reports whether an expense is actionable by a viewer holding
// the given role: approve/reject are offered only while the expense is
// pending and its level matches the viewer's role. Everything else about
// the workflow is decided server-side.
func Actionable(e *entity.Expense, role string) bool {
	if e == nil {
		return false
	}
	if Status(e.ApprovalStatus) != StatusPending {
		return false
	}
	level := Level(e.ApprovalLevel)
	return level.IsValid() && level.Role() == role
}
