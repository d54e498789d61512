package entity

// Approval status constants for Expense
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Approval level constants: which role must act next on a pending expense
const (
	LevelManager = "MANAGER"
	LevelFinance = "FINANCE"
	LevelAdmin   = "ADMIN"
)

// Role constants carried by an authenticated identity
const (
	RoleEmployee = "ROLE_EMPLOYEE"
	RoleManager  = "ROLE_MANAGER"
	RoleFinance  = "ROLE_FINANCE"
	RoleAdmin    = "ROLE_ADMIN"
)

// Priority constants for Expense
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Toast type constants for client-local notifications
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)
