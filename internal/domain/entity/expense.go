package entity

import "time"

// UserRef identifies the submitting user of an expense. It is owned by the
// backend and never mutated client-side.
type UserRef struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// Expense represents a single expense claim. The client holds a read-mostly
// cached copy; the backend owns the authoritative record and all approval
// transitions.
type Expense struct {
	ID             int64      `json:"id"`
	Amount         float64    `json:"amount"`
	Category       string     `json:"category"`
	Description    string     `json:"description"`
	Date           string     `json:"date"`
	Priority       string     `json:"priority"`
	ApprovalStatus string     `json:"approvalStatus"`
	ApprovalLevel  string     `json:"approvalLevel"`
	User           *UserRef   `json:"user,omitempty"`
	ReceiptURL     string     `json:"receiptUrl,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	SubmittedDate  string     `json:"submittedDate,omitempty"`
}
