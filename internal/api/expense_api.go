package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/expensedesk/expensectl/internal/domain/entity"
	"go.uber.org/zap"
)

// ExpenseAPI handles expense listing, submission and approval actions
type ExpenseAPI struct {
	client *Client
	logger *zap.Logger
}

// NewExpenseAPI creates a new expense API handler
func NewExpenseAPI(client *Client, logger *zap.Logger) *ExpenseAPI {
	return &ExpenseAPI{client: client, logger: logger}
}

// List returns the caller's own expenses.
func (a *ExpenseAPI) List(ctx context.Context) ([]entity.Expense, error) {
	var expenses []entity.Expense
	if err := a.client.getJSON(ctx, "/api/expenses", &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// ListPending returns the pending expenses awaiting action at the given
// approval level (manager, finance or admin).
func (a *ExpenseAPI) ListPending(ctx context.Context, level string) ([]entity.Expense, error) {
	path := "/api/expenses/pending/" + strings.ToLower(level)
	var expenses []entity.Expense
	if err := a.client.getJSON(ctx, path, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// Approve approves the expense with the given id. The resulting workflow
// transition is decided server-side; callers must refetch the pending list
// rather than patch their local copy.
func (a *ExpenseAPI) Approve(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/expenses/%d/approve", id)
	return a.client.sendJSON(ctx, http.MethodPut, path, nil, nil)
}

// Reject rejects the expense with the given id.
func (a *ExpenseAPI) Reject(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/expenses/%d/reject", id)
	return a.client.sendJSON(ctx, http.MethodPut, path, nil, nil)
}

// Delete removes the expense with the given id.
func (a *ExpenseAPI) Delete(ctx context.Context, id int64) error {
	return a.client.delete(ctx, fmt.Sprintf("/api/expenses/%d", id))
}

// Categories returns the backend's category code → display name mapping.
func (a *ExpenseAPI) Categories(ctx context.Context) (map[string]string, error) {
	var categories map[string]string
	if err := a.client.getJSON(ctx, "/api/expenses/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateExpenseRequest carries the fields of a new expense submission. The
// receipt file travels under the backend's "receipt" multipart field
// regardless of what the submitting surface calls it.
type CreateExpenseRequest struct {
	Amount      string
	Category    string
	Description string
	Date        string
	Priority    string
	ReceiptName string
	Receipt     io.Reader
}

// createExpenseResponse tolerates both response shapes the backend has
// used: a wrapped {"expense": {...}} object and a bare expense object.
type createExpenseResponse struct {
	Expense *entity.Expense `json:"expense"`
}

// Create submits a new expense as a multipart request and returns the
// server-created expense, whose approvalStatus reflects any auto-approval
// decision.
func (a *ExpenseAPI) Create(ctx context.Context, req CreateExpenseRequest) (*entity.Expense, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"amount":      req.Amount,
		"category":    req.Category,
		"description": req.Description,
		"date":        req.Date,
		"priority":    req.Priority,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if req.Receipt != nil {
		part, err := w.CreateFormFile("receipt", req.ReceiptName)
		if err != nil {
			return nil, fmt.Errorf("failed to create receipt part: %w", err)
		}
		if _, err := io.Copy(part, req.Receipt); err != nil {
			return nil, fmt.Errorf("failed to copy receipt content: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	data, err := a.client.do(ctx, http.MethodPost, "/api/expenses", w.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}

	var wrapped createExpenseResponse
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Expense != nil {
		return wrapped.Expense, nil
	}
	var expense entity.Expense
	if err := json.Unmarshal(data, &expense); err != nil {
		return nil, fmt.Errorf("failed to decode created expense: %w", err)
	}
	return &expense, nil
}
