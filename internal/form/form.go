package form

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/expensedesk/expensectl/internal/api"
	"github.com/expensedesk/expensectl/internal/domain/entity"
	"github.com/expensedesk/expensectl/internal/notify"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AutoApprovalThreshold is the advisory amount at or below which the
// backend auto-approves a submission. Display only; the server decides.
const AutoApprovalThreshold = 100.0

var dateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// AutoApprovalLikely reports whether a draft amount falls at or below the
// advisory threshold, for entry-time display only.
func AutoApprovalLikely(amount string) bool {
	v, err := strconv.ParseFloat(amount, 64)
	return err == nil && v > 0 && v <= AutoApprovalThreshold
}

// ValidationError identifies the offending field of a rejected submission.
// Validation failures block the request entirely; no network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ExpenseForm collects a new expense. Amount is kept as the raw input
// string until validation so a non-numeric entry reports cleanly.
type ExpenseForm struct {
	Amount         string `validate:"required"`
	Category       string `validate:"required"`
	Description    string
	Date           string `validate:"required,expensedate"`
	Priority       string
	AttachmentPath string
}

// Validator validates expense forms. The canonical dashboard form requires
// a description; the quick-entry variant does not. Both variants share
// every other rule.
type Validator struct {
	validate           *validator.Validate
	requireDescription bool
}

// NewValidator builds a validator for the canonical (description-required)
// form.
func NewValidator() *Validator {
	return newValidator(true)
}

// NewQuickEntryValidator builds the variant with an optional description.
func NewQuickEntryValidator() *Validator {
	return newValidator(false)
}

func newValidator(requireDescription bool) *Validator {
	v := validator.New()
	// A date must match YYYY-MM-DD and be a real calendar date:
	// 2024-13-40 has the right shape but must still be rejected.
	_ = v.RegisterValidation("expensedate", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if !dateShape.MatchString(value) {
			return false
		}
		_, err := time.Parse("2006-01-02", value)
		return err == nil
	})
	return &Validator{validate: v, requireDescription: requireDescription}
}

// Validate checks the form client-side before any network activity.
func (v *Validator) Validate(f *ExpenseForm) error {
	if err := v.validate.Struct(f); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return fieldError(errs[0])
		}
		return err
	}

	amount, err := strconv.ParseFloat(f.Amount, 64)
	if err != nil {
		return &ValidationError{Field: "amount", Message: "Amount must be a number"}
	}
	if amount <= 0 {
		return &ValidationError{Field: "amount", Message: "Amount must be greater than zero"}
	}

	if v.requireDescription && f.Description == "" {
		return &ValidationError{Field: "description", Message: "Description is required"}
	}
	return nil
}

func fieldError(fe validator.FieldError) *ValidationError {
	switch fe.Field() {
	case "Amount":
		return &ValidationError{Field: "amount", Message: "Amount is required"}
	case "Category":
		return &ValidationError{Field: "category", Message: "Category is required"}
	case "Date":
		if fe.Tag() == "required" {
			return &ValidationError{Field: "date", Message: "Date is required"}
		}
		return &ValidationError{Field: "date", Message: "Date must be a valid date in YYYY-MM-DD format"}
	default:
		return &ValidationError{Field: fe.Field(), Message: fe.Error()}
	}
}

// Submitter validates and posts expense submissions. On success the
// provided callback receives the server-returned expense, not the local
// draft; on failure the form is left populated for correction.
type Submitter struct {
	expenseAPI *api.ExpenseAPI
	toasts     *notify.Store
	validator  *Validator
	logger     *zap.Logger
}

// NewSubmitter creates a submitter using the canonical form rules.
func NewSubmitter(expenseAPI *api.ExpenseAPI, toasts *notify.Store, logger *zap.Logger) *Submitter {
	return &Submitter{
		expenseAPI: expenseAPI,
		toasts:     toasts,
		validator:  NewValidator(),
		logger:     logger,
	}
}

// WithValidator swaps the form variant.
func (s *Submitter) WithValidator(v *Validator) *Submitter {
	s.validator = v
	return s
}

// Submit validates the form, posts it as a multipart request (the local
// attachment travels as the backend's "receipt" field) and reports the
// outcome through a toast whose wording depends on the server-decided
// approval status.
func (s *Submitter) Submit(ctx context.Context, f *ExpenseForm, onSuccess func(*entity.Expense)) error {
	if err := s.validator.Validate(f); err != nil {
		return err
	}

	req := api.CreateExpenseRequest{
		Amount:      f.Amount,
		Category:    f.Category,
		Description: f.Description,
		Date:        f.Date,
		Priority:    f.Priority,
	}

	if f.AttachmentPath != "" {
		file, err := os.Open(f.AttachmentPath)
		if err != nil {
			return fmt.Errorf("failed to open attachment: %w", err)
		}
		defer file.Close()
		req.Receipt = file
		req.ReceiptName = filepath.Base(f.AttachmentPath)
	}

	created, err := s.expenseAPI.Create(ctx, req)
	if err != nil {
		s.toasts.AddNotification(api.UserMessage(err), entity.ToastError)
		return err
	}

	if created.ApprovalStatus == entity.StatusApproved {
		s.toasts.AddNotification(
			fmt.Sprintf("Your expense for %s ($%.2f) has been automatically approved!",
				created.Description, created.Amount),
			entity.ToastSuccess)
	} else {
		s.toasts.AddNotification(
			fmt.Sprintf("Your expense for %s ($%.2f) has been submitted and is pending approval.",
				created.Description, created.Amount),
			entity.ToastInfo)
	}

	if onSuccess != nil {
		onSuccess(created)
	}
	return nil
}
