package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ExpenseStatus is the lifecycle state of an expense report.
type ExpenseStatus string

const (
	ExpenseDraft    ExpenseStatus = "DRAFT"
	ExpensePending  ExpenseStatus = "PENDING"
	ExpenseApproved ExpenseStatus = "APPROVED"
	ExpenseRejected ExpenseStatus = "REJECTED"
)

// IsValid reports whether s is a known status.
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseDraft, ExpensePending, ExpenseApproved, ExpenseRejected:
		return true
	}
	return false
}

// IsEditable reports whether the owner may edit or submit an expense in this state.
func (s ExpenseStatus) IsEditable() bool {
	return s == ExpenseDraft || s == ExpenseRejected
}

// ExpenseLine is one itemised line of an expense. Lines are expected, not
// required, to sum to the expense's original amount.
type ExpenseLine struct {
	LineID      string          `json:"id"`
	ExpenseID   string          `json:"expenseId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Attachment is an uploaded receipt or document linked to an expense.
type Attachment struct {
	AttachmentID string    `json:"id"`
	ExpenseID    string    `json:"expenseId"`
	Filename     string    `json:"filename"`
	URL          string    `json:"url"`
	ContentType  string    `json:"type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Expense is an expense report owned by the employee who created it.
type Expense struct {
	ExpenseID         string            `json:"id"`
	CompanyID         string            `json:"companyId"`
	UserID            string            `json:"userId"` // Owner
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Date              time.Time         `json:"date"`
	Category          string            `json:"category"`
	OriginalAmount    decimal.Decimal   `json:"originalAmount"`
	OriginalCurrency  string            `json:"originalCurrency"`
	ConvertedAmount   decimal.Decimal   `json:"convertedAmount"`
	ExchangeRate      decimal.Decimal   `json:"exchangeRate"`
	Status            ExpenseStatus     `json:"status"`
	CurrentApproverID *string           `json:"currentApproverId"` // Non-nil iff Status == PENDING
	Lines             []ExpenseLine     `json:"lines"`
	Attachments       []Attachment      `json:"attachments"`
	ApprovalHistory   []ApprovalHistory `json:"approvalHistory"`
	Version           int64             `json:"-"` // Optimistic concurrency token
	AuditFields
}

// LinesTotal sums the line amounts.
func (e *Expense) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Amount)
	}
	return total
}

// IsOwnedBy reports whether userID created the expense.
func (e *Expense) IsOwnedBy(userID string) bool {
	return e.UserID == userID
}

// IsCurrentApprover reports whether userID is the one expected to decide next.
func (e *Expense) IsCurrentApprover(userID string) bool {
	return e.CurrentApproverID != nil && *e.CurrentApproverID == userID
}

// EnsureEditable returns a validation error unless the expense is DRAFT or REJECTED.
func (e *Expense) EnsureEditable() error {
	if !e.Status.IsEditable() {
		return fmt.Errorf("%w: only expenses in DRAFT or REJECTED status can be updated", apperrors.ErrValidation)
	}
	return nil
}

// EnsureDeletable returns a validation error unless the expense is DRAFT.
func (e *Expense) EnsureDeletable() error {
	if e.Status != ExpenseDraft {
		return fmt.Errorf("%w: only expenses in DRAFT status can be deleted", apperrors.ErrValidation)
	}
	return nil
}

// Submit moves a DRAFT or REJECTED expense to PENDING, routed to the owner's
// direct manager. Approval rules play no part in the initial routing.
func (e *Expense) Submit(managerID *string, actorID string, now time.Time) error {
	if !e.Status.IsEditable() {
		return fmt.Errorf("%w: only expenses in DRAFT or REJECTED status can be submitted", apperrors.ErrValidation)
	}
	if managerID == nil || *managerID == "" {
		return fmt.Errorf("%w: no manager assigned to approve this expense", apperrors.ErrValidation)
	}
	approver := *managerID
	e.Status = ExpensePending
	e.CurrentApproverID = &approver
	e.Touch(actorID, now)
	return nil
}

// ExpenseFilter narrows an owner's expense listing.
type ExpenseFilter struct {
	Status    *ExpenseStatus
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}
