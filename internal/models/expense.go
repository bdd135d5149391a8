package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a row of the expenses table.
type Expense struct {
	ExpenseID         string          `db:"expense_id"`
	CompanyID         string          `db:"company_id"`
	UserID            string          `db:"user_id"`
	Title             string          `db:"title"`
	Description       string          `db:"description"`
	ExpenseDate       time.Time       `db:"expense_date"`
	Category          string          `db:"category"`
	OriginalAmount    decimal.Decimal `db:"original_amount"`
	OriginalCurrency  string          `db:"original_currency"`
	ConvertedAmount   decimal.Decimal `db:"converted_amount"`
	ExchangeRate      decimal.Decimal `db:"exchange_rate"`
	Status            string          `db:"status"`
	CurrentApproverID *string         `db:"current_approver_id"`
	Version           int64           `db:"version"`
	AuditFields
}

// ExpenseLine is a row of the expense_lines table.
type ExpenseLine struct {
	LineID      string          `db:"line_id"`
	ExpenseID   string          `db:"expense_id"`
	LineNo      int             `db:"line_no"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
}

// Attachment is a row of the attachments table.
type Attachment struct {
	AttachmentID string    `db:"attachment_id"`
	ExpenseID    string    `db:"expense_id"`
	Filename     string    `db:"filename"`
	URL          string    `db:"url"`
	ContentType  string    `db:"content_type"`
	Size         int64     `db:"size_bytes"`
	CreatedAt    time.Time `db:"created_at"`
}

// ApprovalHistory is a row of the approval_history table.
type ApprovalHistory struct {
	HistoryID  string    `db:"history_id"`
	ExpenseID  string    `db:"expense_id"`
	ApproverID string    `db:"approver_id"`
	Decision   string    `db:"decision"`
	Comment    *string   `db:"comment"`
	CreatedAt  time.Time `db:"created_at"`
}
