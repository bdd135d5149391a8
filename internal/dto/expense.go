package dto

import (
	"time"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpenseLineRequest is one itemised line of an expense.
type ExpenseLineRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreateExpenseRequest defines the data needed to create a DRAFT expense.
type CreateExpenseRequest struct {
	Title            string               `json:"title" binding:"required,max=200"`
	Description      string               `json:"description" binding:"max=2000"`
	Date             time.Time            `json:"date"`
	Category         string               `json:"category" binding:"required,max=100"`
	OriginalAmount   decimal.Decimal      `json:"originalAmount"`
	OriginalCurrency string               `json:"originalCurrency" binding:"required,len=3,alpha"`
	Lines            []ExpenseLineRequest `json:"lines" binding:"omitempty,dive"`
}

// UpdateExpenseRequest defines the fields an owner may change.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateExpenseRequest struct {
	Title            *string               `json:"title" binding:"omitempty,min=1,max=200"`
	Description      *string               `json:"description" binding:"omitempty,max=2000"`
	Date             *time.Time            `json:"date"`
	Category         *string               `json:"category" binding:"omitempty,min=1,max=100"`
	OriginalAmount   *decimal.Decimal      `json:"originalAmount"`
	OriginalCurrency *string               `json:"originalCurrency" binding:"omitempty,len=3,alpha"`
	Lines            *[]ExpenseLineRequest `json:"lines" binding:"omitempty,dive"`
}

// ListExpensesParams defines query parameters for listing the caller's expenses.
type ListExpensesParams struct {
	Status    string     `form:"status" binding:"omitempty,oneof=DRAFT PENDING APPROVED REJECTED"`
	Category  string     `form:"category"`
	StartDate *time.Time `form:"startDate" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"endDate" time_format:"2006-01-02"`
	Search    string     `form:"search"`
}

// ToFilter converts query parameters to a domain filter.
func (p ListExpensesParams) ToFilter() domain.ExpenseFilter {
	f := domain.ExpenseFilter{
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Search:    p.Search,
	}
	if p.Status != "" {
		s := domain.ExpenseStatus(p.Status)
		f.Status = &s
	}
	if p.Category != "" {
		c := p.Category
		f.Category = &c
	}
	if p.EndDate != nil {
		// Inclusive end date
		end := p.EndDate.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &end
	}
	return f
}

// ExpenseListResponse wraps a list of expenses.
type ExpenseListResponse struct {
	Data  []domain.Expense `json:"data"`
	Total int              `json:"total"`
}

// NewExpenseListResponse wraps expenses with their count.
func NewExpenseListResponse(expenses []domain.Expense) ExpenseListResponse {
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	return ExpenseListResponse{Data: expenses, Total: len(expenses)}
}
