package services

import (
	"context"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	"github.com/SscSPs/expense_manager_app/internal/dto"
)

// ExpenseReaderSvc defines read operations for expenses
type ExpenseReaderSvc interface {
	// GetExpense returns an expense visible to the caller: its owner, an admin
	// of the same company, or its current approver.
	GetExpense(ctx context.Context, caller domain.Principal, expenseID string) (*domain.Expense, error)

	// ListExpenses returns the caller's own expenses.
	ListExpenses(ctx context.Context, caller domain.Principal, filter domain.ExpenseFilter) ([]domain.Expense, error)
}

// ExpenseWriterSvc defines owner write operations for expenses
type ExpenseWriterSvc interface {
	CreateExpense(ctx context.Context, caller domain.Principal, req dto.CreateExpenseRequest) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, caller domain.Principal, expenseID string, req dto.UpdateExpenseRequest) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, caller domain.Principal, expenseID string) error
}

// ExpenseSubmitterSvc moves expenses into the approval workflow
type ExpenseSubmitterSvc interface {
	// SubmitExpense routes a DRAFT or REJECTED expense to the owner's manager.
	SubmitExpense(ctx context.Context, caller domain.Principal, expenseID string) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
	ExpenseSubmitterSvc
}
