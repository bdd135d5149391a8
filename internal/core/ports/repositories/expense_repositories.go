package repositories

import (
	"context"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense with its lines, attachments and approval history.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpensesByUser retrieves the expenses owned by userID, newest first.
	ListExpensesByUser(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error)

	// ListPendingByApprover retrieves PENDING expenses whose current approver is approverID, oldest first.
	ListPendingByApprover(ctx context.Context, approverID string) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists a new expense and its lines.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// UpdateExpense overwrites an expense's fields and replaces its lines.
	// The write succeeds only if the stored version equals expense.Version;
	// otherwise apperrors.ErrConflict is returned.
	UpdateExpense(ctx context.Context, expense domain.Expense) error

	// DeleteExpense removes a DRAFT expense and everything attached to it.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// ApprovalStore is the transactional boundary used when recording decisions.
type ApprovalStore interface {
	// LoadExpenseForDecision loads the expense with its history, its owner and
	// the owner's company rules in creation order.
	LoadExpenseForDecision(ctx context.Context, expenseID string) (*domain.DecisionContext, error)

	// CommitDecision appends the history entry and updates the expense state
	// atomically. apperrors.ErrConflict is returned when the expense version
	// no longer matches commit.ExpectedVersion.
	CommitDecision(ctx context.Context, commit domain.DecisionCommit) (*domain.Expense, error)
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
	ApprovalStore
}

// ExpenseRepositoryWithTx extends ExpenseRepositoryFacade with transaction capabilities
type ExpenseRepositoryWithTx interface {
	ExpenseRepositoryFacade
	TransactionManager
}
