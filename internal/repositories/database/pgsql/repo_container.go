package pgsql

import (
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExpenseRepo:      newPgxExpenseRepository(dbPool),
		ApprovalRuleRepo: newPgxApprovalRuleRepository(dbPool),
		UserRepo:         newPgxUserRepository(dbPool),
		CompanyRepo:      newPgxCompanyRepository(dbPool),
		AttachmentRepo:   newPgxAttachmentRepository(dbPool),
	}
}
