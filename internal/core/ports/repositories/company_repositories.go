package repositories

import (
	"context"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
)

// CompanyRepositoryFacade defines persistence operations for companies
type CompanyRepositoryFacade interface {
	// FindCompanyByID retrieves a company by its ID.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// SaveCompanyWithAdmin creates a company and its first admin user in one transaction.
	SaveCompanyWithAdmin(ctx context.Context, company domain.Company, admin domain.User) error
}
