package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
)

type companyService struct {
	BaseService
	companyRepo portsrepo.CompanyRepositoryFacade
}

func NewCompanyService(companyRepo portsrepo.CompanyRepositoryFacade, opts ...ServiceOption) portssvc.CompanySvcFacade {
	return &companyService{BaseService: newBase(opts), companyRepo: companyRepo}
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// GetCompany returns the caller's own company. Other companies are reported as forbidden.
func (s *companyService) GetCompany(ctx context.Context, caller domain.Principal, companyID string) (*domain.Company, error) {
	if companyID != caller.CompanyID {
		return nil, fmt.Errorf("%w: you can only view your own company", apperrors.ErrForbidden)
	}
	return s.companyRepo.FindCompanyByID(ctx, companyID)
}
