package services

import (
	"github.com/SscSPs/expense_manager_app/internal/core/approval"
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Currency conversion is needed by expense creation
	container.Currency = NewCurrencyService()

	container.User = NewUserService(repos.UserRepo)
	container.Auth = NewAuthService(cfg, container.User, repos.UserRepo, repos.CompanyRepo)
	container.Company = NewCompanyService(repos.CompanyRepo)

	container.Expense = NewExpenseService(repos.ExpenseRepo, repos.UserRepo, repos.CompanyRepo, container.Currency)
	container.Approval = NewApprovalService(repos.ExpenseRepo, approval.NewEngine())
	container.ApprovalRule = NewApprovalRuleService(repos.ApprovalRuleRepo, repos.UserRepo)

	container.Attachment = NewAttachmentService(AttachmentConfig{
		UploadsDir:    cfg.UploadsDir,
		BaseURL:       cfg.BaseURL,
		MaxUploadSize: cfg.MaxUploadSize,
	}, repos.ExpenseRepo, repos.AttachmentRepo)

	return container
}
