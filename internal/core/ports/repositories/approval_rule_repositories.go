package repositories

import (
	"context"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
)

// ApprovalRuleReader defines read operations for approval rules
type ApprovalRuleReader interface {
	// FindRuleByID retrieves a rule by its ID.
	FindRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error)

	// ListRulesByCompany retrieves a company's rules ordered by creation time.
	ListRulesByCompany(ctx context.Context, companyID string) ([]domain.ApprovalRule, error)
}

// ApprovalRuleWriter defines write operations for approval rules
type ApprovalRuleWriter interface {
	SaveRule(ctx context.Context, rule domain.ApprovalRule) error
	UpdateRule(ctx context.Context, rule domain.ApprovalRule) error
	DeleteRule(ctx context.Context, ruleID string) error
}

// ApprovalRuleRepositoryFacade combines all approval rule repository interfaces
type ApprovalRuleRepositoryFacade interface {
	ApprovalRuleReader
	ApprovalRuleWriter
}
