package services

import (
	"context"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	"github.com/SscSPs/expense_manager_app/internal/dto"
)

// ApprovalSvcFacade defines the approver-facing workflow operations
type ApprovalSvcFacade interface {
	// ListPendingApprovals returns PENDING expenses awaiting the caller's decision.
	ListPendingApprovals(ctx context.Context, caller domain.Principal) ([]domain.Expense, error)

	// MakeDecision records the caller's decision and returns the updated expense with its history.
	MakeDecision(ctx context.Context, caller domain.Principal, expenseID string, req dto.DecisionRequest) (*domain.Expense, error)
}

// ApprovalRuleSvcFacade defines admin management of a company's approval rules
type ApprovalRuleSvcFacade interface {
	ListRules(ctx context.Context, caller domain.Principal) ([]domain.ApprovalRule, error)
	CreateRule(ctx context.Context, caller domain.Principal, req dto.ApprovalRuleRequest) (*domain.ApprovalRule, error)
	UpdateRule(ctx context.Context, caller domain.Principal, ruleID string, req dto.ApprovalRuleRequest) (*domain.ApprovalRule, error)
	DeleteRule(ctx context.Context, caller domain.Principal, ruleID string) error
}
