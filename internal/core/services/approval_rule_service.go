package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/google/uuid"
)

const defaultMinApprovalPercent = 100

type approvalRuleService struct {
	BaseService
	ruleRepo portsrepo.ApprovalRuleRepositoryFacade
	userRepo portsrepo.UserReader
}

// NewApprovalRuleService creates the admin rule management service.
func NewApprovalRuleService(ruleRepo portsrepo.ApprovalRuleRepositoryFacade, userRepo portsrepo.UserReader, opts ...ServiceOption) portssvc.ApprovalRuleSvcFacade {
	return &approvalRuleService{
		BaseService: newBase(opts),
		ruleRepo:    ruleRepo,
		userRepo:    userRepo,
	}
}

var _ portssvc.ApprovalRuleSvcFacade = (*approvalRuleService)(nil)

func (s *approvalRuleService) ListRules(ctx context.Context, caller domain.Principal) ([]domain.ApprovalRule, error) {
	if err := s.RequireRole(ctx, caller, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.ruleRepo.ListRulesByCompany(ctx, caller.CompanyID)
}

func (s *approvalRuleService) CreateRule(ctx context.Context, caller domain.Principal, req dto.ApprovalRuleRequest) (*domain.ApprovalRule, error) {
	if err := s.RequireRole(ctx, caller, domain.RoleAdmin); err != nil {
		return nil, err
	}

	rule := domain.ApprovalRule{
		RuleID:      uuid.NewString(),
		CompanyID:   caller.CompanyID,
		AuditFields: domain.NewAuditFields(caller.UserID, s.Now()),
	}
	rule.Conditions.MinApprovalPercent = defaultMinApprovalPercent
	if err := s.apply(ctx, caller, &rule, req); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
		s.LogError(ctx, err, "Failed to save approval rule", slog.String("company_id", caller.CompanyID))
		return nil, err
	}
	s.LogInfo(ctx, "Approval rule created", slog.String("rule_id", rule.RuleID))
	return &rule, nil
}

// UpdateRule replaces a rule's definition. Omitted optional fields keep
// their stored value.
func (s *approvalRuleService) UpdateRule(ctx context.Context, caller domain.Principal, ruleID string, req dto.ApprovalRuleRequest) (*domain.ApprovalRule, error) {
	if err := s.RequireRole(ctx, caller, domain.RoleAdmin); err != nil {
		return nil, err
	}
	rule, err := s.companyRule(ctx, caller, ruleID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, caller, rule, req); err != nil {
		return nil, err
	}
	rule.Touch(caller.UserID, s.Now())

	if err := s.ruleRepo.UpdateRule(ctx, *rule); err != nil {
		s.LogError(ctx, err, "Failed to update approval rule", slog.String("rule_id", ruleID))
		return nil, err
	}
	return rule, nil
}

func (s *approvalRuleService) DeleteRule(ctx context.Context, caller domain.Principal, ruleID string) error {
	if err := s.RequireRole(ctx, caller, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.companyRule(ctx, caller, ruleID); err != nil {
		return err
	}
	if err := s.ruleRepo.DeleteRule(ctx, ruleID); err != nil {
		s.LogError(ctx, err, "Failed to delete approval rule", slog.String("rule_id", ruleID))
		return err
	}
	s.LogInfo(ctx, "Approval rule deleted", slog.String("rule_id", ruleID))
	return nil
}

// companyRule hides rules of other companies behind NotFound.
func (s *approvalRuleService) companyRule(ctx context.Context, caller domain.Principal, ruleID string) (*domain.ApprovalRule, error) {
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.CompanyID != caller.CompanyID {
		return nil, fmt.Errorf("%w: approval rule not found", apperrors.ErrNotFound)
	}
	return rule, nil
}

func (s *approvalRuleService) apply(ctx context.Context, caller domain.Principal, rule *domain.ApprovalRule, req dto.ApprovalRuleRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if len(req.ApproverList) == 0 {
		return fmt.Errorf("%w: at least one approver is required", apperrors.ErrValidation)
	}
	if req.MinApprovalPercent != nil && (*req.MinApprovalPercent < 0 || *req.MinApprovalPercent > 100) {
		return fmt.Errorf("%w: minApprovalPercent must be between 0 and 100", apperrors.ErrValidation)
	}

	if err := s.checkCompanyUsers(ctx, caller, req.ApproverList); err != nil {
		return err
	}
	if err := s.checkCompanyUsers(ctx, caller, req.SpecificApproverIDs); err != nil {
		return err
	}

	rule.Name = name
	if req.IsSequential != nil {
		rule.Conditions.IsSequential = *req.IsSequential
	}
	if req.MinApprovalPercent != nil {
		rule.Conditions.MinApprovalPercent = *req.MinApprovalPercent
	}
	if req.CategoryFilter != nil {
		filter := strings.TrimSpace(*req.CategoryFilter)
		if filter == "" {
			rule.Conditions.CategoryFilter = nil
		} else {
			rule.Conditions.CategoryFilter = &filter
		}
	}
	if req.SpecificApproverIDs != nil {
		rule.Conditions.SpecificApproverIDs = append([]string{}, req.SpecificApproverIDs...)
	}
	if rule.Conditions.SpecificApproverIDs == nil {
		rule.Conditions.SpecificApproverIDs = []string{}
	}

	rule.Approvers = make([]domain.RuleApprover, len(req.ApproverList))
	for i, id := range req.ApproverList {
		rule.Approvers[i] = domain.RuleApprover{ID: id, Order: i + 1}
	}
	return nil
}

func (s *approvalRuleService) checkCompanyUsers(ctx context.Context, caller domain.Principal, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		u, err := s.userRepo.FindUserByID(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: approver %s does not exist", apperrors.ErrValidation, id)
		}
		if err != nil {
			return err
		}
		if u.CompanyID != caller.CompanyID {
			return fmt.Errorf("%w: approver %s does not belong to your company", apperrors.ErrValidation, id)
		}
	}
	return nil
}
