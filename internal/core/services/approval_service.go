package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/approval"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
)

// decisionAttempts bounds the load-decide-commit cycle when a concurrent
// decision bumps the expense version in between.
const decisionAttempts = 2

type approvalService struct {
	BaseService
	store  portsrepo.ApprovalStore
	reader portsrepo.ExpenseReader
	engine *approval.Engine
}

// NewApprovalService creates the approver workflow service.
func NewApprovalService(expenseRepo portsrepo.ExpenseRepositoryFacade, engine *approval.Engine, opts ...ServiceOption) portssvc.ApprovalSvcFacade {
	if engine == nil {
		engine = approval.NewEngine()
	}
	return &approvalService{
		BaseService: newBase(opts),
		store:       expenseRepo,
		reader:      expenseRepo,
		engine:      engine,
	}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

func (s *approvalService) ListPendingApprovals(ctx context.Context, caller domain.Principal) ([]domain.Expense, error) {
	expenses, err := s.reader.ListPendingByApprover(ctx, caller.UserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending approvals", slog.String("approver_id", caller.UserID))
		return nil, err
	}
	return expenses, nil
}

func (s *approvalService) MakeDecision(ctx context.Context, caller domain.Principal, expenseID string, req dto.DecisionRequest) (*domain.Expense, error) {
	var lastErr error
	for attempt := 1; attempt <= decisionAttempts; attempt++ {
		exp, err := s.decideOnce(ctx, caller, expenseID, req)
		if err == nil {
			return exp, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		lastErr = err
		s.LogWarn(ctx, "Concurrent decision detected",
			slog.String("expense_id", expenseID),
			slog.Int("attempt", attempt))
	}
	return nil, lastErr
}

func (s *approvalService) decideOnce(ctx context.Context, caller domain.Principal, expenseID string, req dto.DecisionRequest) (*domain.Expense, error) {
	dc, err := s.store.LoadExpenseForDecision(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	rule := approval.ResolveRule(dc.Rules, dc.Expense.Category)
	out, err := s.engine.Decide(approval.Request{
		Expense:    dc.Expense,
		Rule:       rule,
		History:    dc.Expense.ApprovalHistory,
		ApproverID: caller.UserID,
		Decision:   domain.Decision(req.Decision),
		Comment:    req.Comment,
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.CommitDecision(ctx, domain.DecisionCommit{
		ExpenseID:         expenseID,
		ExpectedVersion:   dc.Expense.Version,
		Status:            out.Status,
		CurrentApproverID: out.CurrentApproverID,
		Entry:             out.Entry,
		UpdatedAt:         out.Entry.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Approval decision recorded",
		slog.String("expense_id", expenseID),
		slog.String("approver_id", caller.UserID),
		slog.String("decision", req.Decision),
		slog.String("rule", rule.Name),
		slog.String("branch", string(out.Branch)),
		slog.String("status", string(out.Status)))
	return updated, nil
}
