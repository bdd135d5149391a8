package approval

import (
	"fmt"
	"time"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	"github.com/google/uuid"
)

// Branch identifies which part of the decision algorithm produced an outcome.
type Branch string

const (
	BranchRejected           Branch = "rejected"
	BranchSequentialAdvance  Branch = "sequential_advance"
	BranchSequentialComplete Branch = "sequential_complete"
	BranchSpecificApprover   Branch = "specific_approver"
	BranchPercentageMet      Branch = "percentage_met"
	BranchPercentagePending  Branch = "percentage_pending"
	BranchFallback           Branch = "fallback"
)

// Request is a single decision on a pending expense.
type Request struct {
	Expense    domain.Expense
	Rule       domain.ApprovalRule
	History    []domain.ApprovalHistory // Prior decisions on this expense
	ApproverID string
	Decision   domain.Decision
	Comment    *string
}

// Outcome is the expense state after a decision plus the history row that
// records it.
type Outcome struct {
	Status            domain.ExpenseStatus
	CurrentApproverID *string
	Entry             domain.ApprovalHistory
	Branch            Branch
}

// Engine evaluates approval decisions. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the history id generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates an Engine using UTC wall time and UUIDv4 ids by default.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide validates req and computes the resulting expense state. Exactly one
// history entry is produced for every successful call.
func (e *Engine) Decide(req Request) (*Outcome, error) {
	if !req.Decision.IsValid() {
		return nil, fmt.Errorf("%w: decision must be APPROVED or REJECTED", apperrors.ErrValidation)
	}
	if req.Expense.Status != domain.ExpensePending {
		return nil, fmt.Errorf("%w: expense is not pending approval", apperrors.ErrValidation)
	}
	if !req.Expense.IsCurrentApprover(req.ApproverID) {
		return nil, fmt.Errorf("%w: you are not the current approver for this expense", apperrors.ErrForbidden)
	}

	out := &Outcome{
		Entry: domain.ApprovalHistory{
			HistoryID:  e.newID(),
			ExpenseID:  req.Expense.ExpenseID,
			ApproverID: req.ApproverID,
			Decision:   req.Decision,
			Comment:    req.Comment,
			CreatedAt:  e.now(),
		},
	}

	if req.Decision == domain.DecisionRejected {
		out.finish(domain.ExpenseRejected, BranchRejected)
		return out, nil
	}

	switch p := PolicyFor(req.Rule).(type) {
	case SequentialPolicy:
		if next, ok := p.next(req.ApproverID); ok {
			out.Status = domain.ExpensePending
			out.CurrentApproverID = &next
			out.Branch = BranchSequentialAdvance
		} else {
			out.finish(domain.ExpenseApproved, BranchSequentialComplete)
		}
	case SpecificApproverPolicy:
		if _, ok := p.ApproverIDs[req.ApproverID]; ok {
			out.finish(domain.ExpenseApproved, BranchSpecificApprover)
			break
		}
		out.percentage(req, p.FallbackThreshold, len(p.Approvers))
	case PercentagePolicy:
		out.percentage(req, p.Threshold, len(p.Approvers))
	default:
		out.finish(domain.ExpenseApproved, BranchFallback)
	}
	return out, nil
}

func (o *Outcome) finish(status domain.ExpenseStatus, branch Branch) {
	o.Status = status
	o.CurrentApproverID = nil
	o.Branch = branch
}

func (o *Outcome) percentage(req Request, threshold, totalApprovers int) {
	approved := 1
	for _, h := range req.History {
		if h.Decision == domain.DecisionApproved {
			approved++
		}
	}
	if thresholdMet(approved, totalApprovers, threshold) {
		o.finish(domain.ExpenseApproved, BranchPercentageMet)
		return
	}
	current := *req.Expense.CurrentApproverID
	o.Status = domain.ExpensePending
	o.CurrentApproverID = &current
	o.Branch = BranchPercentagePending
}
