package approval_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/approval"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
	engine *approval.Engine
	now    time.Time
	seq    int
}

func (s *EngineTestSuite) SetupTest() {
	s.now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	s.seq = 0
	s.engine = approval.NewEngine(
		approval.WithClock(func() time.Time { return s.now }),
		approval.WithIDGenerator(func() string {
			s.seq++
			return fmt.Sprintf("hist-%d", s.seq)
		}),
	)
}

func pendingExpense(approverID string) domain.Expense {
	return domain.Expense{
		ExpenseID:         "exp-1",
		UserID:            "emp-1",
		Category:          "Travel",
		Status:            domain.ExpensePending,
		CurrentApproverID: &approverID,
	}
}

func rule(sequential bool, percent int, specific []string, approvers ...string) domain.ApprovalRule {
	r := domain.ApprovalRule{
		RuleID: "rule-1",
		Name:   "test",
		Conditions: domain.RuleConditions{
			IsSequential:        sequential,
			MinApprovalPercent:  percent,
			SpecificApproverIDs: specific,
		},
	}
	for i, id := range approvers {
		r.Approvers = append(r.Approvers, domain.RuleApprover{ID: id, Order: i + 1})
	}
	return r
}

func categoryRule(id string, filter *string) domain.ApprovalRule {
	r := rule(false, 100, nil)
	r.RuleID = id
	r.Conditions.CategoryFilter = filter
	return r
}

func strPtr(s string) *string { return &s }

func (s *EngineTestSuite) decide(exp domain.Expense, r domain.ApprovalRule, history []domain.ApprovalHistory, approverID string, d domain.Decision) *approval.Outcome {
	out, err := s.engine.Decide(approval.Request{
		Expense:    exp,
		Rule:       r,
		History:    history,
		ApproverID: approverID,
		Decision:   d,
	})
	s.Require().NoError(err)
	s.Require().NotNil(out)
	return out
}

// --- Preconditions ---

func (s *EngineTestSuite) TestDecide_InvalidDecision() {
	out, err := s.engine.Decide(approval.Request{
		Expense:    pendingExpense("mgr"),
		Rule:       domain.DefaultApprovalRule(),
		ApproverID: "mgr",
		Decision:   domain.Decision("MAYBE"),
	})
	s.Nil(out)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *EngineTestSuite) TestDecide_NotPending() {
	for _, status := range []domain.ExpenseStatus{domain.ExpenseDraft, domain.ExpenseApproved, domain.ExpenseRejected} {
		exp := pendingExpense("mgr")
		exp.Status = status
		out, err := s.engine.Decide(approval.Request{
			Expense:    exp,
			Rule:       domain.DefaultApprovalRule(),
			ApproverID: "mgr",
			Decision:   domain.DecisionApproved,
		})
		s.Nil(out, status)
		s.ErrorIs(err, apperrors.ErrValidation, status)
		s.Contains(err.Error(), "not pending approval")
	}
}

func (s *EngineTestSuite) TestDecide_NotCurrentApprover() {
	out, err := s.engine.Decide(approval.Request{
		Expense:    pendingExpense("mgr"),
		Rule:       domain.DefaultApprovalRule(),
		ApproverID: "someone-else",
		Decision:   domain.DecisionApproved,
	})
	s.Nil(out)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *EngineTestSuite) TestDecide_InvalidDecisionCheckedBeforeStatus() {
	exp := pendingExpense("mgr")
	exp.Status = domain.ExpenseApproved
	_, err := s.engine.Decide(approval.Request{
		Expense:    exp,
		ApproverID: "other",
		Decision:   domain.Decision(""),
	})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), "APPROVED or REJECTED")
}

// --- History entry ---

func (s *EngineTestSuite) TestDecide_HistoryEntry() {
	comment := "looks fine"
	out, err := s.engine.Decide(approval.Request{
		Expense:    pendingExpense("mgr"),
		Rule:       domain.DefaultApprovalRule(),
		ApproverID: "mgr",
		Decision:   domain.DecisionApproved,
		Comment:    &comment,
	})
	s.Require().NoError(err)
	s.Equal("hist-1", out.Entry.HistoryID)
	s.Equal("exp-1", out.Entry.ExpenseID)
	s.Equal("mgr", out.Entry.ApproverID)
	s.Equal(domain.DecisionApproved, out.Entry.Decision)
	s.Equal(&comment, out.Entry.Comment)
	s.Equal(s.now, out.Entry.CreatedAt)
	s.Equal(1, s.seq, "exactly one history id is generated per decision")
}

// --- Rejection ---

func (s *EngineTestSuite) TestDecide_RejectionIsAbsolute() {
	rules := map[string]domain.ApprovalRule{
		"default":           domain.DefaultApprovalRule(),
		"sequential":        rule(true, 100, nil, "mgr", "b", "c"),
		"percentage zero":   rule(false, 0, nil, "mgr", "b"),
		"specific approver": rule(false, 100, []string{"mgr"}, "mgr"),
	}
	for name, r := range rules {
		s.seq = 0
		out := s.decide(pendingExpense("mgr"), r, nil, "mgr", domain.DecisionRejected)
		s.Equal(domain.ExpenseRejected, out.Status, name)
		s.Nil(out.CurrentApproverID, name)
		s.Equal(approval.BranchRejected, out.Branch, name)
		s.Equal(domain.DecisionRejected, out.Entry.Decision, name)
		s.Equal(1, s.seq, name)
	}
}

// --- Sequential ---

func (s *EngineTestSuite) TestDecide_SequentialAdvance() {
	r := rule(true, 100, nil, "A", "B", "C")

	out := s.decide(pendingExpense("A"), r, nil, "A", domain.DecisionApproved)
	s.Equal(domain.ExpensePending, out.Status)
	s.Require().NotNil(out.CurrentApproverID)
	s.Equal("B", *out.CurrentApproverID)
	s.Equal(approval.BranchSequentialAdvance, out.Branch)

	out = s.decide(pendingExpense("B"), r, nil, "B", domain.DecisionApproved)
	s.Equal(domain.ExpensePending, out.Status)
	s.Require().NotNil(out.CurrentApproverID)
	s.Equal("C", *out.CurrentApproverID)

	out = s.decide(pendingExpense("C"), r, nil, "C", domain.DecisionApproved)
	s.Equal(domain.ExpenseApproved, out.Status)
	s.Nil(out.CurrentApproverID)
	s.Equal(approval.BranchSequentialComplete, out.Branch)
}

func (s *EngineTestSuite) TestDecide_SequentialUsesListPositionNotOrderField() {
	r := rule(true, 100, nil, "A", "B")
	r.Approvers[0].Order = 7
	r.Approvers[1].Order = 3

	out := s.decide(pendingExpense("A"), r, nil, "A", domain.DecisionApproved)
	s.Require().NotNil(out.CurrentApproverID)
	s.Equal("B", *out.CurrentApproverID)
}

func (s *EngineTestSuite) TestDecide_SequentialDuplicateUsesFirstMatch() {
	r := rule(true, 100, nil, "A", "B", "A", "C")

	out := s.decide(pendingExpense("A"), r, nil, "A", domain.DecisionApproved)
	s.Equal(domain.ExpensePending, out.Status)
	s.Require().NotNil(out.CurrentApproverID)
	s.Equal("B", *out.CurrentApproverID)
}

func (s *EngineTestSuite) TestDecide_SequentialApproverNotInList() {
	r := rule(true, 100, nil, "A", "B")

	out := s.decide(pendingExpense("outsider"), r, nil, "outsider", domain.DecisionApproved)
	s.Equal(domain.ExpenseApproved, out.Status)
	s.Nil(out.CurrentApproverID)
	s.Equal(approval.BranchSequentialComplete, out.Branch)
}

// --- Percentage ---

func (s *EngineTestSuite) TestDecide_PercentageReachedOnFirstApproval() {
	r := rule(false, 50, nil, "A", "B")

	out := s.decide(pendingExpense("A"), r, nil, "A", domain.DecisionApproved)
	s.Equal(domain.ExpenseApproved, out.Status)
	s.Nil(out.CurrentApproverID)
	s.Equal(approval.BranchPercentageMet, out.Branch)
}

func (s *EngineTestSuite) TestDecide_PercentagePendingKeepsCurrentApprover() {
	r := rule(false, 100, nil, "A", "B", "C")

	out := s.decide(pendingExpense("A"), r, nil, "A", domain.DecisionApproved)
	s.Equal(domain.ExpensePending, out.Status)
	s.Require().NotNil(out.CurrentApproverID)
	s.Equal("A", *out.CurrentApproverID)
	s.Equal(approval.BranchPercentagePending, out.Branch)
}

func (s *EngineTestSuite) TestDecide_PercentageCountsPriorApprovalsOnly() {
	r := rule(false, 100, nil, "A", "B", "C")
	history := []domain.ApprovalHistory{
		{HistoryID: "h1", Decision: domain.DecisionApproved},
		{HistoryID: "h2", Decision: domain.DecisionRejected},
	}
	out := s.decide(pendingExpense("A"), r, history, "A", domain.DecisionApproved)
	s.Equal(domain.ExpensePending, out.Status, "2 of 3 is below 100%")

	history = append(history, domain.ApprovalHistory{HistoryID: "h3", Decision: domain.DecisionApproved})
	out = s.decide(pendingExpense("A"), r, history, "A", domain.DecisionApproved)
	s.Equal(domain.ExpenseApproved, out.Status)
}

func (s *EngineTestSuite) TestDecide_PercentageIntegerBoundary() {
	// 1 of 3 is 33.3%: meets 33, misses 34.
	out := s.decide(pendingExpense("A"), rule(false, 33, nil, "A", "B", "C"), nil, "A", domain.DecisionApproved)
	s.Equal(domain.ExpenseApproved, out.Status)

	out = s.decide(pendingExpense("A"), rule(false, 34, nil, "A", "B", "C"), nil, "A", domain.DecisionApproved)
	s.Equal(domain.ExpensePending, out.Status)
}

func (s *EngineTestSuite) TestDecide_NoApproversDefaultApproves() {
	out := s.decide(pendingExpense("mgr"), domain.DefaultApprovalRule(), nil, "mgr", domain.DecisionApproved)
	s.Equal(domain.ExpenseApproved, out.Status)
	s.Nil(out.CurrentApproverID)

	out = s.decide(pendingExpense("mgr"), rule(false, 100, nil), nil, "mgr", domain.DecisionApproved)
	s.Equal(domain.ExpenseApproved, out.Status)
}

// --- Specific approver ---

func (s *EngineTestSuite) TestDecide_SpecificApproverShortCircuit() {
	r := rule(false, 100, []string{"X"}, "A", "B", "C")

	out := s.decide(pendingExpense("X"), r, nil, "X", domain.DecisionApproved)
	s.Equal(domain.ExpenseApproved, out.Status)
	s.Nil(out.CurrentApproverID)
	s.Equal(approval.BranchSpecificApprover, out.Branch)
}

func (s *EngineTestSuite) TestDecide_SpecificApproverNonMemberFallsThrough() {
	r := rule(false, 100, []string{"X"}, "A", "B", "C")

	out := s.decide(pendingExpense("Y"), r, nil, "Y", domain.DecisionApproved)
	s.Equal(domain.ExpensePending, out.Status, "1 of 3 approvers is below 100%")
	s.Equal(approval.BranchPercentagePending, out.Branch)

	r.Conditions.MinApprovalPercent = 30
	out = s.decide(pendingExpense("Y"), r, nil, "Y", domain.DecisionApproved)
	s.Equal(domain.ExpenseApproved, out.Status)
	s.Equal(approval.BranchPercentageMet, out.Branch)
}

func (s *EngineTestSuite) TestDecide_SequentialIgnoresSpecificApprovers() {
	r := rule(true, 100, []string{"A"}, "A", "B")

	out := s.decide(pendingExpense("A"), r, nil, "A", domain.DecisionApproved)
	s.Equal(domain.ExpensePending, out.Status)
	s.Equal(approval.BranchSequentialAdvance, out.Branch)
}

// --- Rule resolution ---

func (s *EngineTestSuite) TestResolveRule() {
	catchAll := categoryRule("catch-all", nil)
	emptyFilter := categoryRule("empty", strPtr(""))
	travel := categoryRule("travel", strPtr("Travel"))
	meals := categoryRule("meals", strPtr("Meals"))

	s.Equal("travel", approval.ResolveRule([]domain.ApprovalRule{catchAll, meals, travel}, "Travel").RuleID)
	s.Equal("catch-all", approval.ResolveRule([]domain.ApprovalRule{meals, catchAll, emptyFilter}, "Travel").RuleID)
	s.Equal("empty", approval.ResolveRule([]domain.ApprovalRule{meals, emptyFilter, catchAll}, "Office").RuleID)

	def := approval.ResolveRule([]domain.ApprovalRule{meals}, "Travel")
	s.Equal("", def.RuleID)
	s.False(def.Conditions.IsSequential)
	s.Equal(100, def.Conditions.MinApprovalPercent)
	s.Empty(def.Approvers)
	s.Empty(def.Conditions.SpecificApproverIDs)

	s.Equal("", approval.ResolveRule(nil, "Travel").RuleID)
}

func (s *EngineTestSuite) TestPolicyFor() {
	s.IsType(approval.SequentialPolicy{}, approval.PolicyFor(rule(true, 100, []string{"X"}, "A")))
	s.IsType(approval.SpecificApproverPolicy{}, approval.PolicyFor(rule(false, 100, []string{"X"}, "A")))
	s.IsType(approval.PercentagePolicy{}, approval.PolicyFor(rule(false, 100, nil, "A")))
	s.IsType(approval.PercentagePolicy{}, approval.PolicyFor(domain.DefaultApprovalRule()))
}

// --- End to end ---

func (s *EngineTestSuite) TestTravelScenario_ManagerOutsideRuleApprovesImmediately() {
	travelRule := domain.ApprovalRule{
		RuleID: "travel",
		Name:   "Travel",
		Conditions: domain.RuleConditions{
			IsSequential:       true,
			MinApprovalPercent: 100,
			CategoryFilter:     strPtr("Travel"),
		},
		Approvers: []domain.RuleApprover{{ID: "mgr", Order: 1}, {ID: "admin", Order: 2}},
	}
	managerID := "direct-manager"
	exp := domain.Expense{ExpenseID: "exp-1", UserID: "emp-1", Category: "Travel", Status: domain.ExpenseDraft}

	s.Require().NoError(exp.Submit(&managerID, "emp-1", s.now))
	s.Require().NotNil(exp.CurrentApproverID)
	s.Equal("direct-manager", *exp.CurrentApproverID)

	resolved := approval.ResolveRule([]domain.ApprovalRule{travelRule}, exp.Category)
	s.Equal("travel", resolved.RuleID)

	out := s.decide(exp, resolved, nil, "direct-manager", domain.DecisionApproved)
	s.Equal(domain.ExpenseApproved, out.Status)
	s.Nil(out.CurrentApproverID)
	s.Equal(approval.BranchSequentialComplete, out.Branch)

	exp.Status = out.Status
	exp.CurrentApproverID = out.CurrentApproverID
	_, err := s.engine.Decide(approval.Request{
		Expense:    exp,
		Rule:       resolved,
		History:    []domain.ApprovalHistory{out.Entry},
		ApproverID: "direct-manager",
		Decision:   domain.DecisionApproved,
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func TestEngine(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
