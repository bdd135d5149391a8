package domain

import "time"

// Decision is an approver's verdict on a pending expense.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// IsValid reports whether d is APPROVED or REJECTED.
func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// ApprovalHistory is one immutable decision row in an expense's audit trail.
type ApprovalHistory struct {
	HistoryID  string    `json:"id"`
	ExpenseID  string    `json:"expenseId"`
	ApproverID string    `json:"approverId"`
	Decision   Decision  `json:"decision"`
	Comment    *string   `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RuleApprover is one entry in a rule's ordered approver list.
type RuleApprover struct {
	ID    string `json:"id"`
	Order int    `json:"order"` // 1-based rank, only meaningful for sequential rules
}

// RuleConditions is the persisted shape of a rule's routing configuration.
type RuleConditions struct {
	IsSequential        bool     `json:"isSequential"`
	MinApprovalPercent  int      `json:"minApprovalPercent"` // 0-100
	CategoryFilter      *string  `json:"categoryFilter"`
	SpecificApproverIDs []string `json:"specificApproverIds"`
}

// ApprovalRule is a company-scoped, admin-managed approval policy.
type ApprovalRule struct {
	RuleID     string         `json:"id"`
	CompanyID  string         `json:"companyId"`
	Name       string         `json:"name"`
	Conditions RuleConditions `json:"conditions"`
	Approvers  []RuleApprover `json:"approvers"`
	AuditFields
}

// HasCategoryFilter reports whether the rule is limited to one category.
func (r ApprovalRule) HasCategoryFilter() bool {
	return r.Conditions.CategoryFilter != nil && *r.Conditions.CategoryFilter != ""
}

// AppliesToCategory reports whether the rule's filter names exactly category.
func (r ApprovalRule) AppliesToCategory(category string) bool {
	return r.HasCategoryFilter() && *r.Conditions.CategoryFilter == category
}

// ApproverIDs returns the approver ids in list order.
func (r ApprovalRule) ApproverIDs() []string {
	ids := make([]string, len(r.Approvers))
	for i, a := range r.Approvers {
		ids[i] = a.ID
	}
	return ids
}

// DefaultApprovalRule is applied when a company has no rule for a category:
// non-sequential, 100% of zero approvers, so any single approval suffices.
func DefaultApprovalRule() ApprovalRule {
	return ApprovalRule{
		Name: "default",
		Conditions: RuleConditions{
			IsSequential:        false,
			MinApprovalPercent:  100,
			SpecificApproverIDs: []string{},
		},
		Approvers: []RuleApprover{},
	}
}

// DecisionContext is everything the decision engine reads for one expense.
type DecisionContext struct {
	Expense Expense
	Owner   User
	Rules   []ApprovalRule // Company rules in creation order
}

// DecisionCommit is the atomic write that records a decision.
type DecisionCommit struct {
	ExpenseID         string
	ExpectedVersion   int64
	Status            ExpenseStatus
	CurrentApproverID *string
	Entry             ApprovalHistory
	UpdatedAt         time.Time
}
