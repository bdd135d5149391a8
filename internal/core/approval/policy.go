// Package approval decides the next state of a pending expense when an
// approver records a decision.
package approval

import "github.com/SscSPs/expense_manager_app/internal/core/domain"

// Policy is the normalized form of an approval rule. Exactly one of the
// concrete policy types below is produced for any rule.
type Policy interface {
	isPolicy()
}

// SequentialPolicy routes the expense through Approvers in list order.
type SequentialPolicy struct {
	Approvers []string
	index     map[string]int // id -> position of its first occurrence
}

// PercentagePolicy approves once enough of Approvers have approved.
type PercentagePolicy struct {
	Threshold int // percent, 0-100
	Approvers []string
}

// SpecificApproverPolicy approves immediately when a member of ApproverIDs
// approves, and otherwise behaves like PercentagePolicy.
type SpecificApproverPolicy struct {
	ApproverIDs       map[string]struct{}
	FallbackThreshold int
	Approvers         []string
}

func (SequentialPolicy) isPolicy()       {}
func (PercentagePolicy) isPolicy()       {}
func (SpecificApproverPolicy) isPolicy() {}

// NewSequentialPolicy builds a sequential policy with a dense position index.
// Duplicate ids keep the position of their first occurrence.
func NewSequentialPolicy(approvers []string) SequentialPolicy {
	index := make(map[string]int, len(approvers))
	for i, id := range approvers {
		if _, seen := index[id]; !seen {
			index[id] = i
		}
	}
	return SequentialPolicy{Approvers: approvers, index: index}
}

// next returns the approver after approverID. ok is false when approverID is
// the last approver or is not in the chain.
func (p SequentialPolicy) next(approverID string) (string, bool) {
	pos, found := p.index[approverID]
	if !found || pos+1 >= len(p.Approvers) {
		return "", false
	}
	return p.Approvers[pos+1], true
}

// PolicyFor normalizes a persisted rule into its Policy.
func PolicyFor(rule domain.ApprovalRule) Policy {
	approvers := rule.ApproverIDs()
	if rule.Conditions.IsSequential {
		return NewSequentialPolicy(approvers)
	}
	if len(rule.Conditions.SpecificApproverIDs) > 0 {
		ids := make(map[string]struct{}, len(rule.Conditions.SpecificApproverIDs))
		for _, id := range rule.Conditions.SpecificApproverIDs {
			ids[id] = struct{}{}
		}
		return SpecificApproverPolicy{
			ApproverIDs:       ids,
			FallbackThreshold: rule.Conditions.MinApprovalPercent,
			Approvers:         approvers,
		}
	}
	return PercentagePolicy{
		Threshold: rule.Conditions.MinApprovalPercent,
		Approvers: approvers,
	}
}

// ResolveRule picks the rule governing an expense of the given category: the
// first exact category match, else the first rule without a category filter,
// else the implicit default rule.
func ResolveRule(rules []domain.ApprovalRule, category string) domain.ApprovalRule {
	for _, r := range rules {
		if r.AppliesToCategory(category) {
			return r
		}
	}
	for _, r := range rules {
		if !r.HasCategoryFilter() {
			return r
		}
	}
	return domain.DefaultApprovalRule()
}

// thresholdMet reports whether approved out of max(1, total) reaches
// threshold percent. Integer math keeps 1/3 at 33.33% below a 34% threshold.
func thresholdMet(approved, total, threshold int) bool {
	if total < 1 {
		total = 1
	}
	return approved*100 >= threshold*total
}
