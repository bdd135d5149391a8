package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	"github.com/SscSPs/expense_manager_app/internal/models"
)

// ToModelApprovalRule converts a domain ApprovalRule to a model ApprovalRule,
// encoding conditions and approvers as JSON documents.
func ToModelApprovalRule(d domain.ApprovalRule) (models.ApprovalRule, error) {
	if d.Conditions.SpecificApproverIDs == nil {
		d.Conditions.SpecificApproverIDs = []string{}
	}
	if d.Approvers == nil {
		d.Approvers = []domain.RuleApprover{}
	}
	conditions, err := json.Marshal(d.Conditions)
	if err != nil {
		return models.ApprovalRule{}, fmt.Errorf("failed to encode rule conditions: %w", err)
	}
	approvers, err := json.Marshal(d.Approvers)
	if err != nil {
		return models.ApprovalRule{}, fmt.Errorf("failed to encode rule approvers: %w", err)
	}
	return models.ApprovalRule{
		RuleID:      d.RuleID,
		CompanyID:   d.CompanyID,
		Name:        d.Name,
		Conditions:  conditions,
		Approvers:   approvers,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainApprovalRule converts a model ApprovalRule to a domain ApprovalRule.
// Missing documents decode to an empty, non-sequential rule.
func ToDomainApprovalRule(m models.ApprovalRule) (domain.ApprovalRule, error) {
	d := domain.ApprovalRule{
		RuleID:      m.RuleID,
		CompanyID:   m.CompanyID,
		Name:        m.Name,
		Approvers:   []domain.RuleApprover{},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if len(m.Conditions) > 0 {
		if err := json.Unmarshal(m.Conditions, &d.Conditions); err != nil {
			return domain.ApprovalRule{}, fmt.Errorf("failed to decode conditions of rule %s: %w", m.RuleID, err)
		}
	}
	if len(m.Approvers) > 0 {
		if err := json.Unmarshal(m.Approvers, &d.Approvers); err != nil {
			return domain.ApprovalRule{}, fmt.Errorf("failed to decode approvers of rule %s: %w", m.RuleID, err)
		}
	}
	if d.Conditions.SpecificApproverIDs == nil {
		d.Conditions.SpecificApproverIDs = []string{}
	}
	return d, nil
}

// ToDomainApprovalRuleSlice converts a slice of model rules, failing on the first undecodable one.
func ToDomainApprovalRuleSlice(ms []models.ApprovalRule) ([]domain.ApprovalRule, error) {
	ds := make([]domain.ApprovalRule, 0, len(ms))
	for _, m := range ms {
		d, err := ToDomainApprovalRule(m)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return ds, nil
}
