package models

// ApprovalRule is a row of the approval_rules table. Conditions and
// Approvers are stored as JSONB documents.
type ApprovalRule struct {
	RuleID     string `db:"rule_id"`
	CompanyID  string `db:"company_id"`
	Name       string `db:"name"`
	Conditions []byte `db:"conditions"`
	Approvers  []byte `db:"approvers"`
	AuditFields
}
