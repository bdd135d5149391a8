package dto

import "github.com/SscSPs/expense_manager_app/internal/core/domain"

// DecisionRequest is an approver's decision on a pending expense.
// The decision value is checked by the approval engine so its message reaches the caller verbatim.
type DecisionRequest struct {
	Decision string  `json:"decision"`
	Comment  *string `json:"comment" binding:"omitempty,max=1000"`
}

// ApprovalRuleRequest creates or replaces a rule. ApproverList is ranked by
// position. A nil MinApprovalPercent defaults to 100.
type ApprovalRuleRequest struct {
	Name                string   `json:"name" binding:"required,max=200"`
	IsSequential        *bool    `json:"isSequential"`
	MinApprovalPercent  *int     `json:"minApprovalPercent" binding:"omitempty,min=0,max=100"`
	CategoryFilter      *string  `json:"categoryFilter"`
	SpecificApproverIDs []string `json:"specificApproverIds" binding:"omitempty,dive,required"`
	ApproverList        []string `json:"approverList" binding:"required,min=1,dive,required"`
}

// ApprovalRuleListResponse wraps a company's rules.
type ApprovalRuleListResponse struct {
	Data  []domain.ApprovalRule `json:"data"`
	Total int                   `json:"total"`
}
