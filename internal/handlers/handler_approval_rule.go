package handlers

import (
	"net/http"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/SscSPs/expense_manager_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type approvalRuleHandler struct {
	ruleService portssvc.ApprovalRuleSvcFacade
}

func registerApprovalRuleRoutes(rg *gin.RouterGroup, ruleService portssvc.ApprovalRuleSvcFacade) {
	h := &approvalRuleHandler{ruleService: ruleService}

	rules := rg.Group("/approval-rules", middleware.RequireRoles(domain.RoleAdmin))
	{
		rules.GET("", h.listRules)
		rules.POST("", h.createRule)
		rules.PUT("/:id", h.updateRule)
		rules.DELETE("/:id", h.deleteRule)
	}
}

// listRules godoc
// @Summary List approval rules
// @Description Lists the caller's company rules in the order they are evaluated.
// @Tags approval-rules
// @Produce json
// @Success 200 {object} dto.ApprovalRuleListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approval-rules [get]
func (h *approvalRuleHandler) listRules(c *gin.Context) {
	caller, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	rules, err := h.ruleService.ListRules(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err, "Failed to get approval rules")
		return
	}
	if rules == nil {
		rules = []domain.ApprovalRule{}
	}
	c.JSON(http.StatusOK, dto.ApprovalRuleListResponse{Data: rules, Total: len(rules)})
}

// createRule godoc
// @Summary Create an approval rule
// @Tags approval-rules
// @Accept json
// @Produce json
// @Param rule body dto.ApprovalRuleRequest true "Rule definition"
// @Success 201 {object} domain.ApprovalRule
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approval-rules [post]
func (h *approvalRuleHandler) createRule(c *gin.Context) {
	caller, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.ApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "approval rule request")
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to create approval rule")
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// updateRule godoc
// @Summary Update an approval rule
// @Tags approval-rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body dto.ApprovalRuleRequest true "Rule definition"
// @Success 200 {object} domain.ApprovalRule
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approval-rules/{id} [put]
func (h *approvalRuleHandler) updateRule(c *gin.Context) {
	caller, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.ApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "approval rule request")
		return
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update approval rule")
		return
	}
	c.JSON(http.StatusOK, rule)
}

// deleteRule godoc
// @Summary Delete an approval rule
// @Tags approval-rules
// @Param id path string true "Rule ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approval-rules/{id} [delete]
func (h *approvalRuleHandler) deleteRule(c *gin.Context) {
	caller, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.ruleService.DeleteRule(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete approval rule")
		return
	}
	c.Status(http.StatusNoContent)
}
