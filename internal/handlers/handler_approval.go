package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/SscSPs/expense_manager_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// approvalHandler handles approver-facing requests.
type approvalHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

// RegisterApprovalRoutes registers the approval routes, limited to managers and admins.
func RegisterApprovalRoutes(rg *gin.RouterGroup, approvalService portssvc.ApprovalSvcFacade) {
	h := &approvalHandler{approvalService: approvalService}

	approvals := rg.Group("/approvals", middleware.RequireRoles(domain.RoleManager, domain.RoleAdmin))
	{
		approvals.GET("/pending", h.listPending)
		approvals.POST("/:id/decision", h.makeDecision)
	}
}

// listPending godoc
// @Summary List pending approvals
// @Description Lists PENDING expenses whose current approver is the caller.
// @Tags approvals
// @Produce json
// @Success 200 {object} dto.ExpenseListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approvals/pending [get]
func (h *approvalHandler) listPending(c *gin.Context) {
	caller, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expenses, err := h.approvalService.ListPendingApprovals(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err, "Failed to fetch approvals")
		return
	}
	c.JSON(http.StatusOK, dto.NewExpenseListResponse(expenses))
}

// makeDecision godoc
// @Summary Approve or reject an expense
// @Description Records the caller's decision on a PENDING expense and returns the updated expense with its approval history.
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param decision body dto.DecisionRequest true "APPROVED or REJECTED with an optional comment"
// @Success 200 {object} domain.Expense
// @Failure 400 {object} ErrorResponse "Invalid decision or expense not pending"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Caller is not the current approver"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Concurrent decision"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approvals/{id}/decision [post]
func (h *approvalHandler) makeDecision(c *gin.Context) {
	caller, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "decision request")
		return
	}

	expenseID := c.Param("id")
	exp, err := h.approvalService.MakeDecision(c.Request.Context(), caller, expenseID, req)
	if err != nil {
		respondError(c, err, "Failed to process approval decision")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Approval decision processed",
		slog.String("expense_id", expenseID),
		slog.String("status", string(exp.Status)))
	c.JSON(http.StatusOK, exp)
}
