package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/SscSPs/expense_manager_app/internal/handlers"
	"github.com/SscSPs/expense_manager_app/internal/middleware"
	"github.com/SscSPs/expense_manager_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ApprovalService ---
type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) ListPendingApprovals(ctx context.Context, caller domain.Principal) ([]domain.Expense, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}
func (m *MockApprovalService) MakeDecision(ctx context.Context, caller domain.Principal, expenseID string, req dto.DecisionRequest) (*domain.Expense, error) {
	args := m.Called(ctx, caller, expenseID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

var _ portssvc.ApprovalSvcFacade = (*MockApprovalService)(nil)

// --- Mock ExpenseService ---
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) GetExpense(ctx context.Context, caller domain.Principal, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, caller, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseService) ListExpenses(ctx context.Context, caller domain.Principal, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	args := m.Called(ctx, caller, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}
func (m *MockExpenseService) CreateExpense(ctx context.Context, caller domain.Principal, req dto.CreateExpenseRequest) (*domain.Expense, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseService) UpdateExpense(ctx context.Context, caller domain.Principal, expenseID string, req dto.UpdateExpenseRequest) (*domain.Expense, error) {
	args := m.Called(ctx, caller, expenseID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseService) DeleteExpense(ctx context.Context, caller domain.Principal, expenseID string) error {
	args := m.Called(ctx, caller, expenseID)
	return args.Error(0)
}
func (m *MockExpenseService) SubmitExpense(ctx context.Context, caller domain.Principal, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, caller, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

var _ portssvc.ExpenseSvcFacade = (*MockExpenseService)(nil)

// --- Test Suite ---
type ApprovalHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockApprovalService *MockApprovalService
	mockExpenseService  *MockExpenseService
	jwtSecret           string
	companyID           string
}

func (suite *ApprovalHandlerTestSuite) token(userID string, role domain.UserRole) string {
	tok, _, err := utils.GenerateAccessToken(userID, userID+"@example.com", string(role), suite.companyID, suite.jwtSecret, time.Hour, "expense-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return tok
}

func (suite *ApprovalHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.companyID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockApprovalService = new(MockApprovalService)
	suite.mockExpenseService = new(MockExpenseService)

	api := suite.router.Group("/api")
	handlers.RegisterApprovalRoutes(api, suite.mockApprovalService)
	handlers.RegisterExpenseRoutes(api, suite.mockExpenseService)
}

func (suite *ApprovalHandlerTestSuite) do(method, url, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ApprovalHandlerTestSuite) errorMessage(w *httptest.ResponseRecorder) string {
	var body handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

// --- Test Cases ---

func (suite *ApprovalHandlerTestSuite) TestMakeDecision_StatusMapping() {
	managerID := uuid.NewString()
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid decision",
			err:        fmt.Errorf("%w: decision must be APPROVED or REJECTED", apperrors.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "decision must be APPROVED or REJECTED",
		},
		{
			name:       "not pending",
			err:        fmt.Errorf("%w: expense is not pending approval", apperrors.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "expense is not pending approval",
		},
		{
			name:       "not current approver",
			err:        fmt.Errorf("%w: you are not the current approver for this expense", apperrors.ErrForbidden),
			wantStatus: http.StatusForbidden,
			wantMsg:    "you are not the current approver for this expense",
		},
		{
			name:       "missing expense",
			err:        fmt.Errorf("%w: expense not found", apperrors.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "expense not found",
		},
		{
			name:       "concurrent decision",
			err:        fmt.Errorf("%w: expense was modified concurrently", apperrors.ErrConflict),
			wantStatus: http.StatusConflict,
			wantMsg:    "expense was modified concurrently",
		},
		{
			name:       "unexpected failure",
			err:        fmt.Errorf("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to process approval decision",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			expenseID := uuid.NewString()
			req := dto.DecisionRequest{Decision: "APPROVED"}
			suite.mockApprovalService.On("MakeDecision", mock.Anything,
				domain.Principal{UserID: managerID, Role: domain.RoleManager, CompanyID: suite.companyID},
				expenseID, req).Return(nil, tt.err).Once()

			w := suite.do(http.MethodPost, "/api/approvals/"+expenseID+"/decision", suite.token(managerID, domain.RoleManager), req)

			suite.Equal(tt.wantStatus, w.Code)
			suite.Equal(tt.wantMsg, suite.errorMessage(w))
			suite.mockApprovalService.AssertExpectations(suite.T())
		})
	}
}

func (suite *ApprovalHandlerTestSuite) TestMakeDecision_Success() {
	managerID := uuid.NewString()
	expenseID := uuid.NewString()
	comment := "looks fine"
	req := dto.DecisionRequest{Decision: "APPROVED", Comment: &comment}
	updated := &domain.Expense{
		ExpenseID:      expenseID,
		CompanyID:      suite.companyID,
		Status:         domain.ExpenseApproved,
		OriginalAmount: decimal.NewFromInt(40),
		ApprovalHistory: []domain.ApprovalHistory{
			{ExpenseID: expenseID, ApproverID: managerID, Decision: domain.DecisionApproved, Comment: &comment},
		},
	}
	suite.mockApprovalService.On("MakeDecision", mock.Anything, mock.MatchedBy(func(p domain.Principal) bool {
		return p.UserID == managerID
	}), expenseID, req).Return(updated, nil).Once()

	w := suite.do(http.MethodPost, "/api/approvals/"+expenseID+"/decision", suite.token(managerID, domain.RoleManager), req)

	suite.Equal(http.StatusOK, w.Code)
	var body domain.Expense
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(domain.ExpenseApproved, body.Status)
	suite.Len(body.ApprovalHistory, 1)
	suite.mockApprovalService.AssertExpectations(suite.T())
}

func (suite *ApprovalHandlerTestSuite) TestMakeDecision_EmployeeRejectedByRole() {
	employeeID := uuid.NewString()

	w := suite.do(http.MethodPost, "/api/approvals/"+uuid.NewString()+"/decision",
		suite.token(employeeID, domain.RoleEmployee), dto.DecisionRequest{Decision: "APPROVED"})

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockApprovalService.AssertNotCalled(suite.T(), "MakeDecision")
}

func (suite *ApprovalHandlerTestSuite) TestMakeDecision_MissingToken() {
	w := suite.do(http.MethodPost, "/api/approvals/"+uuid.NewString()+"/decision", "", dto.DecisionRequest{Decision: "APPROVED"})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockApprovalService.AssertNotCalled(suite.T(), "MakeDecision")
}

func (suite *ApprovalHandlerTestSuite) TestListPending_ReturnsTotal() {
	adminID := uuid.NewString()
	pending := []domain.Expense{
		{ExpenseID: uuid.NewString(), Status: domain.ExpensePending},
		{ExpenseID: uuid.NewString(), Status: domain.ExpensePending},
	}
	suite.mockApprovalService.On("ListPendingApprovals", mock.Anything, mock.MatchedBy(func(p domain.Principal) bool {
		return p.UserID == adminID && p.Role == domain.RoleAdmin
	})).Return(pending, nil).Once()

	w := suite.do(http.MethodGet, "/api/approvals/pending", suite.token(adminID, domain.RoleAdmin), nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ExpenseListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(2, body.Total)
	suite.Len(body.Data, 2)
}

func (suite *ApprovalHandlerTestSuite) TestSubmitExpense_StatusMapping() {
	ownerID := uuid.NewString()
	tests := []struct {
		name       string
		result     *domain.Expense
		err        error
		wantStatus int
	}{
		{
			name:       "submitted",
			result:     &domain.Expense{Status: domain.ExpensePending},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no manager",
			err:        fmt.Errorf("%w: no manager assigned", apperrors.ErrValidation),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not owner",
			err:        fmt.Errorf("%w: not authorized to submit this expense", apperrors.ErrForbidden),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing",
			err:        fmt.Errorf("%w: expense not found", apperrors.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			expenseID := uuid.NewString()
			if tt.result != nil {
				tt.result.ExpenseID = expenseID
				suite.mockExpenseService.On("SubmitExpense", mock.Anything, mock.Anything, expenseID).Return(tt.result, nil).Once()
			} else {
				suite.mockExpenseService.On("SubmitExpense", mock.Anything, mock.Anything, expenseID).Return(nil, tt.err).Once()
			}

			w := suite.do(http.MethodPost, "/api/expenses/"+expenseID+"/submit", suite.token(ownerID, domain.RoleEmployee), nil)

			suite.Equal(tt.wantStatus, w.Code)
			suite.mockExpenseService.AssertExpectations(suite.T())
		})
	}
}

func (suite *ApprovalHandlerTestSuite) TestCreateExpense_BindError() {
	ownerID := uuid.NewString()

	w := suite.do(http.MethodPost, "/api/expenses", suite.token(ownerID, domain.RoleEmployee), map[string]any{
		"category":         "TRAVEL",
		"originalCurrency": "USD",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockExpenseService.AssertNotCalled(suite.T(), "CreateExpense")
}

// --- Run Test Suite ---
func TestApprovalHandler(t *testing.T) {
	suite.Run(t, new(ApprovalHandlerTestSuite))
}
