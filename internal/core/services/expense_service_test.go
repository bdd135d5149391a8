package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/core/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ExpenseServiceTestSuite struct {
	suite.Suite
	expenseRepo *MockExpenseRepository
	userRepo    *MockUserRepository
	companyRepo *MockCompanyRepository
	service     portssvc.ExpenseSvcFacade
	ctx         context.Context
	now         time.Time
	employee    domain.Principal
}

func (s *ExpenseServiceTestSuite) SetupTest() {
	s.expenseRepo = new(MockExpenseRepository)
	s.userRepo = new(MockUserRepository)
	s.companyRepo = new(MockCompanyRepository)
	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.service = services.NewExpenseService(s.expenseRepo, s.userRepo, s.companyRepo,
		services.NewCurrencyService(), services.WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
	s.employee = domain.Principal{UserID: "emp-1", Role: domain.RoleEmployee, CompanyID: "co-1"}
}

func TestExpenseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}

func (s *ExpenseServiceTestSuite) draft() *domain.Expense {
	return &domain.Expense{
		ExpenseID:        "exp-1",
		CompanyID:        "co-1",
		UserID:           "emp-1",
		Title:            "Client dinner",
		Category:         "Meals",
		OriginalAmount:   decimal.NewFromInt(100),
		OriginalCurrency: "USD",
		Status:           domain.ExpenseDraft,
		Version:          1,
	}
}

func (s *ExpenseServiceTestSuite) TestSubmitExpense_RoutesToManager() {
	s.expenseRepo.On("FindExpenseByID", s.ctx, "exp-1").Return(s.draft(), nil).Once()
	s.userRepo.On("FindUserByID", s.ctx, "emp-1").Return(&domain.User{UserID: "emp-1", ManagerID: strPtr("mgr-1")}, nil).Once()
	s.expenseRepo.On("UpdateExpense", s.ctx, mock.MatchedBy(func(e domain.Expense) bool {
		return e.Status == domain.ExpensePending &&
			e.CurrentApproverID != nil && *e.CurrentApproverID == "mgr-1" &&
			e.Version == 1 &&
			e.LastUpdatedAt.Equal(s.now)
	})).Return(nil).Once()
	pending := s.draft()
	pending.Status = domain.ExpensePending
	pending.CurrentApproverID = strPtr("mgr-1")
	s.expenseRepo.On("FindExpenseByID", s.ctx, "exp-1").Return(pending, nil).Once()

	exp, err := s.service.SubmitExpense(s.ctx, s.employee, "exp-1")

	s.Require().NoError(err)
	s.Equal(domain.ExpensePending, exp.Status)
	s.Equal("mgr-1", *exp.CurrentApproverID)
	s.expenseRepo.AssertExpectations(s.T())
	s.userRepo.AssertExpectations(s.T())
}

func (s *ExpenseServiceTestSuite) TestSubmitExpense_NoManager() {
	s.expenseRepo.On("FindExpenseByID", s.ctx, "exp-1").Return(s.draft(), nil).Once()
	s.userRepo.On("FindUserByID", s.ctx, "emp-1").Return(&domain.User{UserID: "emp-1"}, nil).Once()

	_, err := s.service.SubmitExpense(s.ctx, s.employee, "exp-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), "no manager assigned")
	s.expenseRepo.AssertNotCalled(s.T(), "UpdateExpense", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestSubmitExpense_NotOwner() {
	s.expenseRepo.On("FindExpenseByID", s.ctx, "exp-1").Return(s.draft(), nil).Once()
	intruder := domain.Principal{UserID: "emp-2", Role: domain.RoleEmployee, CompanyID: "co-1"}

	_, err := s.service.SubmitExpense(s.ctx, intruder, "exp-1")

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.userRepo.AssertNotCalled(s.T(), "FindUserByID", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestSubmitExpense_AlreadyPending() {
	pending := s.draft()
	pending.Status = domain.ExpensePending
	pending.CurrentApproverID = strPtr("mgr-1")
	s.expenseRepo.On("FindExpenseByID", s.ctx, "exp-1").Return(pending, nil).Once()

	_, err := s.service.SubmitExpense(s.ctx, s.employee, "exp-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), "DRAFT or REJECTED")
}

func (s *ExpenseServiceTestSuite) TestSubmitExpense_NotFound() {
	s.expenseRepo.On("FindExpenseByID", s.ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.SubmitExpense(s.ctx, s.employee, "missing")

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ExpenseServiceTestSuite) TestGetExpense_Access() {
	pending := s.draft()
	pending.Status = domain.ExpensePending
	pending.CurrentApproverID = strPtr("mgr-1")

	tests := []struct {
		name    string
		caller  domain.Principal
		allowed bool
	}{
		{name: "owner", caller: s.employee, allowed: true},
		{name: "current approver", caller: domain.Principal{UserID: "mgr-1", Role: domain.RoleManager, CompanyID: "co-1"}, allowed: true},
		{name: "same company admin", caller: domain.Principal{UserID: "adm-1", Role: domain.RoleAdmin, CompanyID: "co-1"}, allowed: true},
		{name: "other company admin", caller: domain.Principal{UserID: "adm-2", Role: domain.RoleAdmin, CompanyID: "co-2"}, allowed: false},
		{name: "colleague", caller: domain.Principal{UserID: "emp-2", Role: domain.RoleEmployee, CompanyID: "co-1"}, allowed: false},
	}
	s.expenseRepo.On("FindExpenseByID", s.ctx, "exp-1").Return(pending, nil)

	for _, tt := range tests {
		s.Run(tt.name, func() {
			exp, err := s.service.GetExpense(s.ctx, tt.caller, "exp-1")
			if tt.allowed {
				s.Require().NoError(err)
				s.Equal("exp-1", exp.ExpenseID)
				return
			}
			s.ErrorIs(err, apperrors.ErrForbidden)
		})
	}
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_ConvertsToCompanyCurrency() {
	s.companyRepo.On("FindCompanyByID", s.ctx, "co-1").Return(&domain.Company{CompanyID: "co-1", DefaultCurrency: "EUR"}, nil).Once()
	s.expenseRepo.On("SaveExpense", s.ctx, mock.AnythingOfType("domain.Expense")).Return(nil).Once()

	req := dto.CreateExpenseRequest{
		Title:            "Flight",
		Date:             time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
		Category:         "Travel",
		OriginalAmount:   decimal.RequireFromString("200.00"),
		OriginalCurrency: "usd",
		Lines: []dto.ExpenseLineRequest{
			{Description: "Ticket", Amount: decimal.RequireFromString("180.00")},
			{Description: "Bag", Amount: decimal.RequireFromString("20.00")},
		},
	}
	exp, err := s.service.CreateExpense(s.ctx, s.employee, req)

	s.Require().NoError(err)
	s.Equal(domain.ExpenseDraft, exp.Status)
	s.Equal("USD", exp.OriginalCurrency)
	s.True(decimal.RequireFromString("1.1").Equal(exp.ExchangeRate))
	s.True(decimal.RequireFromString("220.00").Equal(exp.ConvertedAmount))
	s.Len(exp.Lines, 2)
	s.Equal(exp.ExpenseID, exp.Lines[0].ExpenseID)
	s.Equal(s.now, exp.CreatedAt)
	s.Nil(exp.CurrentApproverID)
	s.expenseRepo.AssertExpectations(s.T())
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_RejectsNonPositiveAmount() {
	req := dto.CreateExpenseRequest{
		Title:            "Nothing",
		Date:             s.now,
		Category:         "Misc",
		OriginalAmount:   decimal.Zero,
		OriginalCurrency: "USD",
	}
	_, err := s.service.CreateExpense(s.ctx, s.employee, req)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.expenseRepo.AssertNotCalled(s.T(), "SaveExpense", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestUpdateExpense_RejectedGoesBackToDraft() {
	rejected := s.draft()
	rejected.Status = domain.ExpenseRejected
	s.expenseRepo.On("FindExpenseByID", s.ctx, "exp-1").Return(rejected, nil).Once()
	s.companyRepo.On("FindCompanyByID", s.ctx, "co-1").Return(&domain.Company{CompanyID: "co-1", DefaultCurrency: "USD"}, nil).Once()
	s.expenseRepo.On("UpdateExpense", s.ctx, mock.MatchedBy(func(e domain.Expense) bool {
		return e.Status == domain.ExpenseDraft && e.Title == "Client dinner (edited)" && e.ExchangeRate.Equal(decimal.NewFromInt(1))
	})).Return(nil).Once()
	s.expenseRepo.On("FindExpenseByID", s.ctx, "exp-1").Return(s.draft(), nil).Once()

	title := "Client dinner (edited)"
	_, err := s.service.UpdateExpense(s.ctx, s.employee, "exp-1", dto.UpdateExpenseRequest{Title: &title})

	s.Require().NoError(err)
	s.expenseRepo.AssertExpectations(s.T())
}

func (s *ExpenseServiceTestSuite) TestUpdateExpense_ApprovedIsLocked() {
	approved := s.draft()
	approved.Status = domain.ExpenseApproved
	s.expenseRepo.On("FindExpenseByID", s.ctx, "exp-1").Return(approved, nil).Once()

	title := "Too late"
	_, err := s.service.UpdateExpense(s.ctx, s.employee, "exp-1", dto.UpdateExpenseRequest{Title: &title})

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ExpenseServiceTestSuite) TestDeleteExpense_OnlyDraft() {
	rejected := s.draft()
	rejected.Status = domain.ExpenseRejected
	s.expenseRepo.On("FindExpenseByID", s.ctx, "exp-1").Return(rejected, nil).Once()

	err := s.service.DeleteExpense(s.ctx, s.employee, "exp-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.expenseRepo.AssertNotCalled(s.T(), "DeleteExpense", mock.Anything, mock.Anything)
}
