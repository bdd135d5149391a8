package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// expenseService implements portssvc.ExpenseSvcFacade
type expenseService struct {
	BaseService
	expenseRepo portsrepo.ExpenseRepositoryWithTx
	userRepo    portsrepo.UserReader
	companyRepo portsrepo.CompanyRepositoryFacade
	currency    portssvc.CurrencySvcFacade
}

// NewExpenseService creates the expense service.
func NewExpenseService(
	expenseRepo portsrepo.ExpenseRepositoryWithTx,
	userRepo portsrepo.UserReader,
	companyRepo portsrepo.CompanyRepositoryFacade,
	currency portssvc.CurrencySvcFacade,
	opts ...ServiceOption,
) portssvc.ExpenseSvcFacade {
	return &expenseService{
		BaseService: newBase(opts),
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		currency:    currency,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) GetExpense(ctx context.Context, caller domain.Principal, expenseID string) (*domain.Expense, error) {
	exp, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if exp.IsOwnedBy(caller.UserID) || exp.IsCurrentApprover(caller.UserID) {
		return exp, nil
	}
	if caller.Role == domain.RoleAdmin && caller.CompanyID == exp.CompanyID {
		return exp, nil
	}
	return nil, fmt.Errorf("%w: not authorized to view this expense", apperrors.ErrForbidden)
}

func (s *expenseService) ListExpenses(ctx context.Context, caller domain.Principal, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	expenses, err := s.expenseRepo.ListExpensesByUser(ctx, caller.UserID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expenses", slog.String("user_id", caller.UserID))
		return nil, err
	}
	return expenses, nil
}

func (s *expenseService) CreateExpense(ctx context.Context, caller domain.Principal, req dto.CreateExpenseRequest) (*domain.Expense, error) {
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", apperrors.ErrValidation)
	}
	if !req.OriginalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: originalAmount must be greater than zero", apperrors.ErrValidation)
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	exp := domain.Expense{
		ExpenseID:        uuid.NewString(),
		CompanyID:        caller.CompanyID,
		UserID:           caller.UserID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		Date:             req.Date.UTC(),
		Category:         strings.TrimSpace(req.Category),
		OriginalAmount:   req.OriginalAmount,
		OriginalCurrency: strings.ToUpper(req.OriginalCurrency),
		Status:           domain.ExpenseDraft,
		Attachments:      []domain.Attachment{},
		ApprovalHistory:  []domain.ApprovalHistory{},
		AuditFields:      domain.NewAuditFields(caller.UserID, now),
	}
	for i := range lines {
		lines[i].ExpenseID = exp.ExpenseID
	}
	exp.Lines = lines

	if err := s.convert(ctx, &exp); err != nil {
		return nil, err
	}
	s.warnOnLineMismatch(ctx, &exp)

	if err := s.expenseRepo.SaveExpense(ctx, exp); err != nil {
		s.LogError(ctx, err, "Failed to save expense", slog.String("user_id", caller.UserID))
		return nil, err
	}
	s.LogInfo(ctx, "Expense created", slog.String("expense_id", exp.ExpenseID))
	return &exp, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, caller domain.Principal, expenseID string, req dto.UpdateExpenseRequest) (*domain.Expense, error) {
	exp, err := s.ownedExpense(ctx, caller, expenseID, "update")
	if err != nil {
		return nil, err
	}
	if err := exp.EnsureEditable(); err != nil {
		return nil, err
	}

	if req.Title != nil {
		exp.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		exp.Description = *req.Description
	}
	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, fmt.Errorf("%w: date is required", apperrors.ErrValidation)
		}
		exp.Date = req.Date.UTC()
	}
	if req.Category != nil {
		exp.Category = strings.TrimSpace(*req.Category)
	}
	if req.OriginalAmount != nil {
		if !req.OriginalAmount.IsPositive() {
			return nil, fmt.Errorf("%w: originalAmount must be greater than zero", apperrors.ErrValidation)
		}
		exp.OriginalAmount = *req.OriginalAmount
	}
	if req.OriginalCurrency != nil {
		exp.OriginalCurrency = strings.ToUpper(*req.OriginalCurrency)
	}
	if req.Lines != nil {
		lines, err := buildLines(*req.Lines)
		if err != nil {
			return nil, err
		}
		for i := range lines {
			lines[i].ExpenseID = exp.ExpenseID
		}
		exp.Lines = lines
	}

	if err := s.convert(ctx, exp); err != nil {
		return nil, err
	}
	s.warnOnLineMismatch(ctx, exp)

	// A rejected expense goes back to draft once edited
	exp.Status = domain.ExpenseDraft
	exp.CurrentApproverID = nil
	exp.Touch(caller.UserID, s.Now())

	if err := s.expenseRepo.UpdateExpense(ctx, *exp); err != nil {
		s.LogError(ctx, err, "Failed to update expense", slog.String("expense_id", expenseID))
		return nil, err
	}
	return s.expenseRepo.FindExpenseByID(ctx, expenseID)
}

func (s *expenseService) DeleteExpense(ctx context.Context, caller domain.Principal, expenseID string) error {
	exp, err := s.ownedExpense(ctx, caller, expenseID, "delete")
	if err != nil {
		return err
	}
	if err := exp.EnsureDeletable(); err != nil {
		return err
	}
	if err := s.expenseRepo.DeleteExpense(ctx, expenseID); err != nil {
		s.LogError(ctx, err, "Failed to delete expense", slog.String("expense_id", expenseID))
		return err
	}
	s.LogInfo(ctx, "Expense deleted", slog.String("expense_id", expenseID))
	return nil
}

func (s *expenseService) SubmitExpense(ctx context.Context, caller domain.Principal, expenseID string) (*domain.Expense, error) {
	exp, err := s.ownedExpense(ctx, caller, expenseID, "submit")
	if err != nil {
		return nil, err
	}
	if !exp.Status.IsEditable() {
		return nil, fmt.Errorf("%w: only expenses in DRAFT or REJECTED status can be submitted", apperrors.ErrValidation)
	}

	owner, err := s.userRepo.FindUserByID(ctx, exp.UserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load expense owner", slog.String("expense_id", expenseID))
		return nil, err
	}
	if err := exp.Submit(owner.ManagerID, caller.UserID, s.Now()); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.UpdateExpense(ctx, *exp); err != nil {
		s.LogError(ctx, err, "Failed to submit expense", slog.String("expense_id", expenseID))
		return nil, err
	}
	s.LogInfo(ctx, "Expense submitted",
		slog.String("expense_id", expenseID),
		slog.String("approver_id", *exp.CurrentApproverID))
	return s.expenseRepo.FindExpenseByID(ctx, expenseID)
}

// ownedExpense loads an expense and checks the caller owns it.
func (s *expenseService) ownedExpense(ctx context.Context, caller domain.Principal, expenseID, action string) (*domain.Expense, error) {
	exp, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !exp.IsOwnedBy(caller.UserID) {
		return nil, fmt.Errorf("%w: not authorized to %s this expense", apperrors.ErrForbidden, action)
	}
	return exp, nil
}

// convert fills the converted amount in the company's default currency.
func (s *expenseService) convert(ctx context.Context, exp *domain.Expense) error {
	target := exp.OriginalCurrency
	if s.companyRepo != nil {
		company, err := s.companyRepo.FindCompanyByID(ctx, exp.CompanyID)
		if err != nil {
			return err
		}
		if company.DefaultCurrency != "" {
			target = company.DefaultCurrency
		}
	}
	converted, rate, err := s.currency.Convert(ctx, exp.OriginalAmount, exp.OriginalCurrency, target)
	if err != nil {
		return err
	}
	exp.ConvertedAmount = converted
	exp.ExchangeRate = rate
	return nil
}

func (s *expenseService) warnOnLineMismatch(ctx context.Context, exp *domain.Expense) {
	if len(exp.Lines) == 0 {
		return
	}
	if total := exp.LinesTotal(); !total.Equal(exp.OriginalAmount) {
		s.LogWarn(ctx, "Expense lines do not sum to the original amount",
			slog.String("expense_id", exp.ExpenseID),
			slog.String("lines_total", total.String()),
			slog.String("original_amount", exp.OriginalAmount.String()))
	}
}

func buildLines(reqs []dto.ExpenseLineRequest) ([]domain.ExpenseLine, error) {
	lines := make([]domain.ExpenseLine, 0, len(reqs))
	for i, l := range reqs {
		if !l.Amount.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: line %d amount must be greater than zero", apperrors.ErrValidation, i+1)
		}
		lines = append(lines, domain.ExpenseLine{
			LineID:      uuid.NewString(),
			Description: strings.TrimSpace(l.Description),
			Amount:      l.Amount,
		})
	}
	return lines, nil
}
