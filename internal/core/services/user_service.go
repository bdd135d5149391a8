package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/SscSPs/expense_manager_app/internal/utils"
	"github.com/google/uuid"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates the user management service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, opts ...ServiceOption) portssvc.UserSvcFacade {
	return &userService{
		BaseService: newBase(opts),
		userRepo:    userRepo,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListCompanyUsers(ctx context.Context, caller domain.Principal) ([]domain.User, error) {
	if err := s.RequireRole(ctx, caller, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.userRepo.ListUsersByCompany(ctx, caller.CompanyID)
}

func (s *userService) CreateUser(ctx context.Context, caller domain.Principal, req dto.CreateUserRequest) (*domain.User, error) {
	if err := s.RequireRole(ctx, caller, domain.RoleAdmin); err != nil {
		return nil, err
	}
	role := domain.UserRole(req.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: role must be EMPLOYEE, MANAGER or ADMIN", apperrors.ErrValidation)
	}

	user := domain.User{
		UserID:      uuid.NewString(),
		CompanyID:   caller.CompanyID,
		Name:        strings.TrimSpace(req.Name),
		Email:       normalizeEmail(req.Email),
		Role:        role,
		AuditFields: domain.NewAuditFields(caller.UserID, s.Now()),
	}
	user.IsManagerApprover = role.CanApprove()

	if req.ManagerID != nil && *req.ManagerID != "" {
		if err := s.checkManager(ctx, caller, user.UserID, *req.ManagerID); err != nil {
			return nil, err
		}
		managerID := *req.ManagerID
		user.ManagerID = &managerID
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save user", slog.String("company_id", caller.CompanyID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "User created", slog.String("user_id", user.UserID), slog.String("role", string(role)))
	return &user, nil
}

func (s *userService) UpdateUser(ctx context.Context, caller domain.Principal, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	if err := s.RequireRole(ctx, caller, domain.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.CompanyID != caller.CompanyID {
		return nil, fmt.Errorf("%w: user not found", apperrors.ErrNotFound)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		role := domain.UserRole(*req.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: role must be EMPLOYEE, MANAGER or ADMIN", apperrors.ErrValidation)
		}
		user.Role = role
		user.IsManagerApprover = role.CanApprove()
	}
	if req.ManagerID != nil {
		if *req.ManagerID == "" {
			user.ManagerID = nil
		} else {
			if err := s.checkManager(ctx, caller, user.UserID, *req.ManagerID); err != nil {
				return nil, err
			}
			managerID := *req.ManagerID
			user.ManagerID = &managerID
		}
	}
	user.Touch(caller.UserID, s.Now())

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to update user", slog.String("user_id", userID))
		return nil, err
	}
	return user, nil
}

func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	return user, nil
}

// checkManager ensures managerID names another user of the caller's company.
func (s *userService) checkManager(ctx context.Context, caller domain.Principal, userID, managerID string) error {
	if managerID == userID {
		return fmt.Errorf("%w: a user cannot be their own manager", apperrors.ErrValidation)
	}
	manager, err := s.userRepo.FindUserByID(ctx, managerID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: manager does not exist", apperrors.ErrValidation)
	}
	if err != nil {
		return err
	}
	if manager.CompanyID != caller.CompanyID {
		return fmt.Errorf("%w: manager does not belong to your company", apperrors.ErrValidation)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
