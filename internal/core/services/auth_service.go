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
	"github.com/SscSPs/expense_manager_app/internal/platform/config"
	"github.com/SscSPs/expense_manager_app/internal/utils"
	"github.com/google/uuid"
)

const defaultCompanyCurrency = "USD"

// authService issues access and refresh tokens. Refresh tokens are JWTs signed
// with their own secret; only their SHA256 hash is stored on the user row.
type authService struct {
	BaseService
	cfg         *config.Config
	users       portssvc.UserAuthSvc
	userRepo    portsrepo.UserRepositoryFacade
	companyRepo portsrepo.CompanyRepositoryFacade
}

// NewAuthService creates the signup, login and refresh service.
func NewAuthService(
	cfg *config.Config,
	users portssvc.UserAuthSvc,
	userRepo portsrepo.UserRepositoryFacade,
	companyRepo portsrepo.CompanyRepositoryFacade,
	opts ...ServiceOption,
) portssvc.AuthSvcFacade {
	return &authService{
		BaseService: newBase(opts),
		cfg:         cfg,
		users:       users,
		userRepo:    userRepo,
		companyRepo: companyRepo,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
	}
	user.AuditFields = domain.NewAuditFields(user.UserID, now)

	if req.CompanyID == nil || *req.CompanyID == "" {
		name := strings.TrimSpace(req.CompanyName)
		if name == "" {
			return nil, fmt.Errorf("%w: companyName is required when no companyId is given", apperrors.ErrValidation)
		}
		currency := defaultCompanyCurrency
		if req.DefaultCurrency != "" {
			if currency, err = normalizeCurrency(req.DefaultCurrency); err != nil {
				return nil, err
			}
		}
		company := domain.Company{
			CompanyID:       uuid.NewString(),
			Name:            name,
			DefaultCurrency: currency,
			AuditFields:     domain.NewAuditFields(user.UserID, now),
		}
		user.CompanyID = company.CompanyID
		user.Role = domain.RoleAdmin
		user.IsManagerApprover = true

		if err := s.companyRepo.SaveCompanyWithAdmin(ctx, company, user); err != nil {
			if !errors.Is(err, apperrors.ErrDuplicate) {
				s.LogError(ctx, err, "Failed to create company on signup")
			}
			return nil, err
		}
		s.LogInfo(ctx, "Company created on signup", slog.String("company_id", company.CompanyID))
	} else {
		company, err := s.companyRepo.FindCompanyByID(ctx, *req.CompanyID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: company does not exist", apperrors.ErrValidation)
		}
		if err != nil {
			return nil, err
		}
		user.CompanyID = company.CompanyID
		user.Role = domain.RoleEmployee

		if err := s.userRepo.SaveUser(ctx, user); err != nil {
			if !errors.Is(err, apperrors.ErrDuplicate) {
				s.LogError(ctx, err, "Failed to save user on signup")
			}
			return nil, err
		}
	}

	s.LogInfo(ctx, "User signed up", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return s.issueTokens(ctx, &user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.AuthenticateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh token stops working because its hash is overwritten.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := utils.ParseAndValidateJWT(refreshToken, s.cfg.RefreshTokenSecret)
	if err != nil {
		s.LogDebug(ctx, "Refresh token rejected", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: invalid refresh token", apperrors.ErrUnauthorized)
	}

	user, err := s.userRepo.FindUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", apperrors.ErrUnauthorized)
		}
		return nil, err
	}
	if user.RefreshTokenHash == "" || user.RefreshTokenExpiryTime == nil {
		return nil, fmt.Errorf("%w: invalid refresh token", apperrors.ErrUnauthorized)
	}
	if s.Now().After(*user.RefreshTokenExpiryTime) {
		return nil, fmt.Errorf("%w: refresh token expired", apperrors.ErrUnauthorized)
	}
	if !utils.CompareRefreshTokenHash(refreshToken, user.RefreshTokenHash) {
		s.LogWarn(ctx, "Refresh token mismatch", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("%w: invalid refresh token", apperrors.ErrUnauthorized)
	}
	return s.issueTokens(ctx, user)
}

func (s *authService) issueTokens(ctx context.Context, user *domain.User) (*dto.AuthResponse, error) {
	token, tokenExp, err := utils.GenerateAccessToken(user.UserID, user.Email, string(user.Role), user.CompanyID,
		s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, refreshExp, err := utils.GenerateJWT(user.UserID, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate refresh token", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.userRepo.UpdateRefreshToken(ctx, user.UserID, utils.HashRefreshToken(refresh), refreshExp); err != nil {
		s.LogError(ctx, err, "Failed to store refresh token", slog.String("user_id", user.UserID))
		return nil, err
	}

	return &dto.AuthResponse{
		User:                  dto.ToUserResponse(user),
		Token:                 token,
		TokenExpiresAt:        tokenExp,
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}
