package services

import (
	"context"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	"github.com/SscSPs/expense_manager_app/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListCompanyUsers retrieves all users of the caller's company.
	ListCompanyUsers(ctx context.Context, caller domain.Principal) ([]domain.User, error)
}

// UserWriterSvc defines admin write operations for user data
type UserWriterSvc interface {
	// CreateUser adds a user to the caller's company.
	CreateUser(ctx context.Context, caller domain.Principal, req dto.CreateUserRequest) (*domain.User, error)

	// UpdateUser changes a user's name, role or manager.
	UpdateUser(ctx context.Context, caller domain.Principal, userID string, req dto.UpdateUserRequest) (*domain.User, error)
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with email and password.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAuthSvc
}

// AuthSvcFacade issues and refreshes tokens
type AuthSvcFacade interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
}

// CompanySvcFacade defines read access to the caller's company
type CompanySvcFacade interface {
	GetCompany(ctx context.Context, caller domain.Principal, companyID string) (*domain.Company, error)
}
