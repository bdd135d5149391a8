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
	"github.com/SscSPs/expense_manager_app/internal/platform/config"
	"github.com/SscSPs/expense_manager_app/internal/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	cfg         *config.Config
	userRepo    *MockUserRepository
	companyRepo *MockCompanyRepository
	service     portssvc.AuthSvcFacade
	ctx         context.Context
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.cfg = &config.Config{
		JWTSecret:                  "access-secret-for-tests",
		JWTExpiryDuration:          time.Hour,
		JWTIssuer:                  "expense-manager-test",
		RefreshTokenSecret:         "refresh-secret-for-tests",
		RefreshTokenExpiryDuration: 24 * time.Hour,
	}
	s.userRepo = new(MockUserRepository)
	s.companyRepo = new(MockCompanyRepository)
	users := services.NewUserService(s.userRepo)
	s.service = services.NewAuthService(s.cfg, users, s.userRepo, s.companyRepo)
	s.ctx = context.Background()
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) TestSignup_NewCompanyMakesAdmin() {
	s.companyRepo.On("SaveCompanyWithAdmin", s.ctx,
		mock.MatchedBy(func(c domain.Company) bool {
			return c.Name == "Acme" && c.DefaultCurrency == "EUR" && c.CompanyID != ""
		}),
		mock.MatchedBy(func(u domain.User) bool {
			return u.Role == domain.RoleAdmin &&
				u.IsManagerApprover &&
				u.Email == "ada@acme.test" &&
				utils.CheckPasswordHash("correct-horse", u.PasswordHash)
		}),
	).Return(nil).Once()
	s.userRepo.On("UpdateRefreshToken", s.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := s.service.Signup(s.ctx, dto.SignupRequest{
		Name:            "Ada",
		Email:           "Ada@Acme.test",
		Password:        "correct-horse",
		CompanyName:     "Acme",
		DefaultCurrency: "eur",
	})

	s.Require().NoError(err)
	s.Equal("ADMIN", resp.User.Role)
	claims, err := utils.ParseAccessToken(resp.Token, s.cfg.JWTSecret)
	s.Require().NoError(err)
	s.Equal(resp.User.ID, claims.Subject)
	s.Equal(resp.User.CompanyID, claims.CompanyID)
	s.Equal("ADMIN", claims.Role)
	s.NotEmpty(resp.RefreshToken)
	s.companyRepo.AssertExpectations(s.T())
	s.userRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestSignup_JoinExistingCompanyAsEmployee() {
	s.companyRepo.On("FindCompanyByID", s.ctx, "co-1").Return(&domain.Company{CompanyID: "co-1", DefaultCurrency: "USD"}, nil).Once()
	s.userRepo.On("SaveUser", s.ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleEmployee && u.CompanyID == "co-1" && !u.IsManagerApprover && u.ManagerID == nil
	})).Return(nil).Once()
	s.userRepo.On("UpdateRefreshToken", s.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := s.service.Signup(s.ctx, dto.SignupRequest{
		Name:      "Bob",
		Email:     "bob@acme.test",
		Password:  "correct-horse",
		CompanyID: strPtr("co-1"),
	})

	s.Require().NoError(err)
	s.Equal("EMPLOYEE", resp.User.Role)
	s.userRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestSignup_UnknownCompany() {
	s.companyRepo.On("FindCompanyByID", s.ctx, "nope").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.Signup(s.ctx, dto.SignupRequest{
		Name:      "Bob",
		Email:     "bob@acme.test",
		Password:  "correct-horse",
		CompanyID: strPtr("nope"),
	})

	s.ErrorIs(err, apperrors.ErrValidation)
	s.userRepo.AssertNotCalled(s.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	hash, err := utils.HashPassword("correct-horse")
	s.Require().NoError(err)
	s.userRepo.On("FindUserByEmail", s.ctx, "ada@acme.test").Return(&domain.User{UserID: "u-1", PasswordHash: hash}, nil).Once()

	_, err = s.service.Login(s.ctx, dto.LoginRequest{Email: "ada@acme.test", Password: "battery-staple"})

	s.ErrorIs(err, apperrors.ErrUnauthorized)
	s.userRepo.AssertNotCalled(s.T(), "UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	s.userRepo.On("FindUserByEmail", s.ctx, "who@acme.test").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.Login(s.ctx, dto.LoginRequest{Email: "who@acme.test", Password: "whatever1"})

	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *AuthServiceTestSuite) TestRefresh_RotatesTokens() {
	hash, err := utils.HashPassword("correct-horse")
	s.Require().NoError(err)
	user := &domain.User{UserID: "u-1", CompanyID: "co-1", Email: "ada@acme.test", Role: domain.RoleManager, PasswordHash: hash}
	s.userRepo.On("FindUserByEmail", s.ctx, "ada@acme.test").Return(user, nil).Once()

	var storedHash string
	var storedExpiry time.Time
	s.userRepo.On("UpdateRefreshToken", s.ctx, "u-1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			storedHash = args.String(2)
			storedExpiry = args.Get(3).(time.Time)
		}).Return(nil).Twice()

	login, err := s.service.Login(s.ctx, dto.LoginRequest{Email: "ada@acme.test", Password: "correct-horse"})
	s.Require().NoError(err)
	s.Equal(utils.HashRefreshToken(login.RefreshToken), storedHash)

	refreshed := *user
	refreshed.RefreshTokenHash = storedHash
	refreshed.RefreshTokenExpiryTime = &storedExpiry
	s.userRepo.On("FindUserByID", s.ctx, "u-1").Return(&refreshed, nil).Once()

	resp, err := s.service.Refresh(s.ctx, login.RefreshToken)

	s.Require().NoError(err)
	s.NotEqual(login.RefreshToken, resp.RefreshToken)
	s.Equal(utils.HashRefreshToken(resp.RefreshToken), storedHash)
	s.Equal("MANAGER", resp.User.Role)
}

func (s *AuthServiceTestSuite) TestRefresh_RejectsAccessToken() {
	access, _, err := utils.GenerateAccessToken("u-1", "ada@acme.test", "ADMIN", "co-1", s.cfg.JWTSecret, time.Hour, s.cfg.JWTIssuer)
	s.Require().NoError(err)

	_, err = s.service.Refresh(s.ctx, access)

	s.ErrorIs(err, apperrors.ErrUnauthorized)
	s.userRepo.AssertNotCalled(s.T(), "FindUserByID", mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestRefresh_RejectsReplacedToken() {
	token, _, err := utils.GenerateJWT("u-1", s.cfg.RefreshTokenSecret, time.Hour, s.cfg.JWTIssuer)
	s.Require().NoError(err)
	expiry := time.Now().Add(time.Hour)
	s.userRepo.On("FindUserByID", s.ctx, "u-1").Return(&domain.User{
		UserID:                 "u-1",
		RefreshTokenHash:       utils.HashRefreshToken("some-newer-token"),
		RefreshTokenExpiryTime: &expiry,
	}, nil).Once()

	_, err = s.service.Refresh(s.ctx, token)

	s.ErrorIs(err, apperrors.ErrUnauthorized)
}
