package dto

import "time"

// SignupRequest registers a user. Without a companyId a new company named
// CompanyName is created and the user becomes its admin; otherwise the user
// joins the company as an employee.
type SignupRequest struct {
	Name            string  `json:"name" binding:"required,max=200"`
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=8"`
	CompanyID       *string `json:"companyId"`
	CompanyName     string  `json:"companyName" binding:"required_without=CompanyID,max=200"`
	DefaultCurrency string  `json:"defaultCurrency" binding:"omitempty,len=3,alpha"`
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest carries a refresh token to exchange.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResponse is returned by signup, login and refresh.
type AuthResponse struct {
	User                  UserResponse `json:"user"`
	Token                 string       `json:"token"`
	TokenExpiresAt        time.Time    `json:"tokenExpiresAt"`
	RefreshToken          string       `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time    `json:"refreshTokenExpiresAt"`
}
