package dto

import (
	"time"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
)

// CreateUserRequest defines the data an admin supplies to add a user to their company.
type CreateUserRequest struct {
	Name      string  `json:"name" binding:"required,max=200"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	Role      string  `json:"role" binding:"required,oneof=EMPLOYEE MANAGER ADMIN"`
	ManagerID *string `json:"managerId"`
}

// UpdateUserRequest defines the data allowed for updating a user.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateUserRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=200"`
	Role      *string `json:"role" binding:"omitempty,oneof=EMPLOYEE MANAGER ADMIN"`
	ManagerID *string `json:"managerId"` // Empty string clears the manager
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID                string    `json:"id"`
	CompanyID         string    `json:"companyId"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	ManagerID         *string   `json:"managerId"`
	IsManagerApprover bool      `json:"isManagerApprover"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain user to its public view.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                u.UserID,
		CompanyID:         u.CompanyID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              string(u.Role),
		ManagerID:         u.ManagerID,
		IsManagerApprover: u.IsManagerApprover,
		CreatedAt:         u.CreatedAt,
	}
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Data  []UserResponse `json:"data"`
	Total int            `json:"total"`
}

// ToListUserResponse converts a slice of domain.User to ListUsersResponse DTO
func ToListUserResponse(users []domain.User) ListUsersResponse {
	userResponses := make([]UserResponse, len(users))
	for i := range users {
		userResponses[i] = ToUserResponse(&users[i])
	}
	return ListUsersResponse{Data: userResponses, Total: len(userResponses)}
}
