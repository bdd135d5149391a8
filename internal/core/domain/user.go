package domain

import "time"

// UserRole is the company-wide role of a user.
type UserRole string

const (
	RoleEmployee UserRole = "EMPLOYEE"
	RoleManager  UserRole = "MANAGER"
	RoleAdmin    UserRole = "ADMIN"
)

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanApprove reports whether users with this role are approvers by default.
func (r UserRole) CanApprove() bool {
	return r == RoleManager || r == RoleAdmin
}

// User represents a user of the application in the domain.
type User struct {
	UserID            string   `json:"id"` // Primary Key (UUID)
	CompanyID         string   `json:"companyId"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	PasswordHash      string   `json:"-"`
	Role              UserRole `json:"role"`
	ManagerID         *string  `json:"managerId,omitempty"` // Direct manager, first approver on submit
	IsManagerApprover bool     `json:"isManagerApprover"`
	AuditFields

	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}

// HasManager reports whether the user has a direct manager to route submissions to.
func (u User) HasManager() bool {
	return u.ManagerID != nil && *u.ManagerID != ""
}

// Principal is the authenticated caller as resolved by the auth middleware.
type Principal struct {
	UserID    string
	Role      UserRole
	CompanyID string
}

// HasRole reports whether the principal holds any of the given roles.
func (p Principal) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
