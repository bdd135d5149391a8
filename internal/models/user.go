package models

import "database/sql"

// User is a row of the users table.
type User struct {
	UserID            string  `db:"user_id"`
	CompanyID         string  `db:"company_id"`
	Name              string  `db:"name"`
	Email             string  `db:"email"`
	PasswordHash      string  `db:"password_hash"`
	Role              string  `db:"role"`
	ManagerID         *string `db:"manager_id"`
	IsManagerApprover bool    `db:"is_manager_approver"`
	AuditFields

	// Refresh Token Fields
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`
	RefreshTokenExpiryTime sql.NullTime   `db:"refresh_token_expiry_time"`
}
