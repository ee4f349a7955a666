package models

import (
	"database/sql"
	"time"
)

// User represents a user row. The password hash and token columns never
// appear in JSON output.
type User struct {
	ID              int64          `db:"id" json:"id"`
	FullName        string         `db:"full_name" json:"full_name"`
	Username        string         `db:"username" json:"username"`
	Email           string         `db:"email" json:"email"`
	PasswordHash    string         `db:"password_hash" json:"-"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	Token           sql.NullString `db:"token" json:"-"`
	TokenExpiration sql.NullTime   `db:"token_expiration" json:"-"`
}

// RegisterRequest defines the structure for a user registration request.
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,min=1,max=100"`
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// UpdateUserRequest enumerates the fields a user may change on their own
// profile. Absent fields are left untouched.
type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Username *string `json:"username" validate:"omitempty,min=3,max=30"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// TokenResponse defines the structure for a successful token issuance.
type TokenResponse struct {
	Token           string    `json:"token"`
	TokenExpiration time.Time `json:"tokenExpiration"`
}
