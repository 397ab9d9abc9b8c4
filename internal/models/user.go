package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID      `json:"user_id" db:"user_id"`       // Primary key
	Username     string         `json:"username" db:"username"`     // Unique username
	Email        sql.NullString `json:"email" db:"email"`           // Optional unique email
	PasswordHash string         `json:"-" db:"password_hash"`       // bcrypt hash, never serialized
	LastLogin    sql.NullTime   `json:"last_login" db:"last_login"` // Set on every successful login
	CreatedAt    time.Time      `json:"created_at" db:"created_at"` // Creation timestamp
}
