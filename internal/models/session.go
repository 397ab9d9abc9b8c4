package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionUser is the result of joining a session with its owner.
type SessionUser struct {
	Username  string    `db:"username"`
	UserID    uuid.UUID `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// ExpiredAt reports whether the session is expired at now for the given ttl.
// A session whose age equals ttl exactly is expired.
func (s SessionUser) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) >= ttl
}
