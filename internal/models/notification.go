package models

import "time"

// Notification kinds.
const (
	NotificationVerificationCode = "verification_code"
)

// Notification is an outbound message handed to a Notifier.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresIn int64     `json:"expires_in_seconds"`
	CreatedAt time.Time `json:"created_at"`
	RequestID string    `json:"request_id,omitempty"`
}
