package services

import "time"

// SetClock replaces the service clock in tests.
func (svc *AuthService) SetClock(now func() time.Time) {
	svc.now = now
}
