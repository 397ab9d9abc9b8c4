package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/chat-forum/internal/middlewares"
)

//go:generate mockgen -source=logout.go -destination=logout_mock.go -package=handlers

// Logouter defines the interface that the service must implement.
type Logouter interface {
	Logout(ctx context.Context, token string)
}

// LogoutResponse represents a logout response
// swagger:model LogoutResponse
type LogoutResponse struct {
	// Status
	// default: success
	Status string `json:"status"`

	// Message
	// default: Logged out
	Message string `json:"message"`
}

// NewLogoutHandler returns an HTTP handler that ends the current session.
// @Summary Logout
// @Description Deletes the session behind the cookie, if any, and clears the cookie. Always succeeds.
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.LogoutResponse "Logged out"
// @Router /logout [post]
func NewLogoutHandler(svc Logouter, cookie CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Logout(r.Context(), middlewares.SessionTokenFromRequest(r))

		clearSessionCookie(w, cookie)
		writeJSON(w, http.StatusOK, LogoutResponse{
			Status:  "success",
			Message: "Logged out",
		})
	}
}
