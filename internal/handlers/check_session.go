package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/chat-forum/internal/middlewares"
	"github.com/sbilibin2017/chat-forum/internal/models"
	"github.com/sbilibin2017/chat-forum/internal/services"
)

//go:generate mockgen -source=check_session.go -destination=check_session_mock.go -package=handlers

// SessionChecker defines the interface that the service must implement.
type SessionChecker interface {
	ValidateSession(ctx context.Context, token string) (*models.SessionUser, error)
}

// NewCheckSessionHandler returns an HTTP handler reporting the current user.
// @Summary Check session
// @Description Returns the logged-in user, or null when there is no valid session.
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.SessionUserResponse "Current user, or null"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /check-session [get]
func NewCheckSessionHandler(svc SessionChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.ValidateSession(r.Context(), middlewares.SessionTokenFromRequest(r))
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, newSessionUserResponse(user))
		case services.IsUnauthenticated(err):
			writeJSON(w, http.StatusOK, nil)
		default:
			writeServiceError(w, r, err)
		}
	}
}

// NewMeHandler returns the user resolved by the auth middleware.
// @Summary Current user
// @Description Guarded endpoint. Answers 401 without a valid session.
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.SessionUserResponse "Current user"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Router /me [get]
func NewMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.SessionUserFromContext(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, newSessionUserResponse(user))
	}
}
