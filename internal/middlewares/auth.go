package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/chat-forum/internal/logger"
	"github.com/sbilibin2017/chat-forum/internal/models"
	"github.com/sbilibin2017/chat-forum/internal/services"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=middlewares

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "auth_token"

// SessionValidator resolves a session token to its user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*models.SessionUser, error)
}

type sessionUserKey struct{}

// SessionTokenFromRequest returns the session cookie value, or "" if absent.
func SessionTokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// WithSessionUser stores the authenticated user in ctx.
func WithSessionUser(ctx context.Context, user *models.SessionUser) context.Context {
	return context.WithValue(ctx, sessionUserKey{}, user)
}

// SessionUserFromContext returns the user stored by AuthMiddleware, or nil.
func SessionUserFromContext(ctx context.Context) *models.SessionUser {
	user, _ := ctx.Value(sessionUserKey{}).(*models.SessionUser)
	return user
}

// AuthMiddleware rejects requests without a valid session. Missing, unknown
// and expired sessions all answer 401 with the same body.
func AuthMiddleware(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromContext(ctx)

			user, err := validator.ValidateSession(ctx, SessionTokenFromRequest(r))
			if err != nil {
				switch {
				case services.IsUnauthenticated(err):
					log.Infow("authorization failed", "reason", err)
					writeError(w, http.StatusUnauthorized, "Not authenticated")
				case errors.Is(err, services.ErrStoreUnavailable):
					log.Errorw("authorization failed", "error", err)
					writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable, please try again later")
				default:
					log.Errorw("authorization failed", "error", err)
					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSessionUser(ctx, user)))
		})
	}
}
