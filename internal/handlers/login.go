package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/chat-forum/internal/models"
)

//go:generate mockgen -source=login.go -destination=login_mock.go -package=handlers

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, username, password string) (string, *models.SessionUser, error)
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Username
	// required: true
	// default: john_doe
	Name string `json:"name" validate:"required,max=50"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password" validate:"required,max=72"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	// Username
	// default: john_doe
	Name string `json:"name"`

	// User id
	UserID uuid.UUID `json:"user_id"`

	// Status
	// default: success
	Status string `json:"status"`
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Authenticates the user and sets the http-only session cookie. Unknown users and wrong passwords get the same answer.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "Login Request"
// @Success 200 {object} handlers.LoginResponse "Logged in, session cookie set"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request body"
// @Failure 401 {object} handlers.ErrorResponse "Invalid username or password"
// @Failure 500 {object} handlers.ErrorResponse "System error"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /login [post]
func NewLoginHandler(svc Loginer, cookie CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if msg, ok := decodeRequest(r, &req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		token, user, err := svc.Login(r.Context(), req.Name, req.Password)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		setSessionCookie(w, token, cookie)
		writeJSON(w, http.StatusOK, LoginResponse{
			Name:   user.Username,
			UserID: user.UserID,
			Status: "success",
		})
	}
}
