package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

//go:generate mockgen -source=register.go -destination=register_mock.go -package=handlers

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password, email, code string) (uuid.UUID, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// default: john_doe
	Username string `json:"username" validate:"required,max=50"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password" validate:"required,maxbytes=72"`

	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email" validate:"required,email,max=255"`

	// Verification code from send-code
	// required: true
	// default: 012345
	Code string `json:"code" validate:"required,max=16"`
}

// RegisterResponse represents a successful registration response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// Status
	// default: success
	Status string `json:"status"`

	// New user id
	UserID uuid.UUID `json:"user_id"`

	// Success message
	// default: Registration successful
	Message string `json:"message"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a user after checking the email verification code. Username and email must be unique. The code is consumed on success.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 200 {object} handlers.RegisterResponse "User successfully registered"
// @Failure 400 {object} handlers.ErrorResponse "Invalid code / username taken / email taken / invalid request"
// @Failure 429 {object} handlers.ErrorResponse "Too many requests"
// @Failure 500 {object} handlers.ErrorResponse "Registration failed"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if msg, ok := decodeRequest(r, &req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		userID, err := svc.Register(r.Context(), req.Username, req.Password, req.Email, req.Code)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, RegisterResponse{
			Status:  "success",
			UserID:  userID,
			Message: "Registration successful",
		})
	}
}
