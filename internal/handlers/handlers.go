// Package handlers maps HTTP requests to the auth services.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sbilibin2017/chat-forum/internal/logger"
	"github.com/sbilibin2017/chat-forum/internal/models"
	"github.com/sbilibin2017/chat-forum/internal/services"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// maxbytes bounds the UTF-8 byte length of a string.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// ErrorResponse is the body of every failed request
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Invalid or expired verification code
	Error string `json:"error"`
}

// SessionUserResponse identifies the logged-in user
// swagger:model SessionUserResponse
type SessionUserResponse struct {
	// Username
	// default: john_doe
	Name string `json:"name"`

	// User id
	UserID uuid.UUID `json:"user_id"`
}

func newSessionUserResponse(u *models.SessionUser) SessionUserResponse {
	return SessionUserResponse{Name: u.Username, UserID: u.UserID}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeRequest reads a JSON body into dst and validates it. The returned
// message is safe to show to the client.
func decodeRequest(r *http.Request, dst any) (string, bool) {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return "Invalid request body", false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return "Invalid field: " + verrs[0].Field(), false
		}
		return "Invalid request body", false
	}

	return "", true
}

// writeServiceError translates a service error to a status code and a public
// message. Internal details are only logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch {
	case errors.Is(err, services.ErrInvalidOrExpiredCode):
		writeError(w, http.StatusBadRequest, "Invalid or expired verification code")
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username is already taken")
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email is already registered")
	case errors.Is(err, services.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, "Invalid field: password")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case services.IsUnauthenticated(err):
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, services.ErrStoreUnavailable):
		log.Errorw("store unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable, please try again later")
	case errors.Is(err, services.ErrRegistrationFailed):
		log.Errorw("registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
	case errors.Is(err, services.ErrSystem):
		log.Errorw("system error", "error", err)
		writeError(w, http.StatusInternalServerError, "System error, please try again later")
	default:
		log.Errorw("internal server error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
