package handlers

import (
	"context"
	"net/http"
)

//go:generate mockgen -source=check_code.go -destination=check_code_mock.go -package=handlers

// CodeChecker defines the interface that the service must implement.
type CodeChecker interface {
	CheckCode(ctx context.Context, email, code string) error
}

// CheckCodeRequest represents the JSON body for probing a verification code
// swagger:model CheckCodeRequest
type CheckCodeRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email" validate:"required,email,max=255"`

	// Verification code
	// required: true
	// default: 012345
	Code string `json:"code" validate:"required,max=16"`
}

// CheckCodeResponse represents a valid code
// swagger:model CheckCodeResponse
type CheckCodeResponse struct {
	// Success message
	// default: Verification succeeded
	Message string `json:"message"`

	// Status
	// default: ok
	Status string `json:"status"`
}

// NewCheckCodeHandler returns an HTTP handler that checks a code without consuming it.
// @Summary Check verification code
// @Description Reports whether the code is valid for the email. The code stays usable for registration.
// @Tags auth
// @Accept json
// @Produce json
// @Param checkCodeRequest body handlers.CheckCodeRequest true "Check code request"
// @Success 200 {object} handlers.CheckCodeResponse "Code is valid"
// @Failure 400 {object} handlers.ErrorResponse "Invalid or expired code"
// @Failure 429 {object} handlers.ErrorResponse "Too many requests"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /check-code [post]
func NewCheckCodeHandler(svc CodeChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CheckCodeRequest
		if msg, ok := decodeRequest(r, &req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		if err := svc.CheckCode(r.Context(), req.Email, req.Code); err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, CheckCodeResponse{
			Message: "Verification succeeded",
			Status:  "ok",
		})
	}
}
