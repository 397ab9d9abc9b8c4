package handlers

import (
	"context"
	"net/http"
)

//go:generate mockgen -source=send_code.go -destination=send_code_mock.go -package=handlers

// CodeSender defines the interface that the service must implement.
type CodeSender interface {
	SendCode(ctx context.Context, email string) error
}

// SendCodeRequest represents the JSON body for requesting a verification code
// swagger:model SendCodeRequest
type SendCodeRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email" validate:"required,email,max=255"`
}

// SendCodeResponse represents a successful code request
// swagger:model SendCodeResponse
type SendCodeResponse struct {
	// Success message
	// default: Verification code sent
	Message string `json:"message"`
}

// NewSendCodeHandler returns an HTTP handler that emails a verification code.
// @Summary Send verification code
// @Description Issues a 6 digit code for an unregistered email and sends it asynchronously. The code expires after 10 minutes.
// @Tags auth
// @Accept json
// @Produce json
// @Param sendCodeRequest body handlers.SendCodeRequest true "Send code request"
// @Success 200 {object} handlers.SendCodeResponse "Code issued"
// @Failure 400 {object} handlers.ErrorResponse "Email already registered / invalid request"
// @Failure 429 {object} handlers.ErrorResponse "Too many requests"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /send-code [post]
func NewSendCodeHandler(svc CodeSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendCodeRequest
		if msg, ok := decodeRequest(r, &req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		if err := svc.SendCode(r.Context(), req.Email); err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, SendCodeResponse{
			Message: "Verification code sent",
		})
	}
}
