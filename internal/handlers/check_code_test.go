package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/chat-forum/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestCheckCodeHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockCodeChecker)
		expectedCode int
		expectedBody map[string]string
	}{
		{
			name: "valid code",
			body: `{"email":"john@example.com","code":"012345"}`,
			mockSetup: func(m *MockCodeChecker) {
				m.EXPECT().CheckCode(gomock.Any(), "john@example.com", "012345").Return(nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: map[string]string{"message": "Verification succeeded", "status": "ok"},
		},
		{
			name: "invalid or expired code",
			body: `{"email":"john@example.com","code":"999999"}`,
			mockSetup: func(m *MockCodeChecker) {
				m.EXPECT().CheckCode(gomock.Any(), "john@example.com", "999999").Return(services.ErrInvalidOrExpiredCode)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: map[string]string{"error": "Invalid or expired verification code"},
		},
		{
			name:         "missing code",
			body:         `{"email":"john@example.com"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: map[string]string{"error": "Invalid field: code"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockCodeChecker(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/check-code", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			NewCheckCodeHandler(mockSvc)(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			var resp map[string]string
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedBody, resp)
		})
	}
}
