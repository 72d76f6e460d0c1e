package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/pkg/helpers"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

func newTestHandler() *responseHandler {
	return New(logger.New("", logger.NewTestHandler))
}

func TestHandleErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"validation", errs.NewValidationError("Enter valid number"), http.StatusBadRequest, "invalid_input", "Enter valid number"},
		{"auth", errs.NewAuthenticationError("Invalid OTP"), http.StatusUnauthorized, "unauthorized", "Invalid OTP"},
		{"not found", errs.NewNotFoundError("profile not found"), http.StatusNotFound, "not_found", "profile not found"},
		{"signup", errs.NewSignupRequiredError("Please create account first"), http.StatusConflict, "signup_required", "Please create account first"},
		{"exists", errs.NewAlreadyExistsError("profile already exists"), http.StatusConflict, "already_exists", "profile already exists"},
		{"expired", errs.NewExpiredError("OTP expired"), http.StatusGone, "expired", "OTP expired"},
		{"locked", errs.NewTooManyAttemptsError("Too many attempts"), http.StatusTooManyRequests, "too_many_attempts", "Too many attempts"},
		{"database", errs.NewDatabaseError("read", "failed", errors.New("boom")), http.StatusInternalServerError, "internal_error", "An error occurred"},
		{"encryption", errs.NewEncryptionError("failed", nil), http.StatusInternalServerError, "internal_error", "An error occurred"},
		{"external", errs.NewExternalServiceError("sms", "down", false, nil), http.StatusBadGateway, "service_unavailable", "Service temporarily unavailable"},
		{"transient", errs.NewExternalServiceError("sms", "busy", true, nil), http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error", "An unexpected error occurred"},
	}

	h := newTestHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
			rr := httptest.NewRecorder()

			h.HandleError(rr, r, tt.err)

			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tt.code || body.Message != tt.msg {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}

func TestWriteSuccessEnvelope(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	h.WriteSuccess(rr, r, http.StatusCreated, map[string]string{"id": "tx-1"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Body.String(); got != "{\"success\":true,\"data\":{\"id\":\"tx-1\"}}\n" {
		t.Fatalf("body = %q", got)
	}
}
