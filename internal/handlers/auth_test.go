package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/internal/middleware"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
)

type stubAuthService struct {
	otpReq    dto.RequestOTPRequest
	verifyReq dto.VerifyOTPRequest
	toggleID  string
	logoutUID string
	calls     int
	err       error
}

func (s *stubAuthService) RequestOTP(_ context.Context, req dto.RequestOTPRequest) (dto.RequestOTPResponse, error) {
	s.calls++
	s.otpReq = req
	return dto.RequestOTPResponse{SessionID: "sess-1", Status: models.AuthOTPRequested}, s.err
}

func (s *stubAuthService) VerifyOTP(_ context.Context, req dto.VerifyOTPRequest) (dto.VerifyOTPResponse, error) {
	s.calls++
	s.verifyReq = req
	return dto.VerifyOTPResponse{Token: "tok", UID: "uid-1"}, s.err
}

func (s *stubAuthService) ToggleMode(_ context.Context, sessionID string) (dto.ToggleModeResponse, error) {
	s.calls++
	s.toggleID = sessionID
	return dto.ToggleModeResponse{SessionID: sessionID, Mode: models.AuthModeLogin}, s.err
}

func (s *stubAuthService) Logout(_ context.Context, uid string) error {
	s.calls++
	s.logoutUID = uid
	return s.err
}

func TestRequestOTPHandler(t *testing.T) {
	svc := &stubAuthService{}
	resp := &stubResponseHandler{}
	h := NewAuthHandlers(&Deps{ResponseHandler: resp, AuthSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/auth/otp", strings.NewReader(`{"phone":"9876543210","mode":"login"}`))
	rr := httptest.NewRecorder()
	h.RequestOTP(rr, req)

	if svc.otpReq.Phone != "9876543210" || svc.otpReq.Mode != models.AuthModeLogin {
		t.Fatalf("service received %+v", svc.otpReq)
	}
	if resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("status = %d", resp.writeSuccessStatus)
	}
	if got := resp.writeSuccessData.(dto.RequestOTPResponse); got.SessionID != "sess-1" {
		t.Fatalf("unexpected data: %+v", got)
	}
}

func TestRequestOTPHandlerEmptyBody(t *testing.T) {
	svc := &stubAuthService{}
	resp := &stubResponseHandler{}
	h := NewAuthHandlers(&Deps{ResponseHandler: resp, AuthSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/auth/otp", strings.NewReader(""))
	rr := httptest.NewRecorder()
	h.RequestOTP(rr, req)

	if svc.calls != 0 {
		t.Fatalf("service should not be called")
	}
	var vErr *errs.ValidationError
	if !errors.As(resp.handleError, &vErr) {
		t.Fatalf("expected validation error, got %v", resp.handleError)
	}
}

func TestVerifyOTPHandlerSignupRequired(t *testing.T) {
	svc := &stubAuthService{err: errs.NewSignupRequiredError("Please create account first")}
	resp := &stubResponseHandler{}
	h := NewAuthHandlers(&Deps{ResponseHandler: resp, AuthSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/auth/verify", strings.NewReader(`{"sessionId":"sess-1","code":"123456"}`))
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, req)

	if svc.verifyReq.SessionID != "sess-1" || svc.verifyReq.Code != "123456" {
		t.Fatalf("service received %+v", svc.verifyReq)
	}
	if !errors.Is(resp.handleError, svc.err) || resp.writeSuccessCalled {
		t.Fatalf("expected error delegation, got %v", resp.handleError)
	}
}

func TestToggleModeHandler(t *testing.T) {
	svc := &stubAuthService{}
	resp := &stubResponseHandler{}
	h := NewAuthHandlers(&Deps{ResponseHandler: resp, AuthSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/auth/mode", strings.NewReader(`{"sessionId":"sess-9"}`))
	rr := httptest.NewRecorder()
	h.ToggleMode(rr, req)

	if svc.toggleID != "sess-9" || !resp.writeSuccessCalled {
		t.Fatalf("toggle not forwarded: %q", svc.toggleID)
	}
}

func TestLogoutRequiresAuthOnRouter(t *testing.T) {
	svc := &stubAuthService{}
	resp := &stubResponseHandler{}
	h := NewAuthHandlers(&Deps{ResponseHandler: resp, AuthSvc: svc})

	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	routes := h.AuthRoutes(deny)

	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if rr.Code != http.StatusUnauthorized || svc.calls != 0 {
		t.Fatalf("logout reachable without auth: status=%d", rr.Code)
	}

	rr = httptest.NewRecorder()
	routes.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/otp", strings.NewReader(`{"phone":"9876543210"}`)))
	if svc.calls != 1 {
		t.Fatalf("otp route should be public")
	}
}

func TestLogoutHandler(t *testing.T) {
	svc := &stubAuthService{}
	resp := &stubResponseHandler{}
	h := NewAuthHandlers(&Deps{ResponseHandler: resp, AuthSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UIDKey, "uid-7"))
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	if svc.logoutUID != "uid-7" || !resp.writeSuccessCalled {
		t.Fatalf("logout not forwarded: %q", svc.logoutUID)
	}
}
