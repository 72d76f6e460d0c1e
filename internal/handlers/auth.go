package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/middleware"
	"github.com/GregMSThompson/kisanmate-backend/internal/response"
)

type authService interface {
	RequestOTP(ctx context.Context, req dto.RequestOTPRequest) (dto.RequestOTPResponse, error)
	VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (dto.VerifyOTPResponse, error)
	ToggleMode(ctx context.Context, sessionID string) (dto.ToggleModeResponse, error)
	Logout(ctx context.Context, uid string) error
}

type authHandlers struct {
	ResponseHandler response.ResponseHandler
	AuthSvc         authService
}

func NewAuthHandlers(deps *Deps) *authHandlers {
	return &authHandlers{
		ResponseHandler: deps.ResponseHandler,
		AuthSvc:         deps.AuthSvc,
	}
}

// AuthRoutes serves the OTP flow. Only logout sits behind requireAuth.
func (h *authHandlers) AuthRoutes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/otp", h.RequestOTP)
	r.Post("/verify", h.VerifyOTP)
	r.Post("/mode", h.ToggleMode)
	r.With(requireAuth).Post("/logout", h.Logout)
	return r
}

func (h *authHandlers) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.AuthSvc.RequestOTP(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *authHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.AuthSvc.VerifyOTP(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *authHandlers) ToggleMode(w http.ResponseWriter, r *http.Request) {
	var req dto.ToggleModeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.AuthSvc.ToggleMode(r.Context(), req.SessionID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.AuthSvc.Logout(r.Context(), uid); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
