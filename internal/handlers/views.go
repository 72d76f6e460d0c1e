package handlers

import (
	"context"
	"net/http"

	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/middleware"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/internal/response"
)

type viewService interface {
	Session(ctx context.Context, uid string) (dto.SessionState, error)
	Dashboard(ctx context.Context, uid string) (dto.DashboardView, error)
	Report(ctx context.Context, uid string, q dto.ReportQuery) (dto.ReportView, error)
	Ledger(ctx context.Context, uid string) (dto.LedgerView, error)
	WatchView(ctx context.Context, uid string, tab models.Tab, q dto.ReportQuery, emit func(any) error) error
}

type viewHandlers struct {
	ResponseHandler response.ResponseHandler
	ViewSvc         viewService
}

func NewViewHandlers(deps *Deps) *viewHandlers {
	return &viewHandlers{
		ResponseHandler: deps.ResponseHandler,
		ViewSvc:         deps.ViewSvc,
	}
}

// Session serves the splash screen. The caller may be anonymous.
func (h *viewHandlers) Session(w http.ResponseWriter, r *http.Request) {
	state, err := h.ViewSvc.Session(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, state)
}

func (h *viewHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	view, err := h.ViewSvc.Dashboard(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, view)
}

func (h *viewHandlers) Reports(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	view, err := h.ViewSvc.Report(r.Context(), uid, q)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, view)
}

func (h *viewHandlers) Ledger(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	view, err := h.ViewSvc.Ledger(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, view)
}
