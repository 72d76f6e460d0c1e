package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/kisanmate-backend/internal/dto"
	"github.com/GregMSThompson/kisanmate-backend/internal/middleware"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/internal/response"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

type transactionService interface {
	Add(ctx context.Context, uid string, req dto.CreateTransactionRequest) (*models.Transaction, error)
	List(ctx context.Context, uid string) ([]models.Transaction, error)
}

type transactionHandlers struct {
	ResponseHandler response.ResponseHandler
	TransactionSvc  transactionService
	ViewSvc         viewService
}

func NewTransactionHandlers(deps *Deps) *transactionHandlers {
	return &transactionHandlers{
		ResponseHandler: deps.ResponseHandler,
		TransactionSvc:  deps.TransactionSvc,
		ViewSvc:         deps.ViewSvc,
	}
}

func (h *transactionHandlers) TransactionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.AddTransaction)
	r.Get("/", h.ListTransactions)
	r.Get("/stream", h.StreamView)
	return r
}

func (h *transactionHandlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	tx, err := h.TransactionSvc.Add(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, tx)
}

func (h *transactionHandlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	txs, err := h.TransactionSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, txs)
}

// StreamView pushes the selected view as server-sent events, one per ledger
// change, until the client disconnects. The stream is opened on the first
// snapshot so that bad parameters still get a plain JSON error.
func (h *transactionHandlers) StreamView(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	tab := models.Tab(r.URL.Query().Get("view"))
	if tab == "" {
		tab = models.TabHome
	}
	q, err := parseReportQuery(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	var events response.EventWriter
	err = h.ViewSvc.WatchView(r.Context(), uid, tab, q, func(view any) error {
		if events == nil {
			ew, err := h.ResponseHandler.OpenStream(w, r)
			if err != nil {
				return err
			}
			events = ew
		}
		return events.Send(string(tab), view)
	})
	if err == nil {
		return
	}
	if events == nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Warn("live view stream ended", "error", err)
	_ = events.Send("error", response.ErrorResponse{
		Code:    "stream_failed",
		Message: "Live updates stopped, reconnect to resume",
	})
}
