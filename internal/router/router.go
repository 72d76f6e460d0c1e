package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/GregMSThompson/kisanmate-backend/internal/handlers"
	"github.com/GregMSThompson/kisanmate-backend/internal/middleware"
)

type Options struct {
	Auth        *middleware.Middleware
	CORSOrigins []string
}

func NewRouter(deps *handlers.Deps, opts Options) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimiddleware.RequestID)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{chimiddleware.RequestIDHeader},
		MaxAge:         300,
	}))

	ah := handlers.NewAuthHandlers(deps)
	th := handlers.NewTransactionHandlers(deps)
	vh := handlers.NewViewHandlers(deps)
	uh := handlers.NewUserHandlers(deps)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		deps.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	// public
	r.Mount("/auth", ah.AuthRoutes(opts.Auth.FirebaseAuth))
	r.With(opts.Auth.OptionalAuth).Get("/session", vh.Session)

	// signed in
	r.Group(func(r chi.Router) {
		r.Use(opts.Auth.FirebaseAuth)
		r.Mount("/transactions", th.TransactionRoutes())
		r.Mount("/profile", uh.ProfileRoutes())
		r.Get("/dashboard", vh.Dashboard)
		r.Get("/reports", vh.Reports)
		r.Get("/ledger", vh.Ledger)
	})

	return r
}
