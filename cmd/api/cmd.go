package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // distroless has no zoneinfo

	"github.com/robfig/cron/v3"

	"github.com/GregMSThompson/kisanmate-backend/internal/bootstrap"
	identityclient "github.com/GregMSThompson/kisanmate-backend/internal/client/identity"
	smsclient "github.com/GregMSThompson/kisanmate-backend/internal/client/sms"
	"github.com/GregMSThompson/kisanmate-backend/internal/config"
	"github.com/GregMSThompson/kisanmate-backend/internal/crypto"
	"github.com/GregMSThompson/kisanmate-backend/internal/handlers"
	"github.com/GregMSThompson/kisanmate-backend/internal/middleware"
	"github.com/GregMSThompson/kisanmate-backend/internal/response"
	"github.com/GregMSThompson/kisanmate-backend/internal/router"
	"github.com/GregMSThompson/kisanmate-backend/internal/services"
	"github.com/GregMSThompson/kisanmate-backend/internal/store"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// helpers
	cipher := crypto.ForKey(bs.KMS, cfg.KMSKeyName)
	if cfg.KMSKeyName == "" {
		bs.Log.Warn("KMSKEYNAME not set, phone numbers in verification sessions are stored unencrypted")
	}
	sms := smsclient.New(cfg.SMSGatewayURL, bs.SMSAPIKey, cfg.SMSSenderID)
	if cfg.SMSGatewayURL == "" {
		bs.Log.Warn("SMSGATEWAYURL not set, OTP codes are logged instead of sent")
	}

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	tstore := store.NewTransactionStore(bs.Firestore)
	vstore := store.NewVerificationStore(bs.Firestore)

	// services
	authserv := services.NewAuthService(vstore, ustore, identityclient.NewAdapter(bs.Firebase), sms, cipher, services.AuthConfig{
		CountryCode:    cfg.CountryCode,
		OTPTTL:         cfg.OTPTTL,
		MaxAttempts:    cfg.OTPMaxAttempts,
		ResendInterval: cfg.OTPResend,
	})
	userv := services.NewUserService(ustore)
	txserv := services.NewTransactionService(tstore)
	vserv := services.NewViewService(ustore, tstore, cfg.Location())
	sweeper := services.NewSweeperService(vstore)

	// scheduled jobs
	c := cron.New()
	_, err = sweeper.Schedule(logger.ToContext(ctx, bs.Log.With("job", "session_sweep")), c, cfg.SweepSchedule)
	exitOnError("failed to schedule session sweep", err, bs.Log)
	c.Start()
	defer c.Stop()

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.AuthSvc = authserv
	deps.UserSvc = userv
	deps.TransactionSvc = txserv
	deps.ViewSvc = vserv

	// router
	r := router.NewRouter(deps, router.Options{
		Auth:        middleware.NewMiddleware(bs.Firebase, rh),
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			bs.Log.Error("server shutdown failed", "error", err)
		}
	}()

	bs.Log.Info("server listening", "port", cfg.Port)
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	exitOnError("server start failed", err, bs.Log)
}
