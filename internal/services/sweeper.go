package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

type expiredSessionStore interface {
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

type sweeperService struct {
	sessions expiredSessionStore
	now      func() time.Time
}

func NewSweeperService(sessions expiredSessionStore) *sweeperService {
	return &sweeperService{
		sessions: sessions,
		now:      time.Now,
	}
}

// Sweep deletes verification sessions whose code has expired. Firestore's
// TTL policy removes them eventually; this keeps the collection small when
// the policy lags.
func (s *sweeperService) Sweep(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		log.Error("failed to sweep verification sessions", "error", err)
		return n, err
	}
	if n > 0 {
		log.Info("expired verification sessions removed", "count", n)
	}
	return n, nil
}

// Schedule registers Sweep on c using a standard cron spec or descriptor
// such as "@every 15m". Each run gets its own timeout derived from ctx.
func (s *sweeperService) Schedule(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		_, _ = s.Sweep(runCtx)
	})
}
