package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

type verificationStore struct {
	client *firestore.Client
}

func NewVerificationStore(client *firestore.Client) *verificationStore {
	return &verificationStore{client: client}
}

func (s *verificationStore) collection() *firestore.CollectionRef {
	return s.client.Collection("verification_sessions")
}

func (s *verificationStore) throttles() *firestore.CollectionRef {
	return s.client.Collection("otp_throttle")
}

func (s *verificationStore) Create(ctx context.Context, session *models.VerificationSession) error {
	_, err := s.collection().Doc(session.SessionID).Create(ctx, session)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to create verification session", err)
	}
	return nil
}

func (s *verificationStore) Get(ctx context.Context, sessionID string) (*models.VerificationSession, error) {
	doc, err := s.collection().Doc(sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("verification session not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get verification session", err)
	}
	var session models.VerificationSession
	if err := doc.DataTo(&session); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse verification session", err)
	}
	return &session, nil
}

// Mutate reads the session, applies fn and writes the result in one
// transaction, so concurrent callers see each other's changes. An error from
// fn aborts without writing and is returned as is. fn may run more than once
// when Firestore retries the transaction.
func (s *verificationStore) Mutate(ctx context.Context, sessionID string, fn func(*models.VerificationSession) error) (*models.VerificationSession, error) {
	ref := s.collection().Doc(sessionID)

	var session models.VerificationSession
	var abort error
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		abort = nil
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				abort = errs.NewNotFoundError("verification session not found")
				return abort
			}
			return err
		}

		session = models.VerificationSession{}
		if err := doc.DataTo(&session); err != nil {
			abort = errs.NewDatabaseError("read", "failed to parse verification session", err)
			return abort
		}
		if err := fn(&session); err != nil {
			abort = err
			return abort
		}
		return tx.Set(ref, &session)
	})
	if abort != nil {
		return nil, abort
	}
	if err != nil {
		return nil, errs.NewDatabaseError("update", "failed to update verification session", err)
	}
	return &session, nil
}

// ReserveSend claims the right to text key for window. It fails with
// TooManyAttemptsError while an earlier claim is still open.
func (s *verificationStore) ReserveSend(ctx context.Context, key string, now time.Time, window time.Duration) error {
	ref := s.throttles().Doc(key)

	var abort error
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		abort = nil
		doc, err := tx.Get(ref)
		switch {
		case err == nil:
			var t models.OTPThrottle
			if err := doc.DataTo(&t); err != nil {
				abort = errs.NewDatabaseError("read", "failed to parse otp throttle", err)
				return abort
			}
			if now.Before(t.ExpiresAt) {
				abort = errs.NewTooManyAttemptsError("Please wait before requesting another OTP")
				return abort
			}
		case status.Code(err) != codes.NotFound:
			return err
		}
		return tx.Set(ref, &models.OTPThrottle{RequestedAt: now, ExpiresAt: now.Add(window)})
	})
	if abort != nil {
		return abort
	}
	if err != nil {
		return errs.NewDatabaseError("update", "failed to reserve otp send", err)
	}
	return nil
}

// Update overwrites the session. Only the request holding it in the
// verifying state writes this way.
func (s *verificationStore) Update(ctx context.Context, session *models.VerificationSession) error {
	_, err := s.collection().Doc(session.SessionID).Set(ctx, session)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update verification session", err)
	}
	return nil
}

// DeleteExpired removes sessions whose expiresAt is before the cutoff and
// reports how many were deleted.
func (s *verificationStore) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	log := logger.FromContext(ctx)

	docs, err := s.collection().Where("expiresAt", "<", before).Documents(ctx).GetAll()
	if err != nil {
		return 0, errs.NewDatabaseError("read", "failed to list expired verification sessions", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, d := range docs {
		job, err := bw.Delete(d.Ref)
		if err != nil {
			bw.End()
			return 0, errs.NewDatabaseError("delete", "failed to schedule session delete", err)
		}
		jobs = append(jobs, job)
	}

	// Flush and close the writer, then wait on each job for errors.
	bw.End()
	deleted := 0
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			log.Error("failed to delete verification session", "session_id", docs[i].Ref.ID, "error", err)
			return deleted, errs.NewDatabaseError("delete", "failed to delete verification session", err)
		}
		deleted++
	}
	return deleted, nil
}
