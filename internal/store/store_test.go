package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/pkg/helpers"
)

func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	client, err := firestore.NewClient(context.Background(), "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestTransactionStoreWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := helpers.TestCtx()
	store := NewTransactionStore(client)
	uid := uniqueID("user")

	txs := []models.Transaction{
		{ID: "t1", Title: "Seeds", Amount: 500, Type: models.TransactionExpense, Timestamp: 1000},
		{ID: "t2", Title: "Wheat sale", Amount: 9000, Type: models.TransactionIncome, Timestamp: 3000},
		{ID: "t3", Title: "Diesel", Amount: 700, Type: models.TransactionExpense, Timestamp: 2000},
	}
	for i := range txs {
		if err := store.Add(ctx, uid, &txs[i]); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}

	got, err := store.List(ctx, uid)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 3 || got[0].ID != "t2" || got[1].ID != "t3" || got[2].ID != "t1" {
		t.Fatalf("unexpected order: %+v", got)
	}

	watchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	txCh, errCh := store.Watch(watchCtx, uid)

	select {
	case first := <-txCh:
		if len(first) != 3 || first[0].ID != "t2" {
			t.Fatalf("unexpected first snapshot: %+v", first)
		}
	case err := <-errCh:
		t.Fatalf("watch error: %v", err)
	}

	if err := store.Add(ctx, uid, &models.Transaction{ID: "t4", Title: "Milk", Amount: 300, Type: models.TransactionIncome, Timestamp: 4000}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	select {
	case next := <-txCh:
		if len(next) != 4 || next[0].ID != "t4" {
			t.Fatalf("unexpected update: %+v", next)
		}
	case err := <-errCh:
		t.Fatalf("watch error: %v", err)
	}

	cancel()
	for range txCh {
	}
	if err, ok := <-errCh; ok && err != nil {
		t.Fatalf("cancelled watch reported error: %v", err)
	}
}

func TestUserStoreWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := helpers.TestCtx()
	store := NewUserStore(client)
	uid := uniqueID("user")

	if _, err := store.GetUser(ctx, uid); !isNotFound(err) {
		t.Fatalf("expected not found before create, got %v", err)
	}
	if err := store.UpdateName(ctx, uid, "Ravi", 1); !isNotFound(err) {
		t.Fatalf("expected not found on update, got %v", err)
	}

	user := &models.User{UID: uid, Name: "Sita", Phone: "9876543210", CreatedAt: 1000}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	var exists *errs.AlreadyExistsError
	if err := store.CreateUser(ctx, user); !errors.As(err, &exists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	if err := store.UpdateName(ctx, uid, "Lakshmi", 2000); err != nil {
		t.Fatalf("UpdateName error: %v", err)
	}
	got, err := store.GetUser(ctx, uid)
	if err != nil {
		t.Fatalf("GetUser error: %v", err)
	}
	want := models.User{UID: uid, Name: "Lakshmi", Phone: "9876543210", CreatedAt: 1000, UpdatedAt: 2000}
	if *got != want {
		t.Fatalf("got %+v, want %+v", *got, want)
	}
}

func TestVerificationStoreWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := helpers.TestCtx()
	store := NewVerificationStore(client)

	now := time.Now().UTC().Truncate(time.Millisecond)
	expired := &models.VerificationSession{
		SessionID: uniqueID("expired"),
		Mode:      models.AuthModeSignup,
		Status:    models.AuthOTPRequested,
		CreatedAt: now.Add(-time.Hour),
		ExpiresAt: now.Add(-30 * time.Minute),
	}
	live := &models.VerificationSession{
		SessionID: uniqueID("live"),
		Mode:      models.AuthModeLogin,
		Status:    models.AuthOTPRequested,
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}
	for _, s := range []*models.VerificationSession{expired, live} {
		if err := store.Create(ctx, s); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	live.Attempts = 2
	live.Error = "Invalid OTP"
	if err := store.Update(ctx, live); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	got, err := store.Get(ctx, live.SessionID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Attempts != 2 || got.Error != "Invalid OTP" || !got.ExpiresAt.Equal(live.ExpiresAt) {
		t.Fatalf("unexpected session: %+v", got)
	}

	n, err := store.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired error: %v", err)
	}
	if n < 1 {
		t.Fatalf("expected at least one deletion, got %d", n)
	}
	if _, err := store.Get(ctx, expired.SessionID); !isNotFound(err) {
		t.Fatalf("expired session still present: %v", err)
	}
	if _, err := store.Get(ctx, live.SessionID); err != nil {
		t.Fatalf("live session removed: %v", err)
	}
}

func TestVerificationStoreMutateWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := helpers.TestCtx()
	store := NewVerificationStore(client)

	now := time.Now().UTC().Truncate(time.Millisecond)
	session := &models.VerificationSession{
		SessionID: uniqueID("mutate"),
		Mode:      models.AuthModeSignup,
		Status:    models.AuthOTPRequested,
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := store.Mutate(ctx, session.SessionID, func(vs *models.VerificationSession) error {
		vs.Attempts++
		return nil
	})
	if err != nil || got.Attempts != 1 {
		t.Fatalf("Mutate: %+v %v", got, err)
	}

	rejected := errs.NewValidationError("no")
	if _, err := store.Mutate(ctx, session.SessionID, func(vs *models.VerificationSession) error {
		vs.Attempts = 99
		return rejected
	}); !errors.Is(err, rejected) {
		t.Fatalf("expected fn error back, got %v", err)
	}
	stored, err := store.Get(ctx, session.SessionID)
	if err != nil || stored.Attempts != 1 {
		t.Fatalf("aborted mutate was written: %+v %v", stored, err)
	}

	if _, err := store.Mutate(ctx, uniqueID("missing"), func(*models.VerificationSession) error { return nil }); !isNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVerificationStoreReserveSendWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := helpers.TestCtx()
	store := NewVerificationStore(client)

	key := uniqueID("phone")
	now := time.Now().UTC()
	if err := store.ReserveSend(ctx, key, now, time.Minute); err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	err := store.ReserveSend(ctx, key, now.Add(10*time.Second), time.Minute)
	var tErr *errs.TooManyAttemptsError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected too many attempts, got %v", err)
	}

	if err := store.ReserveSend(ctx, key, now.Add(2*time.Minute), time.Minute); err != nil {
		t.Fatalf("reserve after window: %v", err)
	}
}

func TestVersionName(t *testing.T) {
	tests := map[string]string{
		"projects/p/secrets/sms-api-key":            "projects/p/secrets/sms-api-key/versions/latest",
		"projects/p/secrets/sms-api-key/versions/3": "projects/p/secrets/sms-api-key/versions/3",
	}
	for in, want := range tests {
		if got := versionName(in); got != want {
			t.Fatalf("versionName(%q) = %q, want %q", in, got, want)
		}
	}
}

func isNotFound(err error) bool {
	var nf *errs.NotFoundError
	return errors.As(err, &nf)
}
