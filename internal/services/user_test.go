package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/pkg/helpers"
)

type stubUserStore struct {
	user        *models.User
	updateCalls int
	updatedAt   int64
	err         error
}

func (s *stubUserStore) GetUser(_ context.Context, uid string) (*models.User, error) {
	if s.user == nil {
		return nil, errs.NewNotFoundError("profile not found")
	}
	u := *s.user
	u.UID = uid
	return &u, nil
}

func (s *stubUserStore) UpdateName(_ context.Context, _ string, name string, updatedAt int64) error {
	s.updateCalls++
	if s.err != nil {
		return s.err
	}
	s.user.Name = name
	s.updatedAt = updatedAt
	return nil
}

func TestUserServiceGetProfileDefaultsName(t *testing.T) {
	store := &stubUserStore{user: &models.User{Phone: "9876543210"}}
	svc := NewUserService(store)

	got, err := svc.GetProfile(helpers.TestCtx(), "uid-1")
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if got.Name != "Farmer" || got.UID != "uid-1" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestUserServiceGetProfileNotFound(t *testing.T) {
	svc := NewUserService(&stubUserStore{})

	_, err := svc.GetProfile(helpers.TestCtx(), "uid-1")
	var nErr *errs.NotFoundError
	if !errors.As(err, &nErr) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserServiceUpdateName(t *testing.T) {
	store := &stubUserStore{user: &models.User{Name: "Old"}}
	svc := NewUserService(store)
	now := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	got, err := svc.UpdateName(helpers.TestCtx(), "uid-1", "  Lakshmi  ")
	if err != nil {
		t.Fatalf("UpdateName returned error: %v", err)
	}

	if store.updateCalls != 1 {
		t.Fatalf("UpdateName called %d times, want 1", store.updateCalls)
	}
	if got.Name != "Lakshmi" || store.updatedAt != now.UnixMilli() {
		t.Fatalf("unexpected update: %+v at %d", got, store.updatedAt)
	}
}

func TestUserServiceUpdateNameRequiresName(t *testing.T) {
	store := &stubUserStore{user: &models.User{}}
	svc := NewUserService(store)

	_, err := svc.UpdateName(helpers.TestCtx(), "uid-1", "   ")
	var vErr *errs.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.updateCalls != 0 {
		t.Fatalf("store should not be called")
	}
}

func TestUserServiceUpdateNameStoreError(t *testing.T) {
	store := &stubUserStore{user: &models.User{}, err: errors.New("store failure")}
	svc := NewUserService(store)

	if _, err := svc.UpdateName(helpers.TestCtx(), "uid-1", "Ravi"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
