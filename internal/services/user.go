package services

import (
	"context"
	"strings"
	"time"

	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
	"github.com/GregMSThompson/kisanmate-backend/internal/models"
	"github.com/GregMSThompson/kisanmate-backend/pkg/logger"
)

type userUSStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	UpdateName(ctx context.Context, uid, name string, updatedAt int64) error
}

type userService struct {
	Store userUSStore
	now   func() time.Time
}

func NewUserService(store userUSStore) *userService {
	return &userService{
		Store: store,
		now:   time.Now,
	}
}

// GetProfile returns the stored profile with the greeting fallback applied.
func (s *userService) GetProfile(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.Store.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(user.Name) == "" {
		user.Name = defaultFarmerName
	}
	return user, nil
}

func (s *userService) UpdateName(ctx context.Context, uid, name string) (*models.User, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.NewValidationError("name is required")
	}

	if err := s.Store.UpdateName(ctx, uid, name, s.now().UnixMilli()); err != nil {
		log.Error("failed to update profile name", "error", err)
		return nil, err
	}

	log.Info("profile name updated")
	return s.GetProfile(ctx, uid)
}
