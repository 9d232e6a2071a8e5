// Package tracker is the application core: it validates requests, applies
// them to the store in one transaction each, and runs the best-effort
// follow-ups (achievements, activity feed, notifications) after commit.
package tracker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/stride/internal/achievement"
	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/notifier"
	"github.com/julianstephens/stride/internal/observability"
	"github.com/julianstephens/stride/internal/storage"
	"github.com/julianstephens/stride/internal/utils"
)

type Service struct {
	store    storage.Provider
	clock    utils.Clock
	catalog  *achievement.Catalog
	notifier notifier.Sender

	catalogSynced atomic.Bool
}

type Option func(*Service)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c utils.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithNotifier(n notifier.Sender) Option {
	return func(s *Service) { s.notifier = n }
}

func New(store storage.Provider, opts ...Option) (*Service, error) {
	catalog, err := achievement.LoadCatalog()
	if err != nil {
		return nil, err
	}
	s := &Service{
		store:    store,
		clock:    utils.RealClock{},
		catalog:  catalog,
		notifier: notifier.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Store exposes the underlying provider for read-only callers such as the TUI.
func (s *Service) Store() storage.Provider { return s.store }

func (s *Service) Catalog() *achievement.Catalog { return s.catalog }

// Now is the service clock's current time.
func (s *Service) Now() time.Time { return s.clock.Now() }

func (s *Service) settings(ctx context.Context) (models.Settings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return settings, nil
}

// Today returns the current calendar day in the configured timezone.
func (s *Service) Today(ctx context.Context) (string, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return "", err
	}
	return utils.GetTodayInTimezone(s.clock, settings.Timezone)
}

// LocalUser returns the user id written at init, used by the CLI and TUI.
func (s *Service) LocalUser(ctx context.Context) (string, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return "", err
	}
	return settings.UserID, nil
}

// checkDay rejects malformed days and any day other than today.
func checkDay(day, today string) error {
	if _, err := utils.ParseDay(day); err != nil {
		return apperrors.Invalid("day", "%v", err)
	}
	if day < today {
		return apperrors.Invalid("day", "cannot change habits for past dates (%s)", day)
	}
	if day > today {
		return apperrors.Invalid("day", "cannot log habits for future dates (%s)", day)
	}
	return nil
}

func newID() string { return uuid.NewString() }

// publish writes an activity entry to every community the user belongs to.
// Failures are logged and never returned.
func (s *Service) publish(ctx context.Context, userID string, kind constants.ActivityType, message string) {
	communities, err := s.store.ListUserCommunities(ctx, userID)
	if err != nil {
		observability.RecordFanoutFailure("activity")
		logger.Warn("Failed to list communities for activity", "user", userID, "error", err)
		return
	}
	for _, c := range communities {
		a := models.Activity{
			ID:          newID(),
			CommunityID: c.ID,
			UserID:      userID,
			Type:        kind,
			Message:     message,
			CreatedAt:   s.Now(),
		}
		if err := s.store.AddActivity(ctx, a); err != nil {
			observability.RecordFanoutFailure("activity")
			logger.Warn("Failed to write activity", "community", c.ID, "user", userID, "type", kind, "error", err)
		}
	}
}

// notify sends a desktop notification when enabled. Delivery problems are
// logged at debug level since the tray app is optional.
func (s *Service) notify(ctx context.Context, text string) {
	settings, err := s.settings(ctx)
	if err != nil || !settings.NotificationsEnabled {
		return
	}
	if err := s.notifier.Notify(ctx, text); err != nil {
		observability.RecordFanoutFailure("notification")
		logger.Debug("Notification not delivered", "error", err)
	}
}
