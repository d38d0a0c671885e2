// Package settings manages per-user preference records with get-or-create
// semantics: reading settings for a user who never saved any persists and
// returns the defaults.
package settings

import (
	"context"
	"database/sql"
	stderrors "errors"

	domain "github.com/mindsoothe/backend/internal/domain/settings"
	"github.com/mindsoothe/backend/internal/errors"
	"github.com/mindsoothe/backend/internal/storage"
	"github.com/mindsoothe/backend/pkg/logger"
)

// Service manages user settings.
type Service struct {
	store storage.SettingsStore
	log   *logger.Logger
}

// New constructs a settings service.
func New(store storage.SettingsStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("settings")
	}
	return &Service{store: store, log: log}
}

// Get returns the user's settings, creating the default record on first read.
func (s *Service) Get(ctx context.Context, userID string) (domain.Settings, error) {
	set, err := s.store.GetSettings(ctx, userID)
	if err == nil {
		return set, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		return domain.Settings{}, errors.Internal("load settings", err)
	}

	def := domain.Defaults(userID)
	created, err := s.store.UpsertSettings(ctx, def)
	if err != nil {
		return domain.Settings{}, errors.Internal("create default settings", err)
	}
	s.log.WithField("user_id", userID).Debug("default settings created")
	return created, nil
}

// Update applies the provided fields on top of the current (or default)
// settings and persists the result.
func (s *Service) Update(ctx context.Context, userID string, patch domain.Patch) (domain.Settings, error) {
	cur, err := s.Get(ctx, userID)
	if err != nil {
		return domain.Settings{}, err
	}

	if patch.PrivacyMode != nil {
		cur.PrivacyMode = *patch.PrivacyMode
	}
	if patch.KindFriendMode != nil {
		cur.KindFriendMode = *patch.KindFriendMode
	}
	if patch.Theme != nil {
		if !patch.Theme.Valid() {
			return domain.Settings{}, errors.InvalidInput("theme must be light or dark")
		}
		cur.Theme = *patch.Theme
	}
	if patch.NotificationsEnabled != nil {
		cur.NotificationsEnabled = *patch.NotificationsEnabled
	}

	updated, err := s.store.UpsertSettings(ctx, cur)
	if err != nil {
		return domain.Settings{}, errors.Internal("save settings", err)
	}
	return updated, nil
}
