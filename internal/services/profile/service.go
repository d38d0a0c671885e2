// Package profile manages the display profile attached to each account.
package profile

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	domain "github.com/mindsoothe/backend/internal/domain/profile"
	"github.com/mindsoothe/backend/internal/errors"
	"github.com/mindsoothe/backend/internal/storage"
	"github.com/mindsoothe/backend/pkg/logger"
)

// Service manages user profiles.
type Service struct {
	store storage.ProfileStore
	log   *logger.Logger
}

// New constructs a profile service.
func New(store storage.ProfileStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("profile")
	}
	return &Service{store: store, log: log}
}

// Get returns the user's profile. Signup creates one, but an account
// predating that guarantee gets an empty record on first read.
func (s *Service) Get(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, errors.Internal("load profile", err)
	}

	created, err := s.store.UpsertProfile(ctx, domain.Profile{UserID: userID})
	if err != nil {
		return domain.Profile{}, errors.Internal("create profile", err)
	}
	return created, nil
}

// Update changes the profile's display fields.
func (s *Service) Update(ctx context.Context, userID string, patch domain.Patch) (domain.Profile, error) {
	cur, err := s.Get(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	if patch.FullName != nil {
		name := strings.TrimSpace(*patch.FullName)
		if name == "" {
			return domain.Profile{}, errors.InvalidInput("full_name cannot be empty")
		}
		cur.FullName = name
	}

	updated, err := s.store.UpsertProfile(ctx, cur)
	if err != nil {
		return domain.Profile{}, errors.Internal("save profile", err)
	}
	return updated, nil
}
