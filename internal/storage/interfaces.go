// Package storage declares the persistence interfaces consumed by the
// services. Every id-scoped read or write on owned resources takes the owner
// identifier alongside the record id; implementations must treat a foreign
// id exactly like a missing one.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mindsoothe/backend/internal/domain/journal"
	"github.com/mindsoothe/backend/internal/domain/letter"
	"github.com/mindsoothe/backend/internal/domain/profile"
	"github.com/mindsoothe/backend/internal/domain/settings"
	"github.com/mindsoothe/backend/internal/domain/user"
)

// ErrDuplicateEmail is returned by CreateUser when the email is already
// registered.
var ErrDuplicateEmail = errors.New("email already registered")

// UserStore persists credential records.
type UserStore interface {
	// CreateUser stores the credential together with its default profile and
	// settings as one atomic operation; a failure on any of the three leaves
	// no record behind.
	CreateUser(ctx context.Context, u user.User, prof profile.Profile, s settings.Settings) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	// GetUserByEmail matches the stored email byte-exact.
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

// EntryStore persists journal entries.
type EntryStore interface {
	CreateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error)
	// UpdateEntry persists e scoped by (e.ID, e.UserID); sql.ErrNoRows when no
	// owned record matches.
	UpdateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error)
	GetEntry(ctx context.Context, id, userID string) (journal.Entry, error)
	// ListEntries returns owned entries ordered by creation time descending.
	ListEntries(ctx context.Context, userID string, offset, limit int) ([]journal.Entry, error)
	// ListUnlockedEntries returns owned entries with unlock_at set and at or
	// before now, ordered by unlock_at ascending.
	ListUnlockedEntries(ctx context.Context, userID string, now time.Time) ([]journal.Entry, error)
	// ListEntriesInRange returns owned entries created within [from, to],
	// ordered by creation time ascending.
	ListEntriesInRange(ctx context.Context, userID string, from, to time.Time) ([]journal.Entry, error)
	DeleteEntry(ctx context.Context, id, userID string) error
}

// SettingsStore persists user settings, at most one record per user.
type SettingsStore interface {
	GetSettings(ctx context.Context, userID string) (settings.Settings, error)
	UpsertSettings(ctx context.Context, s settings.Settings) (settings.Settings, error)
}

// ProfileStore persists user profiles, at most one record per user.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (profile.Profile, error)
	UpsertProfile(ctx context.Context, p profile.Profile) (profile.Profile, error)
}

// LetterStore persists weekly letters.
type LetterStore interface {
	CreateLetter(ctx context.Context, l letter.Letter) (letter.Letter, error)
	// ListLetters returns owned letters ordered by week_start descending.
	ListLetters(ctx context.Context, userID string) ([]letter.Letter, error)
	GetLetterByWeek(ctx context.Context, userID string, weekStart, weekEnd letter.Date) (letter.Letter, error)
}
