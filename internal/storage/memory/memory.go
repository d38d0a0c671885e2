// Package memory is an in-memory implementation of the storage interfaces.
// It is safe for concurrent use and is primarily intended for tests and
// local development.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindsoothe/backend/internal/domain/journal"
	"github.com/mindsoothe/backend/internal/domain/letter"
	"github.com/mindsoothe/backend/internal/domain/profile"
	"github.com/mindsoothe/backend/internal/domain/settings"
	"github.com/mindsoothe/backend/internal/domain/user"
	"github.com/mindsoothe/backend/internal/storage"
)

// Store keeps every collection in guarded maps.
type Store struct {
	mu           sync.RWMutex
	users        map[string]user.User
	usersByEmail map[string]string
	entries      map[string]journal.Entry
	settings     map[string]settings.Settings
	profiles     map[string]profile.Profile
	letters      map[string]letter.Letter
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.EntryStore = (*Store)(nil)
var _ storage.SettingsStore = (*Store)(nil)
var _ storage.ProfileStore = (*Store)(nil)
var _ storage.LetterStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		entries:      make(map[string]journal.Entry),
		settings:     make(map[string]settings.Settings),
		profiles:     make(map[string]profile.Profile),
		letters:      make(map[string]letter.Letter),
	}
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User, prof profile.Profile, set settings.Settings) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[u.Email]; exists {
		return user.User{}, storage.ErrDuplicateEmail
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	prof.UserID = u.ID
	prof.CreatedAt = now
	prof.UpdatedAt = now

	set.UserID = u.ID
	set.UpdatedAt = now

	// Single lock section keeps the three-record fan-out atomic.
	s.users[u.ID] = u
	s.usersByEmail[u.Email] = u.ID
	s.profiles[u.ID] = prof
	s.settings[u.ID] = set
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return s.users[id], nil
}

// EntryStore implementation ---------------------------------------------------

func (s *Store) CreateEntry(_ context.Context, e journal.Entry) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	e.Suggestions = copyStrings(e.Suggestions)

	s.entries[e.ID] = e
	return e, nil
}

func (s *Store) UpdateEntry(_ context.Context, e journal.Entry) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[e.ID]
	if !ok || existing.UserID != e.UserID {
		return journal.Entry{}, sql.ErrNoRows
	}

	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	e.Suggestions = copyStrings(e.Suggestions)
	s.entries[e.ID] = e
	return e, nil
}

func (s *Store) GetEntry(_ context.Context, id, userID string) (journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return journal.Entry{}, sql.ErrNoRows
	}
	return e, nil
}

func (s *Store) ListEntries(_ context.Context, userID string, offset, limit int) ([]journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.ownedEntriesLocked(userID)
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return paginate(owned, offset, limit), nil
}

func (s *Store) ListUnlockedEntries(_ context.Context, userID string, now time.Time) ([]journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var unlocked []journal.Entry
	for _, e := range s.ownedEntriesLocked(userID) {
		if e.Unlocked(now) {
			unlocked = append(unlocked, e)
		}
	}
	sort.Slice(unlocked, func(i, j int) bool {
		return unlocked[i].UnlockAt.Before(*unlocked[j].UnlockAt)
	})
	return unlocked, nil
}

func (s *Store) ListEntriesInRange(_ context.Context, userID string, from, to time.Time) ([]journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []journal.Entry
	for _, e := range s.ownedEntriesLocked(userID) {
		if !e.CreatedAt.Before(from) && !e.CreatedAt.After(to) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeleteEntry(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return sql.ErrNoRows
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) ownedEntriesLocked(userID string) []journal.Entry {
	var owned []journal.Entry
	for _, e := range s.entries {
		if e.UserID == userID {
			owned = append(owned, e)
		}
	}
	return owned
}

// SettingsStore implementation ------------------------------------------------

func (s *Store) GetSettings(_ context.Context, userID string) (settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.settings[userID]
	if !ok {
		return settings.Settings{}, sql.ErrNoRows
	}
	return set, nil
}

func (s *Store) UpsertSettings(_ context.Context, set settings.Settings) (settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set.UpdatedAt = time.Now().UTC()
	s.settings[set.UserID] = set
	return set, nil
}

// ProfileStore implementation -------------------------------------------------

func (s *Store) GetProfile(_ context.Context, userID string) (profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return profile.Profile{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) UpsertProfile(_ context.Context, p profile.Profile) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.profiles[p.UserID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = time.Now().UTC()
	s.profiles[p.UserID] = p
	return p, nil
}

// LetterStore implementation --------------------------------------------------

func (s *Store) CreateLetter(_ context.Context, l letter.Letter) (letter.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now().UTC()
	s.letters[l.ID] = l
	return l, nil
}

func (s *Store) ListLetters(_ context.Context, userID string) ([]letter.Letter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []letter.Letter
	for _, l := range s.letters {
		if l.UserID == userID {
			owned = append(owned, l)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].WeekStart.After(owned[j].WeekStart.Time)
	})
	return owned, nil
}

func (s *Store) GetLetterByWeek(_ context.Context, userID string, weekStart, weekEnd letter.Date) (letter.Letter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.letters {
		if l.UserID == userID && l.WeekStart.Equal(weekStart.Time) && l.WeekEnd.Equal(weekEnd.Time) {
			return l, nil
		}
	}
	return letter.Letter{}, sql.ErrNoRows
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func paginate(entries []journal.Entry, offset, limit int) []journal.Entry {
	if offset >= len(entries) {
		return nil
	}
	end := len(entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return entries[offset:end]
}
