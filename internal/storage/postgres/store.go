// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mindsoothe/backend/internal/domain/journal"
	"github.com/mindsoothe/backend/internal/domain/letter"
	"github.com/mindsoothe/backend/internal/domain/profile"
	"github.com/mindsoothe/backend/internal/domain/settings"
	"github.com/mindsoothe/backend/internal/domain/user"
	"github.com/mindsoothe/backend/internal/storage"
)

// Store implements the storage interfaces over a sqlx database handle.
type Store struct {
	db *sqlx.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.EntryStore = (*Store)(nil)
var _ storage.SettingsStore = (*Store)(nil)
var _ storage.ProfileStore = (*Store)(nil)
var _ storage.LetterStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to postgres, applies pool settings and pings the server.
func Open(dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if connMaxLifetime > 0 {
		db.SetConnMaxLifetime(connMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}

// --- UserStore ---------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User, prof profile.Profile, set settings.Settings) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Email, u.PasswordHash, u.FullName, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, storage.ErrDuplicateEmail
		}
		return user.User{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, u.ID, prof.FullName, now, now)
	if err != nil {
		return user.User{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, privacy_mode, kind_friend_mode, theme, notifications_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, set.PrivacyMode, set.KindFriendMode, set.Theme, set.NotificationsEnabled, now)
	if err != nil {
		return user.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	var u user.User
	err := s.db.GetContext(ctx, &u, `
		SELECT id, email, password_hash, full_name, created_at, updated_at
		FROM users WHERE id = $1
	`, id)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	err := s.db.GetContext(ctx, &u, `
		SELECT id, email, password_hash, full_name, created_at, updated_at
		FROM users WHERE email = $1
	`, email)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// --- EntryStore --------------------------------------------------------------

// entryRow mirrors journal.Entry with the suggestions JSON column raw.
type entryRow struct {
	journal.Entry
	SuggestionsRaw []byte `db:"suggestions"`
}

func (r entryRow) toEntry() (journal.Entry, error) {
	e := r.Entry
	if len(r.SuggestionsRaw) > 0 {
		if err := json.Unmarshal(r.SuggestionsRaw, &e.Suggestions); err != nil {
			return journal.Entry{}, err
		}
	}
	return e, nil
}

const entryColumns = `id, user_id, content, mood, reflection, suggestions, color_hint, is_reframed, unlock_at, created_at, updated_at`

func (s *Store) CreateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	suggestionsJSON, err := json.Marshal(e.Suggestions)
	if err != nil {
		return journal.Entry{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, e.UserID, e.Content, e.Mood, e.Reflection, suggestionsJSON, e.ColorHint, e.IsReframed, e.UnlockAt, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return journal.Entry{}, err
	}
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	e.UpdatedAt = time.Now().UTC()

	suggestionsJSON, err := json.Marshal(e.Suggestions)
	if err != nil {
		return journal.Entry{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE journal_entries
		SET content = $3, mood = $4, reflection = $5, suggestions = $6,
		    color_hint = $7, is_reframed = $8, unlock_at = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2
	`, e.ID, e.UserID, e.Content, e.Mood, e.Reflection, suggestionsJSON, e.ColorHint, e.IsReframed, e.UnlockAt, e.UpdatedAt)
	if err != nil {
		return journal.Entry{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return journal.Entry{}, sql.ErrNoRows
	}
	return s.GetEntry(ctx, e.ID, e.UserID)
}

func (s *Store) GetEntry(ctx context.Context, id, userID string) (journal.Entry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return journal.Entry{}, err
	}
	return row.toEntry()
}

func (s *Store) ListEntries(ctx context.Context, userID string, offset, limit int) ([]journal.Entry, error) {
	var rows []entryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return toEntries(rows)
}

func (s *Store) ListUnlockedEntries(ctx context.Context, userID string, now time.Time) ([]journal.Entry, error) {
	var rows []entryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE user_id = $1 AND unlock_at IS NOT NULL AND unlock_at <= $2
		ORDER BY unlock_at ASC
	`, userID, now)
	if err != nil {
		return nil, err
	}
	return toEntries(rows)
}

func (s *Store) ListEntriesInRange(ctx context.Context, userID string, from, to time.Time) ([]journal.Entry, error) {
	var rows []entryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at ASC
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	return toEntries(rows)
}

func (s *Store) DeleteEntry(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM journal_entries WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func toEntries(rows []entryRow) ([]journal.Entry, error) {
	entries := make([]journal.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// --- SettingsStore -----------------------------------------------------------

func (s *Store) GetSettings(ctx context.Context, userID string) (settings.Settings, error) {
	var set settings.Settings
	err := s.db.GetContext(ctx, &set, `
		SELECT user_id, privacy_mode, kind_friend_mode, theme, notifications_enabled, updated_at
		FROM user_settings WHERE user_id = $1
	`, userID)
	if err != nil {
		return settings.Settings{}, err
	}
	return set, nil
}

func (s *Store) UpsertSettings(ctx context.Context, set settings.Settings) (settings.Settings, error) {
	set.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, privacy_mode, kind_friend_mode, theme, notifications_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET privacy_mode = EXCLUDED.privacy_mode,
		    kind_friend_mode = EXCLUDED.kind_friend_mode,
		    theme = EXCLUDED.theme,
		    notifications_enabled = EXCLUDED.notifications_enabled,
		    updated_at = EXCLUDED.updated_at
	`, set.UserID, set.PrivacyMode, set.KindFriendMode, set.Theme, set.NotificationsEnabled, set.UpdatedAt)
	if err != nil {
		return settings.Settings{}, err
	}
	return set, nil
}

// --- ProfileStore ------------------------------------------------------------

func (s *Store) GetProfile(ctx context.Context, userID string) (profile.Profile, error) {
	var p profile.Profile
	err := s.db.GetContext(ctx, &p, `
		SELECT user_id, full_name, created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	now := time.Now().UTC()
	p.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    updated_at = EXCLUDED.updated_at
	`, p.UserID, p.FullName, now, p.UpdatedAt)
	if err != nil {
		return profile.Profile{}, err
	}
	return s.GetProfile(ctx, p.UserID)
}

// --- LetterStore -------------------------------------------------------------

func (s *Store) CreateLetter(ctx context.Context, l letter.Letter) (letter.Letter, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weekly_letters (id, user_id, content, week_start, week_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.ID, l.UserID, l.Content, l.WeekStart, l.WeekEnd, l.CreatedAt)
	if err != nil {
		return letter.Letter{}, err
	}
	return l, nil
}

func (s *Store) ListLetters(ctx context.Context, userID string) ([]letter.Letter, error) {
	var letters []letter.Letter
	err := s.db.SelectContext(ctx, &letters, `
		SELECT id, user_id, content, week_start, week_end, created_at
		FROM weekly_letters
		WHERE user_id = $1
		ORDER BY week_start DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return letters, nil
}

func (s *Store) GetLetterByWeek(ctx context.Context, userID string, weekStart, weekEnd letter.Date) (letter.Letter, error) {
	var l letter.Letter
	err := s.db.GetContext(ctx, &l, `
		SELECT id, user_id, content, week_start, week_end, created_at
		FROM weekly_letters
		WHERE user_id = $1 AND week_start = $2 AND week_end = $3
	`, userID, weekStart, weekEnd)
	if err != nil {
		return letter.Letter{}, err
	}
	return l, nil
}
