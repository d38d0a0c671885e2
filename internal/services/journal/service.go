// Package journal implements entry CRUD, the time-capsule view and the mood
// aggregates. Every operation is scoped to the authenticated owner; a record
// belonging to someone else is indistinguishable from a missing one.
package journal

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	domain "github.com/mindsoothe/backend/internal/domain/journal"
	"github.com/mindsoothe/backend/internal/errors"
	"github.com/mindsoothe/backend/internal/storage"
	"github.com/mindsoothe/backend/pkg/logger"
)

// DefaultPageSize applies when a list request names no page size.
const DefaultPageSize = 10

// CreateInput carries the client-settable fields of a new entry. The owner
// comes from the authenticated context, never from the payload.
type CreateInput struct {
	Content     string      `json:"content"`
	Mood        domain.Mood `json:"mood"`
	Reflection  *string     `json:"reflection"`
	Suggestions []string    `json:"suggestions"`
	ColorHint   *string     `json:"color_hint"`
	IsReframed  bool        `json:"is_reframed"`
	UnlockAt    *time.Time  `json:"unlock_at"`
}

// Service manages journal entries.
type Service struct {
	store storage.EntryStore
	log   *logger.Logger
	now   func() time.Time
}

// New constructs a journal service.
func New(store storage.EntryStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("journal")
	}
	return &Service{store: store, log: log, now: time.Now}
}

// Create validates and stores a new entry for userID.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (domain.Entry, error) {
	if strings.TrimSpace(in.Content) == "" {
		return domain.Entry{}, errors.InvalidInput("content is required")
	}
	if !in.Mood.Valid() {
		return domain.Entry{}, errors.InvalidInput("mood is required")
	}

	suggestions := in.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	created, err := s.store.CreateEntry(ctx, domain.Entry{
		UserID:      userID,
		Content:     in.Content,
		Mood:        in.Mood,
		Reflection:  in.Reflection,
		Suggestions: suggestions,
		ColorHint:   in.ColorHint,
		IsReframed:  in.IsReframed,
		UnlockAt:    in.UnlockAt,
	})
	if err != nil {
		return domain.Entry{}, errors.Internal("create entry", err)
	}

	s.log.WithField("entry_id", created.ID).
		WithField("user_id", userID).
		WithField("mood", created.Mood).
		Info("entry created")
	return created, nil
}

// Get fetches an owned entry by id.
func (s *Service) Get(ctx context.Context, userID, id string) (domain.Entry, error) {
	e, err := s.store.GetEntry(ctx, id, userID)
	if err != nil {
		return domain.Entry{}, mapStoreErr(err, "entry")
	}
	return e, nil
}

// List returns a page of owned entries, newest first.
func (s *Service) List(ctx context.Context, userID string, page, pageSize int) ([]domain.Entry, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	entries, err := s.store.ListEntries(ctx, userID, page*pageSize, pageSize)
	if err != nil {
		return nil, errors.Internal("list entries", err)
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}

// Update applies the whitelisted fields of patch to an owned entry. Fields
// outside the whitelist never reach this point.
func (s *Service) Update(ctx context.Context, userID, id string, patch domain.Patch) (domain.Entry, error) {
	e, err := s.store.GetEntry(ctx, id, userID)
	if err != nil {
		return domain.Entry{}, mapStoreErr(err, "entry")
	}

	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return domain.Entry{}, errors.InvalidInput("content cannot be empty")
		}
		e.Content = *patch.Content
	}
	if patch.Mood != nil {
		if !patch.Mood.Valid() {
			return domain.Entry{}, errors.InvalidInput("unknown mood")
		}
		e.Mood = *patch.Mood
	}
	if patch.Reflection != nil || patch.ClearReflection {
		e.Reflection = patch.Reflection
	}
	if patch.Suggestions != nil {
		e.Suggestions = *patch.Suggestions
	}
	if patch.ColorHint != nil || patch.ClearColorHint {
		e.ColorHint = patch.ColorHint
	}
	if patch.IsReframed != nil {
		e.IsReframed = *patch.IsReframed
	}
	if patch.UnlockAt != nil || patch.ClearUnlockAt {
		e.UnlockAt = patch.UnlockAt
	}

	updated, err := s.store.UpdateEntry(ctx, e)
	if err != nil {
		return domain.Entry{}, mapStoreErr(err, "entry")
	}
	return updated, nil
}

// Delete permanently removes an owned entry.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteEntry(ctx, id, userID); err != nil {
		return mapStoreErr(err, "entry")
	}
	s.log.WithField("entry_id", id).WithField("user_id", userID).Info("entry deleted")
	return nil
}

// Unlocked returns owned time capsules whose unlock instant has passed,
// soonest-unlocked first. Entries without unlock_at are not time capsules
// and never appear here.
func (s *Service) Unlocked(ctx context.Context, userID string) ([]domain.Entry, error) {
	entries, err := s.store.ListUnlockedEntries(ctx, userID, s.now())
	if err != nil {
		return nil, errors.Internal("list unlocked entries", err)
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}

// MoodStats counts owned entries per mood in [from, to], zero-filled for
// moods with no entries. Zero-valued bounds default to all time.
func (s *Service) MoodStats(ctx context.Context, userID string, from, to time.Time) (domain.MoodStats, error) {
	if to.IsZero() {
		to = s.now()
	}
	entries, err := s.store.ListEntriesInRange(ctx, userID, from, to)
	if err != nil {
		return nil, errors.Internal("load entries for stats", err)
	}

	stats := domain.NewMoodStats()
	for _, e := range entries {
		if e.Mood.Valid() {
			stats[e.Mood]++
		}
	}
	return stats, nil
}

// WeeklySummary aggregates the trailing seven days. The dominant mood is the
// highest-count mood; ties resolve to the first mood in the fixed enum order.
func (s *Service) WeeklySummary(ctx context.Context, userID string) (domain.WeeklySummary, error) {
	weekEnd := s.now()
	weekStart := weekEnd.AddDate(0, 0, -7)

	entries, err := s.store.ListEntriesInRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return domain.WeeklySummary{}, errors.Internal("load entries for summary", err)
	}

	stats := domain.NewMoodStats()
	for _, e := range entries {
		if e.Mood.Valid() {
			stats[e.Mood]++
		}
	}

	dominant := domain.Moods()[0]
	for _, m := range domain.Moods() {
		if stats[m] > stats[dominant] {
			dominant = m
		}
	}

	return domain.WeeklySummary{
		TotalEntries:     len(entries),
		MoodDistribution: stats,
		DominantMood:     dominant,
		WeekStart:        weekStart,
		WeekEnd:          weekEnd,
	}, nil
}

func mapStoreErr(err error, resource string) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource)
	}
	return errors.Internal("store failure", err)
}
