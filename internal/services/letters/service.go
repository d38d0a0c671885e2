// Package letters manages the weekly "letter from your future self": listing
// past letters, looking one up by week, and generating a new one from the
// week's journal entries.
package letters

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	domain "github.com/mindsoothe/backend/internal/domain/letter"
	"github.com/mindsoothe/backend/internal/errors"
	"github.com/mindsoothe/backend/internal/services/analysis"
	"github.com/mindsoothe/backend/internal/storage"
	"github.com/mindsoothe/backend/pkg/logger"
)

// Service manages weekly letters.
type Service struct {
	letters  storage.LetterStore
	entries  storage.EntryStore
	analyzer analysis.Client
	log      *logger.Logger
}

// New constructs a letters service. The analyzer may be nil, in which case
// Generate is unavailable but reads still work.
func New(letters storage.LetterStore, entries storage.EntryStore, analyzer analysis.Client, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("letters")
	}
	return &Service{letters: letters, entries: entries, analyzer: analyzer, log: log}
}

// List returns the user's letters, most recent week first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Letter, error) {
	ls, err := s.letters.ListLetters(ctx, userID)
	if err != nil {
		return nil, errors.Internal("list letters", err)
	}
	if ls == nil {
		ls = []domain.Letter{}
	}
	return ls, nil
}

// GetByWeek returns the letter covering exactly [weekStart, weekEnd], if any.
func (s *Service) GetByWeek(ctx context.Context, userID string, weekStart, weekEnd domain.Date) (domain.Letter, error) {
	l, err := s.letters.GetLetterByWeek(ctx, userID, weekStart, weekEnd)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return domain.Letter{}, errors.NotFound("letter")
		}
		return domain.Letter{}, errors.Internal("load letter", err)
	}
	return l, nil
}

// Generate writes a new letter covering [weekStart, weekEnd] from the user's
// entries in that window. A week with no entries yields NotFound and nothing
// is persisted; persistence happens only after the letter text exists.
func (s *Service) Generate(ctx context.Context, userID string, weekStart, weekEnd domain.Date) (domain.Letter, error) {
	if s.analyzer == nil {
		return domain.Letter{}, errors.AnalysisFailed(stderrors.New("letter generation not configured"))
	}
	if weekStart.IsZero() || weekEnd.IsZero() {
		return domain.Letter{}, errors.InvalidInput("weekStart and weekEnd are required")
	}
	if weekEnd.Before(weekStart.Time) {
		return domain.Letter{}, errors.InvalidInput("weekEnd must not precede weekStart")
	}

	// The end bound is inclusive of the whole final day.
	to := weekEnd.Add(24*time.Hour - time.Nanosecond)
	entries, err := s.entries.ListEntriesInRange(ctx, userID, weekStart.Time, to)
	if err != nil {
		return domain.Letter{}, errors.Internal("load entries for letter", err)
	}
	if len(entries) == 0 {
		return domain.Letter{}, errors.NotFound("entries for this week")
	}

	content, err := s.analyzer.GenerateLetter(ctx, entries)
	if err != nil {
		return domain.Letter{}, err
	}

	letter, err := s.letters.CreateLetter(ctx, domain.Letter{
		UserID:    userID,
		Content:   content,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
	})
	if err != nil {
		return domain.Letter{}, errors.Internal("save letter", err)
	}

	s.log.WithField("user_id", userID).
		WithField("week_start", weekStart.String()).
		Info("weekly letter generated")
	return letter, nil
}
