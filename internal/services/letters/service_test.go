package letters

import (
	"context"
	"testing"
	"time"

	domain "github.com/mindsoothe/backend/internal/domain/journal"
	letterdom "github.com/mindsoothe/backend/internal/domain/letter"
	"github.com/mindsoothe/backend/internal/errors"
	"github.com/mindsoothe/backend/internal/services/analysis"
	"github.com/mindsoothe/backend/internal/storage/memory"
)

type fakeAnalyzer struct {
	letter string
	err    error
	calls  int
}

func (f *fakeAnalyzer) AnalyzeEntry(context.Context, string, bool) (analysis.Result, error) {
	panic("not used")
}

func (f *fakeAnalyzer) GenerateLetter(_ context.Context, entries []domain.Entry) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.letter, nil
}

func TestGenerateNoEntries(t *testing.T) {
	store := memory.New()
	analyzer := &fakeAnalyzer{letter: "dear me"}
	svc := New(store, store, analyzer, nil)

	start := letterdom.NewDate(time.Now().AddDate(0, 0, -7))
	end := letterdom.NewDate(time.Now())

	_, err := svc.Generate(context.Background(), "u1", start, end)
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected not found for empty week, got %v", err)
	}
	if analyzer.calls != 0 {
		t.Fatalf("analyzer must not run for an empty week")
	}

	letters, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(letters) != 0 {
		t.Fatalf("nothing should be persisted, got %d letters", len(letters))
	}
}

func TestGenerateAndFetch(t *testing.T) {
	store := memory.New()
	analyzer := &fakeAnalyzer{letter: "dear past self, you did well"}
	svc := New(store, store, analyzer, nil)
	ctx := context.Background()

	if _, err := store.CreateEntry(ctx, domain.Entry{
		UserID:  "u1",
		Content: "a long week",
		Mood:    domain.MoodStressed,
	}); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	start := letterdom.NewDate(time.Now().AddDate(0, 0, -7))
	end := letterdom.NewDate(time.Now())

	letter, err := svc.Generate(ctx, "u1", start, end)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if letter.Content != analyzer.letter {
		t.Fatalf("unexpected letter content %q", letter.Content)
	}
	if letter.ID == "" || letter.UserID != "u1" {
		t.Fatalf("letter not persisted correctly: %+v", letter)
	}

	got, err := svc.GetByWeek(ctx, "u1", start, end)
	if err != nil {
		t.Fatalf("get by week: %v", err)
	}
	if got.ID != letter.ID {
		t.Fatalf("fetched a different letter")
	}

	// Another user's identical week has no letter.
	if _, err := svc.GetByWeek(ctx, "u2", start, end); !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
}

func TestGenerateAnalyzerFailureDoesNotPersist(t *testing.T) {
	store := memory.New()
	analyzer := &fakeAnalyzer{err: errors.AnalysisFailed(context.DeadlineExceeded)}
	svc := New(store, store, analyzer, nil)
	ctx := context.Background()

	if _, err := store.CreateEntry(ctx, domain.Entry{UserID: "u1", Content: "x", Mood: domain.MoodCalm}); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	start := letterdom.NewDate(time.Now().AddDate(0, 0, -7))
	end := letterdom.NewDate(time.Now())

	if _, err := svc.Generate(ctx, "u1", start, end); !errors.IsCode(err, errors.CodeAnalysisFailed) {
		t.Fatalf("expected analysis failure, got %v", err)
	}

	letters, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(letters) != 0 {
		t.Fatalf("failed generation must not persist, got %d letters", len(letters))
	}
}

func TestGenerateValidatesWindow(t *testing.T) {
	store := memory.New()
	svc := New(store, store, &fakeAnalyzer{letter: "x"}, nil)
	ctx := context.Background()

	start := letterdom.NewDate(time.Now())
	end := letterdom.NewDate(time.Now().AddDate(0, 0, -7))

	if _, err := svc.Generate(ctx, "u1", start, end); !errors.IsCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected invalid input for inverted window, got %v", err)
	}
	if _, err := svc.Generate(ctx, "u1", letterdom.Date{}, end); !errors.IsCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected invalid input for zero weekStart, got %v", err)
	}
}
