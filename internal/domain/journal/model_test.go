package journal

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPatchDistinguishesNullFromAbsent(t *testing.T) {
	var absent Patch
	if err := json.Unmarshal([]byte(`{"content":"hi"}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.ClearUnlockAt || absent.ClearReflection || absent.ClearColorHint {
		t.Fatalf("absent fields must not read as cleared: %+v", absent)
	}
	if absent.Content == nil || *absent.Content != "hi" {
		t.Fatalf("content not decoded")
	}

	var cleared Patch
	if err := json.Unmarshal([]byte(`{"unlock_at":null,"reflection":null}`), &cleared); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !cleared.ClearUnlockAt || !cleared.ClearReflection {
		t.Fatalf("explicit nulls must read as cleared: %+v", cleared)
	}
	if cleared.ClearColorHint {
		t.Fatalf("color_hint was never submitted")
	}
	if cleared.UnlockAt != nil || cleared.Reflection != nil {
		t.Fatalf("cleared fields must carry nil values")
	}

	var set Patch
	if err := json.Unmarshal([]byte(`{"unlock_at":"2026-06-01T00:00:00Z"}`), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if set.ClearUnlockAt {
		t.Fatalf("a concrete value is not a clear")
	}
	want := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if set.UnlockAt == nil || !set.UnlockAt.Equal(want) {
		t.Fatalf("unlock_at not decoded: %v", set.UnlockAt)
	}
}

func TestPatchIgnoresNonWhitelistedFields(t *testing.T) {
	var p Patch
	payload := `{"id":"evil","user_id":"someone-else","created_at":"2020-01-01T00:00:00Z","mood":"calm"}`
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Mood == nil || *p.Mood != MoodCalm {
		t.Fatalf("whitelisted field dropped")
	}
	if p.Content != nil || p.UnlockAt != nil {
		t.Fatalf("unexpected fields populated: %+v", p)
	}
}
