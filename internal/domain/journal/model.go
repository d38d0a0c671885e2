// Package journal defines journal entries, the mood enumeration and the
// aggregate views computed over them.
package journal

import (
	"encoding/json"
	"time"
)

// Mood is one of the six fixed emotional states an entry can carry.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodCalm     Mood = "calm"
	MoodNeutral  Mood = "neutral"
	MoodSad      Mood = "sad"
	MoodAnxious  Mood = "anxious"
	MoodStressed Mood = "stressed"
)

// Moods returns the enumeration in its fixed order. The order is load-bearing:
// the weekly summary breaks dominant-mood ties by first occurrence in this
// slice.
func Moods() []Mood {
	return []Mood{MoodHappy, MoodCalm, MoodNeutral, MoodSad, MoodAnxious, MoodStressed}
}

// Valid reports whether m is a member of the enumeration.
func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodCalm, MoodNeutral, MoodSad, MoodAnxious, MoodStressed:
		return true
	}
	return false
}

// Normalize returns m when valid and the safe default otherwise. Collaborator
// output passes through here before it is trusted for storage.
func (m Mood) Normalize() Mood {
	if m.Valid() {
		return m
	}
	return MoodNeutral
}

// Entry is a single journal entry owned by exactly one user.
type Entry struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Content     string     `json:"content" db:"content"`
	Mood        Mood       `json:"mood" db:"mood"`
	Reflection  *string    `json:"reflection" db:"reflection"`
	Suggestions []string   `json:"suggestions" db:"-"`
	ColorHint   *string    `json:"color_hint" db:"color_hint"`
	IsReframed  bool       `json:"is_reframed" db:"is_reframed"`
	UnlockAt    *time.Time `json:"unlock_at" db:"unlock_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Unlocked reports whether the entry is a time capsule whose unlock instant
// has passed. Entries without unlock_at are not time capsules.
func (e Entry) Unlocked(now time.Time) bool {
	return e.UnlockAt != nil && !e.UnlockAt.After(now)
}

// Patch is the whitelist of client-updatable entry fields. A nil pointer with
// its Clear flag unset means "leave unchanged"; any submitted field outside
// the whitelist is ignored before it gets here.
type Patch struct {
	Content     *string
	Mood        *Mood
	Reflection  *string
	Suggestions *[]string
	ColorHint   *string
	IsReframed  *bool
	UnlockAt    *time.Time

	// The Clear flags record an explicit JSON null on a nullable field,
	// which is a request to erase it, not to leave it alone.
	ClearReflection bool
	ClearColorHint  bool
	ClearUnlockAt   bool
}

// UnmarshalJSON applies the field whitelist and keeps "present and null"
// distinguishable from "absent", so clients can clear unlock_at, reflection
// and color_hint.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		isNull := string(value) == "null"
		var err error
		switch key {
		case "content":
			err = json.Unmarshal(value, &p.Content)
		case "mood":
			err = json.Unmarshal(value, &p.Mood)
		case "reflection":
			p.ClearReflection = isNull
			err = json.Unmarshal(value, &p.Reflection)
		case "suggestions":
			err = json.Unmarshal(value, &p.Suggestions)
		case "color_hint":
			p.ClearColorHint = isNull
			err = json.Unmarshal(value, &p.ColorHint)
		case "is_reframed":
			err = json.Unmarshal(value, &p.IsReframed)
		case "unlock_at":
			p.ClearUnlockAt = isNull
			err = json.Unmarshal(value, &p.UnlockAt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// MoodStats maps every mood to its entry count; absent moods are zero-filled.
type MoodStats map[Mood]int

// NewMoodStats returns a zero-filled stats map.
func NewMoodStats() MoodStats {
	stats := make(MoodStats, len(Moods()))
	for _, m := range Moods() {
		stats[m] = 0
	}
	return stats
}

// WeeklySummary aggregates the trailing seven days of entries.
type WeeklySummary struct {
	TotalEntries     int       `json:"totalEntries"`
	MoodDistribution MoodStats `json:"moodDistribution"`
	DominantMood     Mood      `json:"dominantMood"`
	WeekStart        time.Time `json:"weekStart"`
	WeekEnd          time.Time `json:"weekEnd"`
}
