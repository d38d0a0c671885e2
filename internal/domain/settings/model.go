// Package settings defines per-user preference records.
package settings

import "time"

// Theme is the UI theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Settings holds a user's preferences. Exactly zero or one record exists per
// user; reads materialize the default record when absent.
type Settings struct {
	UserID               string    `json:"user_id" db:"user_id"`
	PrivacyMode          bool      `json:"privacy_mode" db:"privacy_mode"`
	KindFriendMode       bool      `json:"kind_friend_mode" db:"kind_friend_mode"`
	Theme                Theme     `json:"theme" db:"theme"`
	NotificationsEnabled bool      `json:"notifications_enabled" db:"notifications_enabled"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// Defaults returns the record created for a user who has none.
func Defaults(userID string) Settings {
	return Settings{
		UserID:               userID,
		PrivacyMode:          false,
		KindFriendMode:       false,
		Theme:                ThemeLight,
		NotificationsEnabled: true,
	}
}

// Patch is the whitelist of client-updatable settings fields.
type Patch struct {
	PrivacyMode          *bool  `json:"privacy_mode"`
	KindFriendMode       *bool  `json:"kind_friend_mode"`
	Theme                *Theme `json:"theme"`
	NotificationsEnabled *bool  `json:"notifications_enabled"`
}
