// Package profile defines the display profile attached to each credential.
package profile

import "time"

// Profile is a user's display profile, created alongside the credential at
// signup.
type Profile struct {
	UserID    string    `json:"user_id" db:"user_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Patch is the whitelist of client-updatable profile fields.
type Patch struct {
	FullName *string `json:"full_name"`
}
