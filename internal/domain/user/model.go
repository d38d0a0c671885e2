// Package user defines the credential record and its public projection.
package user

import "time"

// User is a credential record. PasswordHash never leaves the store layer in
// serialized form.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Public is the client-visible user view returned by auth endpoints.
type Public struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Public projects the credential record to its client-visible view.
func (u User) Public() Public {
	return Public{ID: u.ID, Email: u.Email, FullName: u.FullName}
}
