package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an actor in the editorial process. Authentication and credential
// storage live outside this service; the workflow engine only reads role and
// enabled to validate assignment eligibility.
type User struct {
	ID uuid.UUID `json:"id"`

	// Email is unique across users.
	Email string `json:"email"`

	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Institution string `json:"institution,omitempty"`
	Department  string `json:"department,omitempty"`
	Bio         string `json:"bio,omitempty"`

	// Role determines assignment eligibility.
	Role Role `json:"role"`

	// Enabled users may be assigned; disabled users keep their history but
	// are ineligible for new assignments.
	Enabled bool `json:"enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
