package models

import "time"

// Role is the account type chosen at bootstrap.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
)

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleLecturer
}

// User is the identity root keyed by the identity provider subject.
type User struct {
	ID               string    `db:"id" json:"id"`
	FirebaseUID      string    `db:"firebase_uid" json:"firebase_uid"`
	Email            *string   `db:"email" json:"email,omitempty"`
	Name             *string   `db:"name" json:"name,omitempty"`
	Role             Role      `db:"role" json:"role"`
	ExternalID       *string   `db:"external_id" json:"external_id,omitempty"`
	Department       *string   `db:"department" json:"department,omitempty"`
	ProfileCompleted bool      `db:"profile_completed" json:"profile_completed"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// HasCompleteProfile reports whether both registration number and department are set.
func (u *User) HasCompleteProfile() bool {
	return u.ExternalID != nil && *u.ExternalID != "" && u.Department != nil && *u.Department != ""
}
