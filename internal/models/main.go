// Package models defines the core data structures for users and tracking entries.
package models

import "time"

// Role is the authorization level of a user.
type Role string

const (
	// RoleUser is the default role assigned on registration.
	RoleUser Role = "user"
	// RoleAdmin may read and delete entries of any user.
	RoleAdmin Role = "admin"
)

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Name is the display name shown in rankings.
	Name string
	// Email is the normalized (trimmed, lower-case) login address.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// Role is the user's authorization level.
	Role Role
	// CreatedAt is the registration time.
	CreatedAt time.Time
}

// PublicUser is the outward projection of a User. It never carries the password hash.
type PublicUser struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Public returns the public fields of u without the creation time.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Profile returns the public fields of u including the creation time.
func (u *User) Profile() PublicUser {
	p := u.Public()
	created := u.CreatedAt
	p.CreatedAt = &created
	return p
}

// Identity is the authenticated actor derived from a verified token.
type Identity struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
