package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
	// RoleUser grants standard user access.
	RoleUser Role = "user"
)

// User represents an account backed by an identity from the external
// auth provider. Users are created lazily on the first verified
// assertion for an unseen subject and are never deleted by the server.
type User struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"` // Stable subject ID from the identity provider
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Email != "" {
		return u.Email
	}
	return u.Subject
}
