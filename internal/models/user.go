package models

import "time"

const (
	// RoleAdmin can manage other users.
	RoleAdmin = "admin"
	// RoleUser can only view the dashboard.
	RoleUser = "user"
)

// User is a local dashboard user.
type User struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	FirstName    string
	LastName     string
	Username     string
	PasswordHash string
	Role         string
	ID           int64
}

// DisplayName returns "First Last", falling back to the username.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is an authenticated login persisted between runs.
type Session struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !now.Before(s.ExpiresAt)
}

// Remaining returns the time left before expiry, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	if s == nil || !now.Before(s.ExpiresAt) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
