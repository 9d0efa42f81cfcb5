package session

import (
	"errors"
	"time"

	"gymfront/internal/domain/role"
)

// MaxAge is the upper bound on a session's lifetime.
const MaxAge = 24 * time.Hour

// ErrNotFound is returned when a token has no live session.
var ErrNotFound = errors.New("session not found")

// Session is the identity context of a logged-in user.
// AccessToken is the backend bearer token; it never leaves the server.
type Session struct {
	UserID      int64     `json:"user_id"`
	ProfileID   int64     `json:"profile_id,omitempty"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Nombre      string    `json:"nombre"`
	Role        role.Role `json:"role"`
	AccessToken string    `json:"access_token"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// DisplayName is the name shown in the page header.
func (s Session) DisplayName() string {
	if s.Nombre != "" {
		return s.Nombre
	}
	return s.Username
}

// ExpiryFor returns the session expiry: the earlier of created+MaxAge and tokenExpiry.
// A zero tokenExpiry means the token carries no expiry.
func ExpiryFor(created, tokenExpiry time.Time) time.Time {
	limit := created.Add(MaxAge)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(limit) {
		return tokenExpiry
	}
	return limit
}
