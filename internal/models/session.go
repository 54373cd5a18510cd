package models

import "time"

// Session is a server-side row backing one client-held credential.
// The token itself is opaque; everything the server needs lives here.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Live reports whether the session still resolves to its user at now.
func (s *Session) Live(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
