package models

import "time"

// DefaultAvatar is the placeholder picture every new account starts with.
// It is never deleted by the avatar store.
const DefaultAvatar = "default.jpg"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
