// Package session implements the server-side session credential lifecycle:
// opaque tokens handed to clients, resolved back to a user id per request,
// revoked on logout or password reset.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quillboard/quillboard/internal/models"
	repo "github.com/quillboard/quillboard/internal/repository"
)

type Manager struct {
	sessions repo.Sessions
	ttl      time.Duration
	remember time.Duration
	now      func() time.Time
}

func NewManager(sessions repo.Sessions, ttl, remember time.Duration) *Manager {
	return &Manager{sessions: sessions, ttl: ttl, remember: remember, now: time.Now}
}

// Issue creates a fresh credential for userID. remember extends the
// lifetime from the default to the remember window.
func (m *Manager) Issue(ctx context.Context, userID int64, remember bool) (models.Session, error) {
	s := models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: m.now().Add(m.TTL(remember)),
	}
	if err := m.sessions.Create(ctx, s); err != nil {
		return models.Session{}, err
	}
	return s, nil
}

// Resolve maps a client-held credential to a user id. Unknown, revoked and
// expired credentials all read as anonymous.
func (m *Manager) Resolve(ctx context.Context, token string) (int64, bool) {
	if token == "" {
		return 0, false
	}
	s, err := m.sessions.Get(ctx, token)
	if err != nil || !s.Live(m.now()) {
		return 0, false
	}
	return s.UserID, true
}

func (m *Manager) Revoke(ctx context.Context, token string) error {
	return m.sessions.Revoke(ctx, token)
}

// RevokeAllForUser invalidates every live credential of a user, used after
// a password reset.
func (m *Manager) RevokeAllForUser(ctx context.Context, userID int64) error {
	return m.sessions.RevokeAllForUser(ctx, userID)
}

// PurgeExpired removes dead session rows. Safe to run at any time.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.sessions.DeleteExpired(ctx)
}

func (m *Manager) TTL(remember bool) time.Duration {
	if remember {
		return m.remember
	}
	return m.ttl
}
