package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// ErrSessionNotFound indicates the token does not map to an active session.
// Unknown and expired tokens both surface as this error so callers cannot
// tell the two apart.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists issued session tokens so they survive process restarts.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Find(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Session represents an opaque credential bound to a user for a fixed window.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Manager issues, resolves and revokes session tokens backed by a persistent
// store. Expiry is absolute: the window is fixed at creation and never slides.
type Manager struct {
	ttl   time.Duration
	store SessionStore

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// NewManager constructs a Manager issuing sessions with the provided TTL.
func NewManager(ttl time.Duration, store SessionStore) *Manager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	return &Manager{ttl: ttl, store: store}
}

// Create generates a cryptographically random token for the user and persists
// it with an absolute expiry of now + TTL.
func (m *Manager) Create(ctx context.Context, userID string) (Session, error) {
	if userID == "" {
		return Session{}, errors.New("user id must be provided")
	}

	token, err := randomToken()
	if err != nil {
		return Session{}, err
	}

	session := Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: m.now().Add(m.ttl),
	}

	if err := m.store.Save(ctx, session); err != nil {
		return Session{}, err
	}

	return session, nil
}

// Resolve looks up the session for a token. Absent, unknown and expired
// tokens all return ErrSessionNotFound; expired rows are removed on the way
// out so the table does not accumulate dead sessions between sweeps.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrSessionNotFound
	}

	session, err := m.store.Find(ctx, token)
	if err != nil {
		return Session{}, err
	}

	if !m.now().Before(session.ExpiresAt) {
		_ = m.store.Delete(ctx, token)
		return Session{}, ErrSessionNotFound
	}

	return session, nil
}

// Delete revokes the session for a token. Idempotent: revoking a token that
// is absent or already revoked is not an error.
func (m *Manager) Delete(ctx context.Context, token string) {
	if token == "" {
		return
	}
	_ = m.store.Delete(ctx, token)
}

// PurgeExpired removes all sessions whose expiry has elapsed and reports how
// many rows were swept.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

func (m *Manager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc().UTC()
	}
	return time.Now().UTC()
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
