package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ripple/internal/models"
	"ripple/internal/observability"
)

// Manager holds the current session in memory and keeps the persisted copy
// in sync. All reads go through Snapshot; nothing outside this package
// mutates the session.
type Manager struct {
	mu      sync.RWMutex
	store   Store
	current models.Session
}

// NewManager creates a Manager backed by the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Bootstrap loads the persisted session for silent re-authentication. A
// persisted token that is locally expired is discarded so the caller sees
// the unauthenticated state instead of a doomed handshake.
func (m *Manager) Bootstrap(ctx context.Context) error {
	persisted, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	if persisted == nil || persisted.Token == "" {
		return nil
	}

	if tokenExpired(persisted.Token) {
		observability.GlobalLogger.InfoContext(ctx, "persisted token expired, clearing session",
			slog.String("component", "session"))
		return m.store.Clear(ctx)
	}

	m.mu.Lock()
	m.current = models.Session{
		Token:           persisted.Token,
		User:            persisted.User,
		IsAuthenticated: true,
	}
	m.mu.Unlock()
	return nil
}

// Login installs a fresh session and persists it.
func (m *Manager) Login(ctx context.Context, token string, user *models.User) error {
	m.mu.Lock()
	m.current = models.Session{
		Token:           token,
		User:            user,
		IsAuthenticated: true,
	}
	snapshot := m.current
	m.mu.Unlock()

	return m.store.Save(ctx, &snapshot)
}

// Logout resets the session to its unauthenticated zero value and clears
// the persisted copy.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = models.Session{}
	m.mu.Unlock()

	return m.store.Clear(ctx)
}

// SetUser replaces the cached user object, e.g. after a profile update.
// No-op when unauthenticated.
func (m *Manager) SetUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	if !m.current.IsAuthenticated {
		m.mu.Unlock()
		return nil
	}
	m.current.User = user
	snapshot := m.current
	m.mu.Unlock()

	return m.store.Save(ctx, &snapshot)
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token returns the current bearer token, or AuthRequired when there is
// no valid session.
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.current.IsAuthenticated || m.current.Token == "" {
		return "", models.NewAuthRequiredError("no active session, log in first")
	}
	return m.current.Token, nil
}

// tokenExpired decodes the JWT without verifying its signature (the client
// does not hold the secret) and checks the exp claim. Tokens that cannot
// be decoded are treated as expired.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// No exp claim means the server controls expiry; accept locally.
		return false
	}
	return exp.Before(time.Now())
}
