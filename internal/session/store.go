// Package session owns the authenticated identity of the running client
// and its persistence across restarts.
package session

import (
	"context"

	"ripple/internal/models"
)

// Store defines the interface for persisted session state. Implementations
// hold at most one session per client installation.
type Store interface {
	// Save persists the session, replacing any previous one.
	Save(ctx context.Context, session *models.Session) error
	// Load retrieves the persisted session. A missing session is not an
	// error; Load returns (nil, nil).
	Load(ctx context.Context) (*models.Session, error)
	// Clear removes the persisted session. Idempotent.
	Clear(ctx context.Context) error
}

// MemoryStore is an in-process Store used by tests and as a fallback when
// no persistence is configured.
type MemoryStore struct {
	session *models.Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, session *models.Session) error {
	copied := *session
	s.session = &copied
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (*models.Session, error) {
	if s.session == nil {
		return nil, nil
	}
	copied := *s.session
	return &copied, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.session = nil
	return nil
}
