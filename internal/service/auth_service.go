// Package service contains the coordinators between the REST/realtime
// collaborators and the local store. Coordinators do the I/O, classify
// failures, and dispatch results into the store; the store itself never
// performs I/O.
package service

import (
	"context"

	"ripple/internal/api"
	"ripple/internal/models"
	"ripple/internal/session"
	"ripple/internal/store"
)

// AuthAPI is the slice of the REST client the auth coordinator needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Profile(ctx context.Context) (*models.User, error)
}

// AuthService coordinates login, logout, and silent re-authentication
// between the REST client, the session manager, and the local store.
type AuthService struct {
	api      AuthAPI
	sessions *session.Manager
	store    *store.Store
}

// NewAuthService creates an AuthService.
func NewAuthService(authAPI AuthAPI, sessions *session.Manager, st *store.Store) *AuthService {
	return &AuthService{api: authAPI, sessions: sessions, store: st}
}

// Login authenticates, persists the session, and installs it in the store.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := resp.User
	if err := s.sessions.Login(ctx, resp.Token, &user); err != nil {
		return nil, err
	}
	s.store.Login(resp.Token, &user)
	return &user, nil
}

// Logout clears the session everywhere. A subsequent realtime connect
// fails with AuthRequired until the next login.
func (s *AuthService) Logout(ctx context.Context) error {
	s.store.Logout()
	return s.sessions.Logout(ctx)
}

// Bootstrap attempts silent re-authentication from the persisted session.
// A locally expired token was already discarded by the session manager; a
// token the server rejects clears the session. Returns the authenticated
// user, or nil when the client starts logged out.
func (s *AuthService) Bootstrap(ctx context.Context) (*models.User, error) {
	if err := s.sessions.Bootstrap(ctx); err != nil {
		return nil, err
	}

	snapshot := s.sessions.Snapshot()
	if !snapshot.IsAuthenticated {
		return nil, nil
	}

	user, err := s.api.Profile(ctx)
	if err != nil {
		if models.HasCode(err, models.CodeAuthRequired) {
			_ = s.sessions.Logout(ctx)
			s.store.Logout()
			return nil, nil
		}
		return nil, err
	}

	if err := s.sessions.SetUser(ctx, user); err != nil {
		return nil, err
	}
	s.store.Login(snapshot.Token, user)
	return user, nil
}
