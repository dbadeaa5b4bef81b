package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/api"
	"ripple/internal/models"
	"ripple/internal/session"
	"ripple/internal/store"
)

type fakeAuthAPI struct {
	loginResp  *api.LoginResponse
	loginErr   error
	profile    *models.User
	profileErr error
}

func (f *fakeAuthAPI) Login(_ context.Context, _, _ string) (*api.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Profile(_ context.Context) (*models.User, error) {
	return f.profile, f.profileErr
}

func authFixture(authAPI *fakeAuthAPI) (*AuthService, *session.Manager, *store.Store) {
	sessions := session.NewManager(session.NewMemoryStore())
	st := store.New()
	return NewAuthService(authAPI, sessions, st), sessions, st
}

func TestAuthService_Login(t *testing.T) {
	authAPI := &fakeAuthAPI{
		loginResp: &api.LoginResponse{
			Token: "tok-1",
			User:  models.User{ID: 7, Username: "ada"},
		},
	}
	svc, sessions, st := authFixture(authAPI)

	user, err := svc.Login(context.Background(), "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)

	token, err := sessions.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.True(t, st.Session().IsAuthenticated)
}

func TestAuthService_LoginFailureLeavesStateClean(t *testing.T) {
	authAPI := &fakeAuthAPI{loginErr: models.NewServerRejectedError(401, "invalid credentials")}
	svc, sessions, st := authFixture(authAPI)

	_, err := svc.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())

	_, err = sessions.Token()
	assert.True(t, models.HasCode(err, models.CodeAuthRequired))
	assert.False(t, st.Session().IsAuthenticated)
}

func TestAuthService_LogoutClearsEverything(t *testing.T) {
	authAPI := &fakeAuthAPI{
		loginResp: &api.LoginResponse{Token: "tok-1", User: models.User{ID: 7}},
	}
	svc, sessions, st := authFixture(authAPI)

	_, err := svc.Login(context.Background(), "ada@example.com", "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background()))

	// A realtime connect after logout has no token to present.
	_, err = sessions.Token()
	assert.True(t, models.HasCode(err, models.CodeAuthRequired))
	assert.False(t, st.Session().IsAuthenticated)
}

func TestAuthService_BootstrapWithoutPersistedSession(t *testing.T) {
	svc, _, st := authFixture(&fakeAuthAPI{})

	user, err := svc.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.False(t, st.Session().IsAuthenticated)
}

func TestAuthService_BootstrapConfirmsPersistedSession(t *testing.T) {
	persisted := session.NewMemoryStore()
	require.NoError(t, persisted.Save(context.Background(), &models.Session{
		Token:           "tok-1",
		User:            &models.User{ID: 7, Username: "ada"},
		IsAuthenticated: true,
	}))

	sessions := session.NewManager(persisted)
	st := store.New()
	authAPI := &fakeAuthAPI{profile: &models.User{ID: 7, Username: "ada", Bio: "updated"}}
	svc := NewAuthService(authAPI, sessions, st)

	user, err := svc.Bootstrap(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "updated", user.Bio)
	assert.True(t, st.Session().IsAuthenticated)
}

func TestAuthService_BootstrapRejectedTokenClearsSession(t *testing.T) {
	persisted := session.NewMemoryStore()
	require.NoError(t, persisted.Save(context.Background(), &models.Session{
		Token:           "tok-revoked",
		IsAuthenticated: true,
	}))

	sessions := session.NewManager(persisted)
	st := store.New()
	authAPI := &fakeAuthAPI{profileErr: models.NewAuthRequiredError("token revoked")}
	svc := NewAuthService(authAPI, sessions, st)

	user, err := svc.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)

	loaded, err := persisted.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.False(t, st.Session().IsAuthenticated)
}
