package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/models"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ripple.db"))
	require.NoError(t, err)
	return store
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Session{
		Token:           "tok-1",
		User:            &models.User{ID: 7, Username: "ada"},
		IsAuthenticated: true,
	}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tok-1", loaded.Token)
	assert.True(t, loaded.IsAuthenticated)
	require.NotNil(t, loaded.User)
	assert.Equal(t, uint(7), loaded.User.ID)
}

func TestSQLiteStore_SaveReplacesSingleton(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Session{Token: "tok-1"}))
	require.NoError(t, store.Save(ctx, &models.Session{Token: "tok-2"}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tok-2", loaded.Token)
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	store := newSQLiteStore(t)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteStore_ClearIsIdempotent(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Session{Token: "tok-1"}))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteStore_SessionWithoutUser(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Session{Token: "tok-1"}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Nil(t, loaded.User)
	assert.True(t, loaded.IsAuthenticated)
}
