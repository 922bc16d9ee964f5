package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/board"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := InitDB(filepath.Join(t.TempDir(), "taskboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitDB_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard.db")

	db, err := InitDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDB(path)
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	require.NoError(t, db.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name"))
	assert.Equal(t, []string{"sessions", "user_data", "users"}, tables)
}

func TestSessionStore_TokenLifecycle(t *testing.T) {
	store := NewSessionStore(openTestDB(t))

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SetToken("abc"))
	token, err = store.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.SetToken("def"))
	token, _ = store.Token()
	assert.Equal(t, "def", token)

	require.NoError(t, store.Clear())
	token, err = store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSessionStore_ExpiredTokenReadsAsAbsent(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(openTestDB(t), WithClock(func() time.Time { return now }))

	require.NoError(t, store.SaveToken("abc", now.Add(time.Minute)))
	expires, err := store.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, expires.Equal(now.Add(time.Minute)))

	now = now.Add(2 * time.Minute)
	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = store.ExpiresAt()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionStore_DefaultAndCustomExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := WithClock(func() time.Time { return now })

	store := NewSessionStore(openTestDB(t), clock)
	require.NoError(t, store.SetToken("abc"))
	expires, err := store.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, expires.Equal(now.Add(DefaultTokenLifetime)))

	custom := NewSessionStore(openTestDB(t), clock, WithExpiry(func(token string) time.Time {
		assert.Equal(t, "xyz", token)
		return now.Add(time.Hour)
	}))
	require.NoError(t, custom.SetToken("xyz"))
	expires, err = custom.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, expires.Equal(now.Add(time.Hour)))
}

func TestSessionStore_CachedUser(t *testing.T) {
	store := NewSessionStore(openTestDB(t))

	assert.ErrorIs(t, store.SaveUser(&api.User{ID: 1}), ErrNoSession)
	_, err := store.User()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.SetToken("abc"))
	user, err := store.User()
	require.NoError(t, err)
	assert.Nil(t, user)

	want := &api.User{ID: 7, Name: "Ada", Email: "ada@example.com", Role: api.RoleManager}
	require.NoError(t, store.SaveUser(want))

	// a refreshed token keeps the profile
	require.NoError(t, store.SetToken("def"))
	user, err = store.User()
	require.NoError(t, err)
	assert.Equal(t, want, user)

	require.NoError(t, store.Clear())
	_, err = store.User()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDataService_Defaults(t *testing.T) {
	svc := NewDataService(openTestDB(t))

	prefs, err := svc.GetUserData(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, &Preferences{Filters: board.DefaultFilters()}, prefs)
}

func TestDataService_SaveAndUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewDataService(openTestDB(t))

	first := &Preferences{
		SelectedProject: 4,
		Filters: board.Filters{
			Status:    []string{"todo"},
			DateField: "updated_at",
			SortBy:    "priority",
			SortOrder: "desc",
		},
		Language: "fr",
	}
	require.NoError(t, svc.SaveUserData(ctx, "ada@example.com", first))

	got, err := svc.GetUserData(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := &Preferences{SelectedProject: 9, Filters: board.DefaultFilters()}
	require.NoError(t, svc.SaveUserData(ctx, "ada@example.com", second))

	got, err = svc.GetUserData(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, second, got)

	other, err := svc.GetUserData(ctx, "lin@example.com")
	require.NoError(t, err)
	assert.Zero(t, other.SelectedProject)
}
