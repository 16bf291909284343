package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"castella/internal/storage"
)

func testUser() *UserProfile {
	return &UserProfile{
		ID:          "u-1",
		DisplayName: "Ana Torres",
		Email:       "ana@castella.test",
		Role:        Role{ID: "r-1", Name: "SUPERVISOR"},
		Extra:       map[string]any{"celular": "0991234567", "activo": true},
	}
}

func TestLoginThenReloadRestoresSession(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()

	store := NewStore(mem, nil)
	require.NoError(t, store.Login(ctx, testUser(), "tok-123"))

	reloaded := NewStore(mem, nil)
	require.NoError(t, reloaded.Initialize(ctx))

	assert.Equal(t, "tok-123", reloaded.CurrentToken())
	assert.Equal(t, testUser(), reloaded.CurrentUser())
}

func TestLoginRequiresUserAndToken(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	store := NewStore(mem, nil)

	assert.ErrorIs(t, store.Login(ctx, nil, "tok"), ErrInvalidLogin)
	assert.ErrorIs(t, store.Login(ctx, testUser(), ""), ErrInvalidLogin)

	_, ok, err := mem.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok, "rejected login must not write storage")
	assert.False(t, store.Snapshot().Authenticated())
}

func TestLoginOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory(), nil)

	require.NoError(t, store.Login(ctx, testUser(), "first"))
	second := testUser()
	second.ID = "u-2"
	require.NoError(t, store.Login(ctx, second, "second"))

	assert.Equal(t, "second", store.CurrentToken())
	assert.Equal(t, "u-2", store.CurrentUser().ID)
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	store := NewStore(mem, nil)

	require.NoError(t, store.Logout(ctx))
	assert.Empty(t, store.CurrentToken())
	assert.Nil(t, store.CurrentUser())

	require.NoError(t, store.Login(ctx, testUser(), "tok"))
	require.NoError(t, store.Logout(ctx))
	require.NoError(t, store.Logout(ctx))

	assert.Empty(t, store.CurrentToken())
	assert.Nil(t, store.CurrentUser())
	_, ok, _ := mem.Get(ctx, TokenKey)
	assert.False(t, ok)
	_, ok, _ = mem.Get(ctx, UserKey)
	assert.False(t, ok)
}

func TestInitializeFailsClosedOnCorruptUser(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, TokenKey, "tok"))
	require.NoError(t, mem.Set(ctx, UserKey, "{not json"))

	store := NewStore(mem, nil)
	require.NoError(t, store.Initialize(ctx))

	assert.Nil(t, store.CurrentUser())
	assert.False(t, store.Snapshot().Authenticated())
}

func TestInitializeEmptyStorage(t *testing.T) {
	store := NewStore(storage.NewMemory(), nil)
	require.NoError(t, store.Initialize(context.Background()))
	assert.Equal(t, Session{}, store.Snapshot())
}

func TestInitializeTokenWithoutUser(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, TokenKey, "tok"))

	store := NewStore(mem, nil)
	require.NoError(t, store.Initialize(ctx))

	snap := store.Snapshot()
	assert.True(t, snap.Authenticated())
	assert.Nil(t, snap.User)
}

func TestInitializeUserWithoutToken(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, UserKey, `{"_id":"u-1","nombre":"Ana"}`))

	store := NewStore(mem, nil)
	require.NoError(t, store.Initialize(ctx))

	assert.Equal(t, Session{}, store.Snapshot())
}

func TestFailedLogoutDoesNotResurrectUser(t *testing.T) {
	ctx := context.Background()

	for _, key := range []string{TokenKey, UserKey} {
		t.Run(key, func(t *testing.T) {
			mem := storage.NewMemory()
			fs := &failingStorage{Storage: mem}
			store := NewStore(fs, nil)
			require.NoError(t, store.Login(ctx, testUser(), "tok"))

			fs.failDeleteKey = key
			require.Error(t, store.Logout(ctx))
			assert.False(t, store.Snapshot().Authenticated())

			reloaded := NewStore(mem, nil)
			require.NoError(t, reloaded.Initialize(ctx))
			snap := reloaded.Snapshot()
			if snap.User != nil {
				assert.True(t, snap.Authenticated(), "a user is never restored without its token")
			}
			if key == UserKey {
				assert.Equal(t, Session{}, snap)
			}
		})
	}
}

func TestCurrentUserReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory(), nil)
	require.NoError(t, store.Login(ctx, testUser(), "tok"))

	u := store.CurrentUser()
	u.Role.Name = "ADMINISTRADOR"
	u.Extra["celular"] = "changed"

	assert.Equal(t, "SUPERVISOR", store.CurrentUser().Role.Name)
	assert.Equal(t, "0991234567", store.CurrentUser().Extra["celular"])
}

type failingStorage struct {
	storage.Storage
	failKey       string
	failDeleteKey string
}

func (f *failingStorage) Delete(ctx context.Context, key string) error {
	if key == f.failDeleteKey {
		return errors.New("io error")
	}
	return f.Storage.Delete(ctx, key)
}

func (f *failingStorage) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Storage.Set(ctx, key, value)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	fs := &failingStorage{Storage: mem}
	store := NewStore(fs, nil)

	require.NoError(t, store.Login(ctx, testUser(), "first"))

	fs.failKey = UserKey
	other := testUser()
	other.ID = "u-2"
	require.Error(t, store.Login(ctx, other, "second"))

	assert.Equal(t, "first", store.CurrentToken())
	assert.Equal(t, "u-1", store.CurrentUser().ID)

	stored, _, err := mem.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "first", stored, "storage rolled back to the previous session")
}
