package backoffice

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"castella/internal/session"
	"castella/internal/storage"
)

const userBody = `{"_id":"u1","nombre":"Ana","correoPrincipal":"ana@example.com","rol":{"_id":"r1","nombre":"ADMINISTRADOR"}}`

func TestAuthenticateTokenShapes(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  string
	}{
		{name: "bare token and data user", token: `"tok-1"`, user: `{"ok":true,"data":` + userBody + `}`},
		{name: "data token and usuario user", token: `{"data":"tok-1"}`, user: `{"usuario":` + userBody + `}`},
		{name: "token field and bare user", token: `{"token":"tok-1"}`, user: userBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI().on(http.MethodPost, "/login", ok(tt.token), ok(tt.user))
			svc := NewService(api, nil)

			token, user, err := svc.Authenticate(context.Background(), Credentials{Email: " ana@example.com ", Password: "pw"})
			require.NoError(t, err)
			assert.Equal(t, "tok-1", token)
			assert.Equal(t, "ADMINISTRADOR", user.Role.Name)

			assert.Equal(t, true, api.bodyOf(0)["gethash"])
			assert.Equal(t, "ana@example.com", api.bodyOf(0)["correoPrincipal"])
			_, hashed := api.bodyOf(1)["gethash"]
			assert.False(t, hashed)
		})
	}
}

func TestLoginStoresOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store := session.NewStore(storage.NewMemory(), nil)
		api := newFakeAPI().on(http.MethodPost, "/login", ok(`"tok"`), ok(userBody))

		user, err := NewService(api, nil).Login(ctx, store, Credentials{Email: "ana@example.com", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "tok", store.CurrentToken())
		assert.Equal(t, "Ana", store.CurrentUser().DisplayName)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		store := session.NewStore(storage.NewMemory(), nil)
		api := newFakeAPI().on(http.MethodPost, "/login", fail(http.StatusUnauthorized, "Contraseña incorrecta"))

		_, err := NewService(api, nil).Login(ctx, store, Credentials{Email: "ana@example.com", Password: "bad"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAuthentication))
		var authErr *AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Contraseña incorrecta", authErr.Message)
		assert.False(t, store.Snapshot().Authenticated())
	})

	t.Run("profile missing", func(t *testing.T) {
		store := session.NewStore(storage.NewMemory(), nil)
		api := newFakeAPI().on(http.MethodPost, "/login", ok(`"tok"`), ok(`{"ok":true}`))

		_, err := NewService(api, nil).Login(ctx, store, Credentials{Email: "ana@example.com", Password: "pw"})
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.Empty(t, store.CurrentToken())
		assert.Nil(t, store.CurrentUser())
	})

	t.Run("token missing", func(t *testing.T) {
		store := session.NewStore(storage.NewMemory(), nil)
		api := newFakeAPI().on(http.MethodPost, "/login", ok(`{"ok":false}`))

		_, err := NewService(api, nil).Login(ctx, store, Credentials{Email: "ana@example.com", Password: "pw"})
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.Len(t, api.methodsAndPaths(), 1)
	})

	t.Run("blank credentials never reach the backend", func(t *testing.T) {
		api := newFakeAPI()
		_, err := NewService(api, nil).Login(ctx, session.NewStore(storage.NewMemory(), nil), Credentials{})
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.Empty(t, api.methodsAndPaths())
	})
}
