package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"castella/internal/config"
)

type staticToken string

func (s staticToken) CurrentToken() string { return string(s) }

type recorded struct {
	method, path, query, auth, contentType string
	hasAuth                                bool
	body                                   []byte
}

func newBackend(t *testing.T, status int, response string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		_, rec.hasAuth = r.Header["Authorization"]
		rec.auth = r.Header.Get("Authorization")
		rec.contentType = r.Header.Get("Content-Type")
		rec.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestAuthorizationHeaderInjection(t *testing.T) {
	t.Run("token attached verbatim", func(t *testing.T) {
		srv, rec := newBackend(t, http.StatusOK, `{}`)
		c, err := New(srv.URL+"/api", staticToken("abc"))
		require.NoError(t, err)

		_, err = c.Get(context.Background(), "/ordenes/1")
		require.NoError(t, err)
		assert.Equal(t, "abc", rec.auth)
		assert.Equal(t, "/api/ordenes/1", rec.path)
	})

	t.Run("no token no header", func(t *testing.T) {
		srv, rec := newBackend(t, http.StatusOK, `{}`)
		c, err := New(srv.URL, staticToken(""))
		require.NoError(t, err)

		_, err = c.Get(context.Background(), "ordenes/1")
		require.NoError(t, err)
		assert.False(t, rec.hasAuth)
	})

	t.Run("nil token source", func(t *testing.T) {
		srv, rec := newBackend(t, http.StatusOK, `{}`)
		c, err := New(srv.URL, nil)
		require.NoError(t, err)

		_, err = c.Get(context.Background(), "/x")
		require.NoError(t, err)
		assert.False(t, rec.hasAuth)
	})
}

func TestTokenReadPerRequest(t *testing.T) {
	srv, rec := newBackend(t, http.StatusOK, `{}`)
	tok := &mutableToken{}
	c, err := New(srv.URL, tok)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/a")
	require.NoError(t, err)
	assert.False(t, rec.hasAuth)

	tok.value = "later"
	_, err = c.Get(context.Background(), "/a")
	require.NoError(t, err)
	assert.Equal(t, "later", rec.auth)
}

type mutableToken struct{ value string }

func (m *mutableToken) CurrentToken() string { return m.value }

func TestRequestBodyAndQuery(t *testing.T) {
	srv, rec := newBackend(t, http.StatusOK, `{"ok":true}`)
	c, err := New(srv.URL+"/api/", nil)
	require.NoError(t, err)

	raw, err := c.Put(context.Background(), "/orden/7", map[string]string{"estado": "ASIGNADA"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/orden/7", rec.path)
	assert.Equal(t, "application/json", rec.contentType)
	assert.JSONEq(t, `{"estado":"ASIGNADA"}`, string(rec.body))

	_, err = c.Get(context.Background(), "/mantenimientos-pendientes?page=2&limit=25")
	require.NoError(t, err)
	assert.Equal(t, "page=2&limit=25", rec.query)
}

func TestNon2xxIsNeverSwallowed(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "mensaje field", status: http.StatusUnauthorized, body: `{"ok":false,"mensaje":"Credenciales incorrectas"}`, wantMessage: "Credenciales incorrectas"},
		{name: "message field", status: http.StatusBadRequest, body: `{"message":"bad input"}`, wantMessage: "bad input"},
		{name: "error field", status: http.StatusNotFound, body: `{"error":"not here"}`, wantMessage: "not here"},
		{name: "plain text", status: http.StatusBadGateway, body: `upstream down`, wantMessage: "upstream down"},
		{name: "html page", status: http.StatusInternalServerError, body: `<html>boom</html>`, wantMessage: ""},
		{name: "empty", status: http.StatusForbidden, body: ``, wantMessage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newBackend(t, tt.status, tt.body)
			c, err := New(srv.URL, nil)
			require.NoError(t, err)

			raw, err := c.Get(context.Background(), "/x")
			require.Error(t, err)
			assert.Nil(t, raw)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Equal(t, tt.status == http.StatusUnauthorized, IsUnauthorized(err))
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, nil)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/x")
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
}

func TestEmptyBody(t *testing.T) {
	srv, _ := newBackend(t, http.StatusNoContent, ``)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	raw, err := c.Delete(context.Background(), "/cliente/1")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestNewDefaultsAndValidation(t *testing.T) {
	c, err := New("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAPIBaseURL, c.BaseURL())

	_, err = New("ftp://example.com", nil)
	assert.Error(t, err)
}

func TestExtraEditorRunsAfterAuthorization(t *testing.T) {
	srv, rec := newBackend(t, http.StatusOK, `{}`)
	c, err := New(srv.URL, staticToken("abc"), WithRequestEditor(func(_ context.Context, req *http.Request) error {
		req.Header.Set("Authorization", req.Header.Get("Authorization")+"-seen")
		return nil
	}))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, "abc-seen", rec.auth)
}

func TestEditorErrorAbortsRequest(t *testing.T) {
	srv, rec := newBackend(t, http.StatusOK, `{}`)
	c, err := New(srv.URL, nil, WithRequestEditor(func(context.Context, *http.Request) error {
		return errors.New("nope")
	}))
	require.NoError(t, err)

	_, err = c.Post(context.Background(), "/x", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Empty(t, rec.method, "request must not be sent")
}
