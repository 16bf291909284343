// Package gateway is the single outbound path to the back-office REST backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"castella/internal/config"
	"castella/internal/logging"
)

// TokenSource yields the token to attach to outgoing requests, or "" when there is none.
type TokenSource interface {
	CurrentToken() string
}

// RequestEditorFn runs on every outgoing request before it is sent.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Client sends requests to the backend and returns response bodies untouched. It never
// retries and defines no timeouts of its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	editors    []RequestEditorFn
	log        *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRequestEditor appends an interceptor that runs after the authorization one.
func WithRequestEditor(fn RequestEditorFn) Option {
	return func(c *Client) {
		if fn != nil {
			c.editors = append(c.editors, fn)
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = logging.OrNop(log)
	}
}

// New builds a client for baseURL, falling back to the local development backend when
// baseURL is empty. tokens is consulted on every request.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = config.DefaultAPIBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		editors:    []RequestEditorFn{AuthorizationEditor(tokens)},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AuthorizationEditor sets the Authorization header to the current token verbatim. With no
// token the request goes out unauthenticated and the backend decides what to do with it.
func AuthorizationEditor(tokens TokenSource) RequestEditorFn {
	return func(_ context.Context, req *http.Request) error {
		if tokens == nil {
			return nil
		}
		if token := tokens.CurrentToken(); token != "" {
			req.Header.Set("Authorization", token)
		}
		return nil
	}
}

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do sends one request. A non-2xx answer is returned as *APIError; the body of a 2xx answer
// is returned as-is.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimPrefix(path, "/"), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, edit := range c.editors {
		if err := edit(ctx, req); err != nil {
			return nil, fmt.Errorf("prepare %s %s: %w", method, path, err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(method, path, resp.StatusCode, data)
		c.log.Debug("backend rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}
