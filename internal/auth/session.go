package auth

import (
	"context"

	"castella/internal/session"
)

// contextKey prevents collisions with other context values.
type contextKey string

const (
	storeKey  contextKey = "castella:session"
	clientKey contextKey = "castella:client"
	freshKey  contextKey = "castella:fresh-client"
)

// WithStore stores the request's session store on the context.
func WithStore(ctx context.Context, s *session.Store) context.Context {
	if s == nil {
		return ctx
	}
	return context.WithValue(ctx, storeKey, s)
}

// StoreFromContext retrieves the session store, when available.
func StoreFromContext(ctx context.Context) (*session.Store, bool) {
	s, ok := ctx.Value(storeKey).(*session.Store)
	return s, ok
}

// WithClientID records which client context the request belongs to.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientKey, id)
}

// ClientIDFromContext returns the client id, or "" when unset.
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientKey).(string)
	return id
}

// WithNewClient marks the request's client id as issued by this request.
func WithNewClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshKey, true)
}

// IsNewClient reports whether the client id was issued by this request, in which case its
// storage cannot hold anything yet.
func IsNewClient(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshKey).(bool)
	return fresh
}
