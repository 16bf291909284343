// Package storage provides durable client storage: the place a client context keeps its
// auth token and user profile between runs or page loads.
package storage

import "context"

// Storage is string key/value storage for a single client context.
type Storage interface {
	// Get returns the value under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Provider opens the storage namespace of one client id.
type Provider interface {
	Open(clientID string) Storage
}
