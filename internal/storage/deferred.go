package storage

import (
	"context"
	"sync"
)

// Deferred is storage for a client id that was just issued and so holds nothing yet. Reads
// and deletes are answered without touching the provider; the namespace is opened on the
// first Set.
type Deferred struct {
	provider Provider
	clientID string

	mu     sync.Mutex
	opened Storage
}

func NewDeferred(p Provider, clientID string) *Deferred {
	return &Deferred{provider: p, clientID: clientID}
}

func (d *Deferred) Get(ctx context.Context, key string) (string, bool, error) {
	if st := d.current(); st != nil {
		return st.Get(ctx, key)
	}
	return "", false, nil
}

func (d *Deferred) Set(ctx context.Context, key, value string) error {
	d.mu.Lock()
	if d.opened == nil {
		d.opened = d.provider.Open(d.clientID)
	}
	st := d.opened
	d.mu.Unlock()
	return st.Set(ctx, key, value)
}

func (d *Deferred) Delete(ctx context.Context, key string) error {
	if st := d.current(); st != nil {
		return st.Delete(ctx, key)
	}
	return nil
}

// Opened reports whether the namespace has been opened.
func (d *Deferred) Opened() bool {
	return d.current() != nil
}

func (d *Deferred) current() Storage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened
}
