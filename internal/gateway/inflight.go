package gateway

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the cancellation cause of a call replaced by a newer one.
var ErrSuperseded = errors.New("superseded by a newer request")

// Inflight tracks the latest call per key. Starting a call under a key cancels the previous
// call under that key, and only the latest call may commit its result.
type Inflight struct {
	mu    sync.Mutex
	seq   uint64
	calls map[string]*Ticket
}

func NewInflight() *Inflight {
	return &Inflight{calls: make(map[string]*Ticket)}
}

// Ticket identifies one tracked call.
type Ticket struct {
	owner  *Inflight
	key    string
	id     uint64
	cancel context.CancelCauseFunc
}

// Begin registers a call under key and returns the context it must run with.
func (f *Inflight) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	callCtx, cancel := context.WithCancelCause(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if prev, ok := f.calls[key]; ok {
		prev.cancel(ErrSuperseded)
	}
	f.seq++
	t := &Ticket{owner: f, key: key, id: f.seq, cancel: cancel}
	f.calls[key] = t
	return callCtx, t
}

// Current reports whether no newer call has started under the same key.
func (t *Ticket) Current() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return t.owner.calls[t.key] == t
}

// Commit runs apply only while the call is still the latest and reports whether it ran.
func (t *Ticket) Commit(apply func()) bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.owner.calls[t.key] != t {
		return false
	}
	apply()
	return true
}

// Done releases the call. It must be called once the call finishes.
func (t *Ticket) Done() {
	t.owner.mu.Lock()
	if t.owner.calls[t.key] == t {
		delete(t.owner.calls, t.key)
	}
	t.owner.mu.Unlock()
	t.cancel(context.Canceled)
}

// Superseded reports whether ctx was cancelled because a newer call replaced it.
func Superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrSuperseded)
}
