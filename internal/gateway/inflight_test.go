package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInflightSupersedes(t *testing.T) {
	f := NewInflight()

	oldCtx, oldTicket := f.Begin(context.Background(), "client-1:orders")
	newCtx, newTicket := f.Begin(context.Background(), "client-1:orders")
	defer newTicket.Done()

	assert.Error(t, oldCtx.Err())
	assert.True(t, Superseded(oldCtx))
	assert.NoError(t, newCtx.Err())

	assert.False(t, oldTicket.Current())
	assert.True(t, newTicket.Current())

	state := "fresh"
	assert.False(t, oldTicket.Commit(func() { state = "stale" }))
	assert.True(t, newTicket.Commit(func() { state = "newest" }))
	assert.Equal(t, "newest", state)

	oldTicket.Done()
	assert.True(t, newTicket.Current(), "finishing a stale call leaves the newer one registered")
}

func TestInflightKeysAreIndependent(t *testing.T) {
	f := NewInflight()

	ordersCtx, orders := f.Begin(context.Background(), "client-1:orders")
	defer orders.Done()
	_, users := f.Begin(context.Background(), "client-1:users")
	defer users.Done()
	_, other := f.Begin(context.Background(), "client-2:orders")
	defer other.Done()

	assert.NoError(t, ordersCtx.Err())
	assert.True(t, orders.Current())
}

func TestInflightDone(t *testing.T) {
	f := NewInflight()
	ctx, ticket := f.Begin(context.Background(), "k")
	ticket.Done()

	assert.Error(t, ctx.Err())
	assert.False(t, Superseded(ctx))
	assert.False(t, ticket.Current())
}
