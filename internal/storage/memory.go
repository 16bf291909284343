package storage

import (
	"context"
	"sync"
)

// Memory keeps items in process memory. Its zero value is not usable; call NewMemory.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	return value, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// MemoryProvider hands out one Memory namespace per client id.
type MemoryProvider struct {
	mu     sync.Mutex
	spaces map[string]*Memory
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{spaces: make(map[string]*Memory)}
}

func (p *MemoryProvider) Open(clientID string) Storage {
	p.mu.Lock()
	defer p.mu.Unlock()
	space, ok := p.spaces[clientID]
	if !ok {
		space = NewMemory()
		p.spaces[clientID] = space
	}
	return space
}

// Len returns the number of namespaces opened so far.
func (p *MemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.spaces)
}
