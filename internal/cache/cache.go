// Package cache provides the TTL stores used by the price collector.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a keyed TTL store. A miss and an expired entry look the same.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, v V)
}

type entry[V any] struct {
	value  V
	expiry time.Time
}

// Memory is an in-process Store. Expired entries are removed lazily on Get;
// there is no background sweep.
type Memory[V any] struct {
	mu    sync.RWMutex
	items map[string]entry[V]
	ttl   time.Duration
	now   func() time.Time
}

// Option configures a Memory store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewMemory creates an empty in-memory store with the given TTL.
func NewMemory[V any](ttl time.Duration, opts ...Option) *Memory[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory[V]{
		items: make(map[string]entry[V]),
		ttl:   ttl,
		now:   o.now,
	}
}

// Get returns the cached value if present and not expired.
func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if !m.now().Before(e.expiry) {
		m.mu.Lock()
		if e2, ok2 := m.items[key]; ok2 && !m.now().Before(e2.expiry) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores v under key, replacing any previous value.
func (m *Memory[V]) Set(_ context.Context, key string, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry[V]{value: v, expiry: m.now().Add(m.ttl)}
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
