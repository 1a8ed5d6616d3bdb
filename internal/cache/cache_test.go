package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemory_GetSet(t *testing.T) {
	m := NewMemory[string](time.Minute)
	ctx := context.Background()

	m.Set(ctx, "EUR/USD", "1.0850")
	got, ok := m.Get(ctx, "EUR/USD")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "1.0850" {
		t.Errorf("expected 1.0850, got %s", got)
	}
}

func TestMemory_Miss(t *testing.T) {
	m := NewMemory[int](time.Minute)
	if _, ok := m.Get(context.Background(), "nope"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestMemory_TTLExpiration(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory[int](60*time.Second, WithClock(clock.Now))
	ctx := context.Background()

	m.Set(ctx, "k", 1)
	clock.Advance(59 * time.Second)
	if _, ok := m.Get(ctx, "k"); !ok {
		t.Fatal("expected hit inside TTL window")
	}

	clock.Advance(time.Second)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatal("expected miss at TTL boundary")
	}
	if m.Len() != 0 {
		t.Errorf("expected expired entry to be evicted on access, len=%d", m.Len())
	}
}

func TestMemory_ExpiredNotSweptWithoutAccess(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m := NewMemory[int](time.Second, WithClock(clock.Now))
	ctx := context.Background()

	m.Set(ctx, "a", 1)
	m.Set(ctx, "b", 2)
	clock.Advance(time.Hour)

	if m.Len() != 2 {
		t.Fatalf("expected lazy eviction only, len=%d", m.Len())
	}
	m.Get(ctx, "a")
	if m.Len() != 1 {
		t.Errorf("expected one entry after accessing a, len=%d", m.Len())
	}
}

func TestMemory_Overwrite(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m := NewMemory[int](10*time.Second, WithClock(clock.Now))
	ctx := context.Background()

	m.Set(ctx, "k", 1)
	clock.Advance(8 * time.Second)
	m.Set(ctx, "k", 2)
	clock.Advance(8 * time.Second)

	got, ok := m.Get(ctx, "k")
	if !ok || got != 2 {
		t.Errorf("expected refreshed value 2, got %d (ok=%v)", got, ok)
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory[int](time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Set(ctx, "shared", n)
			m.Get(ctx, "shared")
		}(i)
	}
	wg.Wait()

	if _, ok := m.Get(ctx, "shared"); !ok {
		t.Error("expected shared key to be present")
	}
}
