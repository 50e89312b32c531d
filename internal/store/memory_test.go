package store

import (
	"context"
	"testing"
	"time"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend(WithLogger(quietLogger()))

	m.Set(ctx, "k", "v", 50*time.Millisecond)
	if _, ok := m.Get(ctx, "k"); !ok {
		t.Fatal("expected value before expiry")
	}
	time.Sleep(100 * time.Millisecond)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Error("expected value to be expired")
	}
}

func TestMemoryExpiryUsesClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewMemoryBackend(WithLogger(quietLogger()), WithClock(func() time.Time { return now }))

	m.Set(ctx, "k", "v", time.Hour)
	now = now.Add(59 * time.Minute)
	if _, ok := m.Get(ctx, "k"); !ok {
		t.Fatal("expected value before deadline")
	}
	now = now.Add(time.Minute)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Error("expected value to expire at the deadline")
	}

	m.Set(ctx, "k", "again", 0)
	now = now.Add(24 * time.Hour)
	if v, ok := m.Get(ctx, "k"); !ok || v.String() != `"again"` {
		t.Errorf("expected value without expiry to persist, got %v %v", v, ok)
	}
}

func TestFallbackExpiryUsesClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c, err := NewCacheBackend(ctx, "redis://127.0.0.1:1/0",
		WithLogger(quietLogger()), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.Set(ctx, "current_session:u", "s1", 24*time.Hour)
	now = now.Add(25 * time.Hour)
	if _, ok := c.Get(ctx, "current_session:u"); ok {
		t.Error("expected pointer to expire on the fallback clock")
	}
}

func TestMemoryListIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend(WithLogger(quietLogger()))
	m.Push(ctx, "l", "a", 10)

	got := m.GetList(ctx, "l", 10)
	got[0] = Value(`"mutated"`)
	m.Push(ctx, "l", "b", 10)

	list := m.GetList(ctx, "l", 10)
	if list[1].String() != `"a"` {
		t.Errorf("expected stored list to be unaffected by caller, got %v", list)
	}
}

func TestMemoryUnencodableValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend(WithLogger(quietLogger()))

	m.Set(ctx, "k", make(chan int), 0)
	m.Push(ctx, "l", func() {}, 10)

	if _, ok := m.Get(ctx, "k"); ok {
		t.Error("expected unencodable set to be dropped")
	}
	if got := m.GetList(ctx, "l", 10); len(got) != 0 {
		t.Errorf("expected unencodable push to be dropped, got %v", got)
	}
}
