package store

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// MemoryBackend implements Backend in process memory. Contents are lost
// when the process exits.
type MemoryBackend struct {
	// listMu makes the read-modify-write of Push atomic.
	listMu sync.Mutex
	items  *cache.Cache
	log    logrus.FieldLogger
	now    func() time.Time
}

// entry is a scalar with its deadline. go-cache evicts on the wall clock;
// the deadline is checked against the backend clock on read.
type entry struct {
	value   Value
	expires time.Time
}

// NewMemoryBackend returns an empty in-process backend.
func NewMemoryBackend(opts ...Option) *MemoryBackend {
	o := newOptions(opts)
	return &MemoryBackend{
		items: cache.New(cache.NoExpiration, 10*time.Minute),
		log:   o.logger.WithField("backend", "memory"),
		now:   o.now,
	}
}

// Name implements Backend.
func (m *MemoryBackend) Name() string { return "memory" }

// Set implements Backend.
func (m *MemoryBackend) Set(ctx context.Context, key string, value any, expire time.Duration) {
	v, err := encode(value)
	if err != nil {
		m.log.WithFields(logrus.Fields{"op": "set", "key": key}).WithError(err).Error("write dropped")
		return
	}
	e := entry{value: v}
	ttl := cache.NoExpiration
	if expire > 0 {
		e.expires = m.now().Add(expire)
		ttl = expire
	}
	m.items.Set(nsKey(key), e, ttl)
}

// Get implements Backend.
func (m *MemoryBackend) Get(ctx context.Context, key string) (Value, bool) {
	raw, ok := m.items.Get(nsKey(key))
	if !ok {
		return nil, false
	}
	e, ok := raw.(entry)
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

// Push implements Backend.
func (m *MemoryBackend) Push(ctx context.Context, key string, value any, maxItems int) {
	v, err := encode(value)
	if err != nil {
		m.log.WithFields(logrus.Fields{"op": "push", "key": key}).WithError(err).Error("write dropped")
		return
	}
	maxItems = maxItemsOrDefault(maxItems)
	k := nsKey(key)

	m.listMu.Lock()
	defer m.listMu.Unlock()

	old := m.list(k)
	keep := min(len(old), maxItems-1)
	next := make([]Value, 0, keep+1)
	next = append(next, v)
	next = append(next, old[:keep]...)
	m.items.Set(k, next, cache.NoExpiration)
}

// GetList implements Backend.
func (m *MemoryBackend) GetList(ctx context.Context, key string, limit int) []Value {
	limit = limitOrDefault(limit)

	m.listMu.Lock()
	list := m.list(nsKey(key))
	m.listMu.Unlock()

	n := min(len(list), limit)
	out := make([]Value, n)
	copy(out, list[:n])
	return out
}

func (m *MemoryBackend) list(k string) []Value {
	raw, ok := m.items.Get(k)
	if !ok {
		return nil
	}
	list, _ := raw.([]Value)
	return list
}

// Clear implements Backend.
func (m *MemoryBackend) Clear(ctx context.Context) {
	m.listMu.Lock()
	defer m.listMu.Unlock()
	m.items.Flush()
	m.log.Info("cleared all data")
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	return nil
}
