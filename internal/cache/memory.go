package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultMaxEntries bounds the in-process cache when no size is given.
	DefaultMaxEntries = 10000
	sweepInterval     = time.Minute
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memoryCache backs single-instance deployments and tests when redis is
// disabled. The LRU caps the entry count; expired entries are dropped on
// read and swept from Set at most once per sweepInterval.
type memoryCache struct {
	entries     *lru.Cache[string, entry]
	serviceName string
	now         func() time.Time

	mu        sync.Mutex
	nextSweep time.Time
}

func NewMemoryCache(serviceName string) Cache {
	return NewMemoryCacheSize(serviceName, DefaultMaxEntries)
}

// NewMemoryCacheSize evicts the least recently used entry once maxEntries
// is reached. maxEntries <= 0 uses DefaultMaxEntries.
func NewMemoryCacheSize(serviceName string, maxEntries int) Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	entries, _ := lru.New[string, entry](maxEntries)
	return &memoryCache{
		entries:     entries,
		serviceName: serviceName,
		now:         time.Now,
	}
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()
	m.sweep(now)

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m.entries.Add(key, e)
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		m.entries.Remove(key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.entries.Remove(key)
	return nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(m.serviceName, operation, key)
}

func (m *memoryCache) Len() int { return m.entries.Len() }

func (m *memoryCache) sweep(now time.Time) {
	m.mu.Lock()
	if now.Before(m.nextSweep) {
		m.mu.Unlock()
		return
	}
	m.nextSweep = now.Add(sweepInterval)
	m.mu.Unlock()

	for _, key := range m.entries.Keys() {
		if e, ok := m.entries.Peek(key); ok && e.expired(now) {
			m.entries.Remove(key)
		}
	}
}
