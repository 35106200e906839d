package storage

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is the in-process CacheRepository used when no Redis address
// is configured. Locks and idempotency keys do not survive a restart and are
// not shared between replicas.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// setNX must be called with mu held.
func (m *MemoryCache) setNX(key, value string, ttl time.Duration) bool {
	now := m.now()
	if entry, ok := m.entries[key]; ok && now.Before(entry.expiresAt) {
		return false
	}
	m.entries[key] = cacheEntry{value: value, expiresAt: now.Add(ttl)}
	return true
}

func (m *MemoryCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.setNX(idempotencyKeyPrefix+key, "1", idempotencyKeyTTL), nil
}

func (m *MemoryCache) ClearIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, idempotencyKeyPrefix+key)
	return nil
}

func (m *MemoryCache) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.setNX(lockKeyPrefix+key, token, ttl), nil
}

func (m *MemoryCache) ReleaseLock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[lockKeyPrefix+key]; ok && entry.value == token {
		delete(m.entries, lockKeyPrefix+key)
	}
	return nil
}
