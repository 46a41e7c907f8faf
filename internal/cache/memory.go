package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"synthkit/internal/models"
)

// MemoryCache implements Service using in-memory storage
type MemoryCache struct {
	data  map[string]*memoryEntry
	mutex sync.Mutex
}

// memoryEntry represents a single cache entry with its metadata
type memoryEntry struct {
	value        interface{}
	createdAt    time.Time
	expiresAt    time.Time
	hits         int64
	lastAccessed time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() Service {
	return newMemoryCache()
}

// newMemoryCache creates the concrete implementation
func newMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*memoryEntry),
	}
}

// Get retrieves a cached value for the given key
func (m *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.data[key]
	if !exists {
		return nil, models.ErrCacheMiss
	}

	// Lazy expiry: stale entries are removed on access
	if time.Now().After(entry.expiresAt) {
		delete(m.data, key)
		return nil, models.ErrCacheMiss
	}

	entry.hits++
	entry.lastAccessed = time.Now().UTC()

	return entry.value, nil
}

// Set stores a value in the cache with the specified TTL
func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now().UTC()
	m.data[key] = &memoryEntry{
		value:        value,
		createdAt:    now,
		expiresAt:    now.Add(ttl),
		lastAccessed: now,
	}

	return nil
}

// Delete removes an entry from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.data, key)
	return nil
}

// DeletePattern removes all entries whose key contains substring
func (m *MemoryCache) DeletePattern(ctx context.Context, substring string) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	removed := 0
	for key := range m.data {
		if strings.Contains(key, substring) {
			delete(m.data, key)
			removed++
		}
	}

	return removed, nil
}

// PurgeExpired removes all expired entries and reports how many were removed
func (m *MemoryCache) PurgeExpired(ctx context.Context) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range m.data {
		if now.After(entry.expiresAt) {
			delete(m.data, key)
			removed++
		}
	}

	return removed, nil
}

// Size returns the current number of cached entries (for monitoring)
func (m *MemoryCache) Size() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.data)
}
