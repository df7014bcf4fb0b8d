package supaq

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Cache is the interface for caching read results.
// Users should implement this interface with their preferred caching solution
// (e.g., Redis, Memcached, in-memory). MemoryCache is a ready-made in-process
// implementation.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey derives a stable cache key from a statement and its parameters.
// Parameter names are sorted so that key generation does not depend on map
// iteration order.
func CacheKey(query string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	key := query
	for _, name := range names {
		key += "|" + name + "=" + fmt.Sprint(params[name])
	}
	return key
}

type memEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is a process-local Cache backed by a map. Expired entries are
// dropped lazily on access.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(c.entries, key)
		return nil, nil
	}
	return e.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memEntry{value: value}
	if ttl != 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memEntry)
	return nil
}

// ReadCached is Read with a cache in front. On a hit the database is not
// touched. Results are stored as JSON, so values round-trip through their
// JSON representation (integers come back as float64). Reads inside an
// active transaction bypass the cache to avoid serving stale rows.
func (c *Client) ReadCached(ctx context.Context, cache Cache, ttl time.Duration, query string, params map[string]any) ([]map[string]any, error) {
	if cache == nil || c.tx != nil {
		return c.Read(ctx, query, params)
	}
	key := CacheKey(query, params)
	if raw, err := cache.Get(ctx, key); err == nil && raw != nil {
		var out []map[string]any
		if err := json.Unmarshal(raw, &out); err == nil {
			c.log.Debug("cache hit", "sql", query, "session", c.session)
			return out, nil
		}
	}
	out, err := c.Read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(out); err == nil {
		if err := cache.Set(ctx, key, raw, ttl); err != nil {
			c.log.Debug("cache set failed", "error", err, "session", c.session)
		}
	}
	return out, nil
}
