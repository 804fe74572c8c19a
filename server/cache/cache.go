// Package cache provides an in-memory caching layer for the HTTP server.
// It uses patrickmn/go-cache for TTL-based caching of executed views and
// rendered chart images.
package cache

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/spektr-org/incomelens/engine"
)

// Cache wraps go-cache with typed accessors for views and images.
type Cache struct {
	store *gocache.Cache
}

// New creates a new cache with the given TTL and cleanup interval.
// defaultTTL is the default expiration time for cache entries.
// cleanupInterval is how often expired items are removed from memory.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores a value in the cache with default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// ItemCount returns the number of items in the cache.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// Stats returns cache statistics.
type Stats struct {
	ItemCount int `json:"item_count"`
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	return Stats{
		ItemCount: c.ItemCount(),
	}
}

// ============================================================================
// TYPED ENTRIES
// ============================================================================

// requestNamespace scopes request fingerprints.
var requestNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("incomelens/request"))

// RequestKey returns a stable fingerprint of a view request. Equal requests
// always map to the same key, so chart URLs survive page reloads.
func RequestKey(req engine.Request) string {
	b, err := json.Marshal(req)
	if err != nil {
		return uuid.NewString()
	}
	return uuid.NewSHA1(requestNamespace, b).String()
}

// GetResult returns a previously executed view.
func (c *Cache) GetResult(key string) (*engine.Result, bool) {
	v, ok := c.Get("result:" + key)
	if !ok {
		return nil, false
	}
	res, ok := v.(*engine.Result)
	return res, ok
}

// SetResult stores an executed view under its request key.
func (c *Cache) SetResult(key string, res *engine.Result) {
	c.Set("result:"+key, res)
}

// GetImage returns a rendered chart image.
func (c *Cache) GetImage(key string) ([]byte, bool) {
	v, ok := c.Get("image:" + key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// SetImage stores a rendered chart image.
func (c *Cache) SetImage(key string, png []byte) {
	c.Set("image:"+key, png)
}
