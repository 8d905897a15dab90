// Package cache provides the in-process building blocks for the resolver's
// runtime state: per-category key/value caches and a single-flight group
// that serializes concurrent identical lookups.
package cache

import "sync"

// Cache is a concurrency-safe in-memory key/value cache. Entries live until
// Clear; the resolver's categories (person IDs, filmographies, title
// searches, movie details, lookup results) are all bounded by the working
// set of a scrape run and are wiped wholesale on reset.
type Cache struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]any)}
}

// Get retrieves an item from the cache.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

// Set stores an item in the cache.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]any)
}

// Len returns the number of items in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
