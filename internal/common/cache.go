package common

import "sync"

// BoundedCache is a small explicit cache with oldest-first eviction.
// It replaces implicit module-level memoization: the owner creates it,
// passes it to whoever needs it, and the bound is visible at the call site.
type BoundedCache[K comparable, V any] struct {
	mu      sync.Mutex
	maxSize int
	entries map[K]V
	order   []K
}

// NewBoundedCache creates a cache holding at most maxSize entries.
func NewBoundedCache[K comparable, V any](maxSize int) *BoundedCache[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &BoundedCache[K, V]{
		maxSize: maxSize,
		entries: make(map[K]V, maxSize),
	}
}

// Get returns the cached value for key, if present.
func (c *BoundedCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a value, evicting the oldest entry when the cache is full.
func (c *BoundedCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = value
}

// Len returns the current number of entries.
func (c *BoundedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
