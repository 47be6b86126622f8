// Package cache provides a size-bounded, least-recently-used cache
// used by contour's SRTM reader to hold decoded grids and by anything else that
// wants bounded memory rather than a bounded item count. Grounded on
// pkg/v1/cache.go's ChartCache.
package cache

import (
	"container/list"
	"sync"
)

// SizeCache caches values of type V under keys of type K, evicting the
// least-recently-used entries once the sum of Size() results exceeds
// the configured limit. Safe for concurrent use.
type SizeCache[K comparable, V any] struct {
	mu        sync.Mutex
	limit     int64
	used      int64
	items     map[K]*list.Element
	lru       *list.List
	sizeOf    func(V) int64
}

type sizeCacheEntry[K comparable, V any] struct {
	key  K
	val  V
	size int64
}

// NewSizeCache returns a cache that evicts once total item size
// exceeds limit bytes (or whatever unit sizeOf returns). limit<=0
// means unlimited.
func NewSizeCache[K comparable, V any](limit int64, sizeOf func(V) int64) *SizeCache[K, V] {
	return &SizeCache[K, V]{
		limit:  limit,
		items:  map[K]*list.Element{},
		lru:    list.New(),
		sizeOf: sizeOf,
	}
}

// Get retrieves a cached value, or calls load on a miss and caches the
// result. The loader is only invoked when the key is absent.
func (c *SizeCache[K, V]) Get(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.lru.MoveToFront(el)
		v := el.Value.(*sizeCacheEntry[K, V]).val
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Add(key, v)
	return v, nil
}

// Add inserts or replaces the value at key, evicting as needed.
func (c *SizeCache[K, V]) Add(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.sizeOf(val)
	if el, ok := c.items[key]; ok {
		old := el.Value.(*sizeCacheEntry[K, V])
		c.used -= old.size
		old.val, old.size = val, size
		c.used += size
		c.lru.MoveToFront(el)
	} else {
		el := c.lru.PushFront(&sizeCacheEntry[K, V]{key: key, val: val, size: size})
		c.items[key] = el
		c.used += size
	}

	if c.limit > 0 {
		for c.used > c.limit && c.lru.Len() > 0 {
			c.evictOldest()
		}
	}
}

func (c *SizeCache[K, V]) evictOldest() {
	el := c.lru.Back()
	if el == nil {
		return
	}
	e := el.Value.(*sizeCacheEntry[K, V])
	c.lru.Remove(el)
	delete(c.items, e.key)
	c.used -= e.size
}

// Remove evicts key, if present.
func (c *SizeCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*sizeCacheEntry[K, V])
		c.lru.Remove(el)
		delete(c.items, key)
		c.used -= e.size
	}
}

// Clear empties the cache.
func (c *SizeCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[K]*list.Element{}
	c.lru.Init()
	c.used = 0
}

// Len returns the number of cached items.
func (c *SizeCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Used returns the current total size of cached items.
func (c *SizeCache[K, V]) Used() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}
