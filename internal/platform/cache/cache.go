// Package cache provides a bounded in-memory LRU cache.
package cache

import (
	"container/list"
	"sync"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 1024

// entry represents a cached item with its LRU handle.
type entry[K comparable, V any] struct {
	key     K
	value   V
	element *list.Element
}

// LRU is a concurrency-safe least-recently-used cache.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*entry[K, V]
	lruList  *list.List // front is most recently used

	hits, misses int
}

// NewLRU creates a cache holding at most capacity items.
//
// Example:
//
//	sites := cache.NewLRU[string, string](256)
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*entry[K, V]),
		lruList:  list.New(),
	}
}

// Get retrieves a value and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}

	c.hits++
	c.lruList.MoveToFront(e.element)
	return e.value, true
}

// Set stores value under key, evicting the least recently used item when full.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.items[key]; ok {
		existing.value = value
		c.lruList.MoveToFront(existing.element)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictLRU()
	}

	e := &entry[K, V]{key: key, value: value}
	e.element = c.lruList.PushFront(e)
	c.items[key] = e
}

// GetOrCompute returns the cached value for key, computing and storing it on a miss.
// compute runs without the lock held; concurrent misses may compute twice.
func (c *LRU[K, V]) GetOrCompute(key K, compute func(K) V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute(key)
	c.Set(key, v)
	return v
}

// Delete removes key from the cache.
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.deleteEntry(e)
	}
}

// Clear removes all items and resets the hit counters.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*entry[K, V])
	c.lruList.Init()
	c.hits, c.misses = 0, 0
}

// Size returns the current number of items.
func (c *LRU[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of items.
func (c *LRU[K, V]) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// Stats returns the number of hits and misses seen by Get.
func (c *LRU[K, V]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Keys returns the keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	for el := c.lruList.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[K, V]).key)
	}
	return keys
}

// evictLRU removes the least recently used item.
// Must be called with c.mu held.
func (c *LRU[K, V]) evictLRU() {
	if el := c.lruList.Back(); el != nil {
		c.deleteEntry(el.Value.(*entry[K, V]))
	}
}

// deleteEntry must be called with c.mu held.
func (c *LRU[K, V]) deleteEntry(e *entry[K, V]) {
	delete(c.items, e.key)
	c.lruList.Remove(e.element)
}
