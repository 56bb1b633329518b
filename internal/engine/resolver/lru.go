package resolver

import (
	"container/list"
	"sync"
)

// LRUCache is a goroutine-safe, capacity-bounded least-recently-used cache.
// When the cache is full the least-recently-used entry is evicted.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recently used
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRUCache creates a cache holding at most capacity entries. Values <= 0
// are normalised to 1.
func NewLRUCache[K comparable, V any](capacity int) *LRUCache[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry[K, V]).value, true
}

func (c *LRUCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*lruEntry[K, V]).value = value
		return
	}
	if c.order.Len() >= c.capacity {
		c.evictLeastRecentLocked()
	}
	c.items[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
}

// GetOrLoad returns the cached value for key, calling load and caching its
// result on a miss. The second result reports whether the value was cached.
// load runs without the lock held, so concurrent misses may both load.
func (c *LRUCache[K, V]) GetOrLoad(key K, load func() V) (V, bool) {
	if v, ok := c.Get(key); ok {
		return v, true
	}
	v := load()
	c.Put(key, v)
	return v, false
}

func (c *LRUCache[K, V]) Evict(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRUCache[K, V]) Cap() int {
	return c.capacity
}

func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[K]*list.Element, c.capacity)
}

// Caller must hold c.mu.
func (c *LRUCache[K, V]) evictLeastRecentLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.order.Remove(back)
	delete(c.items, back.Value.(*lruEntry[K, V]).key)
}
