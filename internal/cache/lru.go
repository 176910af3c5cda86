package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRU is an in-memory Cache with a TTL per entry and a fixed capacity.
type LRU[V any] struct {
	mu       sync.Mutex
	name     string
	capacity int
	items    map[string]*list.Element
	order    *list.List
	nowFn    func() time.Time

	hits   int64
	misses int64
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

func NewLRU[V any](name string, capacity int) *LRU[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[V]{
		name:     name,
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		nowFn:    time.Now,
	}
}

func (c *LRU[V]) Get(_ context.Context, key string) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		c.misses++
		observe(c.name, false)
		return zero, false, nil
	}

	e := elem.Value.(*entry[V])
	if c.nowFn().After(e.expiresAt) {
		c.removeElement(elem)
		c.misses++
		observe(c.name, false)
		return zero, false, nil
	}

	c.order.MoveToFront(elem)
	c.hits++
	observe(c.name, true)
	return e.value, true, nil
}

func (c *LRU[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.nowFn().Add(ttl)
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		return nil
	}

	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	c.evictOldest(c.capacity)
	return nil
}

func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns cache hit and miss counts.
func (c *LRU[V]) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// EvictOldest drops least recently used entries until at most limit remain
// and returns how many were dropped.
func (c *LRU[V]) EvictOldest(limit int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictOldest(limit)
}

func (c *LRU[V]) evictOldest(limit int) int {
	if limit < 0 {
		limit = 0
	}
	evicted := 0
	for c.order.Len() > limit {
		elem := c.order.Back()
		if elem == nil {
			break
		}
		c.removeElement(elem)
		evicted++
	}
	return evicted
}

func (c *LRU[V]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	e := elem.Value.(*entry[V])
	delete(c.items, e.key)
}
