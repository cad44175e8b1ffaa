package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRU implements an in-process LRU cache with TTL support.
// It doubles as the fallback tier when no distributed cache is configured.
type LRU struct {
	entries    map[string]*lruEntry
	order      *list.List
	capacity   int
	defaultTTL time.Duration
	mu         sync.Mutex
}

type lruEntry struct {
	key       string
	value     string
	expiresAt time.Time
	element   *list.Element
}

// NewLRU creates a new LRU cache.
func NewLRU(capacity int, defaultTTL time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &LRU{
		entries:    make(map[string]*lruEntry),
		order:      list.New(),
		capacity:   capacity,
		defaultTTL: defaultTTL,
	}
}

func (c *LRU) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		return "", false
	}

	c.order.MoveToFront(e.element)
	return e.value, true
}

func (c *LRU) Set(_ context.Context, key string, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.entries) >= c.capacity {
		c.evictOldest()
	}

	e := &lruEntry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
}

func (c *LRU) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.removeEntry(e)
	}
}

// Size returns the number of live entries, expired ones included.
func (c *LRU) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *LRU) Capacity() int {
	return c.capacity
}

func (c *LRU) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.removeEntry(oldest.Value.(*lruEntry))
}

func (c *LRU) removeEntry(e *lruEntry) {
	c.order.Remove(e.element)
	delete(c.entries, e.key)
}
