package assets

import (
	"container/list"
	"sync"

	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
)

type gridKey struct {
	name       string
	resolution int
}

type gridEntry struct {
	key  gridKey
	grid *heightfield.Grid
}

// GridCache keeps the most recently used grids. A capacity of zero disables it.
type GridCache struct {
	capacity int
	order    *list.List // front = most recent
	items    map[gridKey]*list.Element
	mu       sync.Mutex

	hits   int
	misses int
}

// NewGridCache creates a cache holding at most capacity grids.
func NewGridCache(capacity int) *GridCache {
	return &GridCache{
		capacity: max(capacity, 0),
		order:    list.New(),
		items:    make(map[gridKey]*list.Element),
	}
}

// Get returns a cached grid and marks it as recently used.
func (c *GridCache) Get(key gridKey) (*heightfield.Grid, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*gridEntry).grid, true
}

// peek is Get without touching recency or statistics.
func (c *GridCache) peek(key gridKey) (*heightfield.Grid, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*gridEntry).grid, true
}

// Set inserts a grid, evicting the least recently used one when full.
func (c *GridCache) Set(key gridKey, grid *heightfield.Grid) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return
	}
	if el, ok := c.items[key]; ok {
		el.Value.(*gridEntry).grid = grid
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&gridEntry{key: key, grid: grid})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*gridEntry).key)
	}
}

// removeName drops every resolution cached for name and returns how many were removed.
func (c *GridCache) removeName(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, el := range c.items {
		if key.name == name {
			c.order.Remove(el)
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached grids.
func (c *GridCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear empties the cache and resets statistics.
func (c *GridCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[gridKey]*list.Element)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *GridCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
