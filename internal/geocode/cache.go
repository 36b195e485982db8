package geocode

import (
	"container/list"
	"sync"
)

// Cache stores geocoding results keyed by normalized address. The
// geocoder takes any implementation, so tests can swap in their own.
type Cache interface {
	Get(key string) (Location, bool)
	Set(key string, loc Location)
}

type lruEntry struct {
	key string
	loc Location
}

// LRUCache is a fixed-capacity cache evicting the least recently used
// address. Safe for concurrent use.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

func NewLRUCache(capacity int) *LRUCache {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *LRUCache) Get(key string) (Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return Location{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).loc, true
}

func (c *LRUCache) Set(key string, loc Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*lruEntry).loc = loc
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&lruEntry{key: key, loc: loc})
	c.items[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry).key)
	}
}

func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
