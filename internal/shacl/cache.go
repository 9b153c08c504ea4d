package shacl

import (
	"container/list"
	"sync"

	"github.com/provenance-engine/engine/internal/rdf"
)

// Cache is an LRU cache of compiled shapes keyed by hashGraph(shapes).
// Writes are guarded by a single lock (the orchestrator's "single-writer
// lock" over the shapes cache, per spec §4.11); reads share the same
// lock since the underlying container/list is not itself safe for
// concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key     string
	shapes  *CompiledShapes
}

// NewCache returns an LRU cache bounded to capacity entries. A capacity
// of 0 or less means unbounded.
func NewCache(capacity int) *Cache {
	return &Cache{capacity: capacity, items: make(map[string]*list.Element), order: list.New()}
}

// GetOrCompile returns the cached CompiledShapes for shapes's graph hash,
// compiling and inserting it on a miss.
func (c *Cache) GetOrCompile(shapes *rdf.Graph) (*CompiledShapes, error) {
	key := shapes.Hash()

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		compiled := el.Value.(*cacheEntry).shapes
		c.mu.Unlock()
		return compiled, nil
	}
	c.mu.Unlock()

	compiled, err := Compile(shapes)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).shapes, nil
	}
	el := c.order.PushFront(&cacheEntry{key: key, shapes: compiled})
	c.items[key] = el
	c.evictIfNeeded()
	return compiled, nil
}

// Clear empties the cache. Custom-rule registration clears this cache
// per §4.8, since a new rule may change how shapes are expected to
// validate alongside it.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) evictIfNeeded() {
	if c.capacity <= 0 {
		return
	}
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}
