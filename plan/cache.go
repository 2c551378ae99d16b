package plan

import (
	"container/list"
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kbukum/graphflow/resilience"
)

// Cache is a size-bounded LRU cache of compiled plans keyed by
// BuildCacheKey, with an exclusive loader so concurrent compile requests for
// the same key share one compile instead of racing.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	group    singleflight.Group
}

type cacheEntry struct {
	key  string
	plan *Plan
}

// NewCache returns a Cache holding at most capacity plans. A non-positive
// capacity disables eviction (unbounded growth).
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached plan for key, if present, promoting it to
// most-recently-used.
func (c *Cache) Get(key string) (*Plan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).plan, true
}

// Put inserts p under key, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *Cache) Put(key string, p *Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).plan = p
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&cacheEntry{key: key, plan: p})
	c.items[key] = el
	if c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

// GetOrCompile returns the cached plan for key if present, otherwise calls
// compile exactly once even under concurrent callers requesting the same
// key, caching and returning its result.
func (c *Cache) GetOrCompile(key string, compile func() (*Plan, error)) (*Plan, error) {
	if p, ok := c.Get(key); ok {
		return p, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if p, ok := c.Get(key); ok {
			return p, nil
		}
		p, err := compile()
		if err != nil {
			return nil, err
		}
		c.Put(key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Plan), nil
}

// GetOrCompileBounded behaves like GetOrCompile but additionally bounds the
// number of concurrently running distinct compiles through bh. Singleflight
// only collapses callers requesting the same key; a stampede of differently
// keyed compiles (e.g. many callers asking for different AskedOutputs at
// once) would otherwise run unbounded, so bh caps that concurrency.
func (c *Cache) GetOrCompileBounded(ctx context.Context, key string, bh *resilience.Bulkhead, compile func() (*Plan, error)) (*Plan, error) {
	if p, ok := c.Get(key); ok {
		return p, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if p, ok := c.Get(key); ok {
			return p, nil
		}
		p, err := resilience.ExecuteWithResult(bh, ctx, compile)
		if err != nil {
			return nil, err
		}
		c.Put(key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Plan), nil
}

// Len returns the number of plans currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
