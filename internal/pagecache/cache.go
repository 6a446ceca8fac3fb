// Package pagecache holds recently fetched pages in a recency-ordered cache
// bounded by total cost rather than entry count.
//
// Entries are evicted least-recently-accessed first until the total cost is
// back under capacity. The entry being inserted is never evicted to make
// room for itself, so a single entry costing more than the whole capacity
// is kept on its own: the cache exceeds capacity by at most that one entry.
package pagecache

import (
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/vidyasagar/wikisurf/internal/page"
)

// DefaultCapacity is the cost bound, in bytes, used when none is configured.
const DefaultCapacity int64 = 4 << 20

// Cache is safe for concurrent use. Every operation takes the same lock.
type Cache[V any] struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[page.Key, *entry[V]]
	capacity int64
	total    int64
	now      func() time.Time
	onEvict  func(page.Key, int64)

	hits      uint64
	misses    uint64
	evictions uint64
}

type entry[V any] struct {
	payload    V
	cost       int64
	lastAccess time.Time
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now     func() time.Time
	onEvict func(page.Key, int64)
}

// WithClock sets the clock used for last-access times.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithEvictHook registers a function called with the key and cost of each
// entry pushed out by capacity pressure. Invalidate does not call it.
// The hook runs with the cache locked and must not call back into it.
func WithEvictHook(fn func(page.Key, int64)) Option {
	return func(o *options) { o.onEvict = fn }
}

// New creates a cache holding at most capacity units of cost.
// A negative capacity is treated as zero.
func New[V any](capacity int64, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if capacity < 0 {
		capacity = 0
	}

	// Recency order comes from simplelru; its own count bound is disabled
	// and the cost bound is enforced in Put.
	l, err := simplelru.NewLRU[page.Key, *entry[V]](math.MaxInt, nil)
	if err != nil {
		panic(err)
	}

	return &Cache[V]{
		lru:      l,
		capacity: capacity,
		now:      o.now,
		onEvict:  o.onEvict,
	}
}

// Get returns the payload cached for key and marks it most recently used.
func (c *Cache[V]) Get(key page.Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	e.lastAccess = c.now()
	return e.payload, true
}

// Contains reports whether key is cached without touching its recency.
func (c *Cache[V]) Contains(key page.Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(key)
}

// Put inserts or replaces the payload for key. Negative costs count as zero.
func (c *Cache[V]) Put(key page.Key, payload V, cost int64) {
	if cost < 0 {
		cost = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.lru.Peek(key); ok {
		c.total -= old.cost
	}
	c.lru.Add(key, &entry[V]{payload: payload, cost: cost, lastAccess: c.now()})
	c.total += cost

	// The new entry is the most recent, so it is the last one standing.
	for c.total > c.capacity && c.lru.Len() > 1 {
		k, e, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		c.total -= e.cost
		c.evictions++
		if c.onEvict != nil {
			c.onEvict(k, e.cost)
		}
	}
}

// Invalidate removes key if present.
func (c *Cache[V]) Invalidate(key page.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lru.Peek(key); ok {
		c.total -= e.cost
		c.lru.Remove(key)
	}
}

// Purge removes every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.total = 0
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Cost returns the summed cost of all entries.
func (c *Cache[V]) Cost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Capacity returns the configured cost bound.
func (c *Cache[V]) Capacity() int64 {
	return c.capacity
}

// Keys returns cached keys from least to most recently used.
func (c *Cache[V]) Keys() []page.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// LastAccess returns when key was last inserted or read.
func (c *Cache[V]) LastAccess(key page.Key) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Peek(key)
	if !ok {
		return time.Time{}, false
	}
	return e.lastAccess, true
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Entries   int
	Cost      int64
	Capacity  int64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns the current counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   c.lru.Len(),
		Cost:      c.total,
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
