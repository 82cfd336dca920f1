// Package cache provides an in-process TTL cache with single-flight get-or-compute semantics.
//
// Concurrent [Cache.GetOrCompute] calls for the same key share one computation.
// Failed computations are never stored.
package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Options configures a [Cache].
type Options struct {
	TTL        time.Duration // zero means entries never expire
	MaxEntries int           // zero means unbounded
	Now        func() time.Time
}

// Stats reports cache activity.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Shared    int64 `json:"shared"` // callers that joined an in-flight computation
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

type entry[V any] struct {
	key     string
	value   V
	expires time.Time
}

// Cache is a concurrency-safe LRU keyed by string with optional expiry.
type Cache[V any] struct {
	mu    sync.Mutex
	opts  Options
	items map[string]*list.Element
	order *list.List
	group singleflight.Group
	stats Stats
}

// New builds an empty cache.
func New[V any](opts Options) *Cache[V] {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache[V]{
		opts:  opts,
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Get returns the live value stored under key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key)
}

// Set stores value under key, evicting the least recently used entry when full.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.opts.TTL > 0 {
		expires = c.opts.Now().Add(c.opts.TTL)
	}

	if el, ok := c.items[key]; ok {
		el.Value = &entry[V]{key: key, value: value, expires: expires}
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value, expires: expires})
	for c.opts.MaxEntries > 0 && c.order.Len() > c.opts.MaxEntries {
		c.removeElement(c.order.Back())
		c.stats.Evictions++
	}
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Clear drops every entry and resets the counters.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.stats = Stats{}
}

// Len is the number of stored entries, including expired ones not yet collected.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = c.order.Len()
	return s
}

// GetOrCompute returns the cached value for key or runs compute once for all concurrent callers.
//
// compute runs detached from any single caller; a caller whose ctx ends stops waiting and
// receives ctx.Err() while the computation continues for the others.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, compute func() (V, error)) (V, error) {
	c.mu.Lock()
	if v, ok := c.lookup(key); ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.Lock()
		if v, ok := c.items[key]; ok && c.alive(v.Value.(*entry[V])) {
			c.mu.Unlock()
			return v.Value.(*entry[V]).value, nil
		}
		c.mu.Unlock()

		v, err := compute()
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.mu.Lock()
			c.stats.Shared++
			c.mu.Unlock()
		}
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Val == nil {
			return zero, nil
		}
		v, ok := res.Val.(V)
		if !ok {
			return zero, fmt.Errorf("cache: unexpected value type %T for key %q", res.Val, key)
		}
		return v, nil
	}
}

// lookup must be called with mu held.
func (c *Cache[V]) lookup(key string) (V, bool) {
	var zero V
	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	e := el.Value.(*entry[V])
	if !c.alive(e) {
		c.removeElement(el)
		c.stats.Misses++
		return zero, false
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	return e.value, true
}

func (c *Cache[V]) alive(e *entry[V]) bool {
	return e.expires.IsZero() || c.opts.Now().Before(e.expires)
}

func (c *Cache[V]) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
}
