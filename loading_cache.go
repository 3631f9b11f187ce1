package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/krisalay/lru-cache/api"
	"github.com/krisalay/lru-cache/engine"
	"golang.org/x/sync/singleflight"
)

var _ api.LoadingCache[string, int] = (*LoadingCache[string, int])(nil)

/*
LoadingCache is an LRUCache that is safe for concurrent use.

One mutex covers every operation from start to end, so no goroutine can
observe a half-finished splice. On top of that it connects:
  - a loader, consulted on a miss (read-through)
  - a write policy, told about every Put (write-through / write-back)
  - metrics
*/
type LoadingCache[K comparable, V any] struct {
	mu  sync.Mutex
	lru *LRUCache[K, V]

	// engine contains the "rules" of the cache: loader, write policy, metrics.
	engine *engine.CacheEngine[K, V]

	// sf prevents multiple goroutines from loading the same key from the backing store simultaneously.
	sf singleflight.Group
}

// NewLoadingCache creates a LoadingCache with room for capacity entries.
// A nil engine means no loader, no write policy and no metrics.
func NewLoadingCache[K comparable, V any](capacity int, eng *engine.CacheEngine[K, V]) (*LoadingCache[K, V], error) {
	if eng == nil {
		eng = engine.NewCacheEngine[K, V](nil, nil, nil)
	}

	var opts []Option
	if eng.Metrics != nil {
		opts = append(opts, WithMetrics(eng.Metrics))
	}

	lru, err := New[K, V](capacity, opts...)
	if err != nil {
		return nil, err
	}

	return &LoadingCache[K, V]{
		lru:    lru,
		engine: eng,
	}, nil
}

/*
Get retrieves a value from the cache.

On a miss with a loader configured, the value is loaded, cached and returned.
If 100 goroutines miss the same key at once, only ONE of them calls the loader;
the others wait for its result. Loader errors are returned as they are.
On a miss without a loader the error wraps ErrNotFound.

The shared load does not inherit ctx cancellation, so one caller giving up does
not fail the others. A cancelled caller stops waiting and gets ctx.Err().
A Put that lands while a load is in flight wins: the loaded value is discarded
and the value from Put is returned.
*/
func (c *LoadingCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	c.mu.Lock()
	value, ok := c.lru.Get(key)
	c.mu.Unlock()

	if ok {
		return value, nil
	}

	if !c.engine.CanLoad() {
		return value, fmt.Errorf("get %v: %w", key, ErrNotFound)
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(c.engine.LoadKey(key), func() (any, error) {
		v, err := c.engine.Load(loadCtx, key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		// A concurrent Put stored a newer value while the store was being read.
		if cached, ok := c.lru.Peek(key); ok {
			return cached, nil
		}

		// The value came from the backing store, so it is not written back.
		c.lru.Put(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return value, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return value, res.Err
		}
		value, _ = res.Val.(V)
		return value, nil
	}
}

// Peek returns the cached value for key without loading it and without changing recency.
func (c *LoadingCache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Peek(key)
}

// Put stores value in the cache, then hands it to the write policy.
// The value stays cached even when the write policy returns an error.
func (c *LoadingCache[K, V]) Put(ctx context.Context, key K, value V) error {
	c.mu.Lock()
	c.lru.Put(key, value)
	c.mu.Unlock()

	return c.engine.OnWrite(ctx, key, value)
}

// Remove deletes key from the cache. The backing store is not touched.
func (c *LoadingCache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Delete(key)
}

// Contains reports whether key is cached, without changing recency.
func (c *LoadingCache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(key)
}

// Len returns the number of cached entries.
func (c *LoadingCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Reset removes every cached entry.
func (c *LoadingCache[K, V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Reset()
}

// Range calls fn for every entry from least to most recently used until fn returns false.
// The lock is held for the whole walk, so fn must not call back into the cache.
func (c *LoadingCache[K, V]) Range(fn func(key K, value V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.lru.All() {
		if !fn(k, v) {
			return
		}
	}
}

// Keys returns a snapshot of the cached keys from least to most recently used.
func (c *LoadingCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]K, 0, c.lru.Len())
	for k := range c.lru.Keys() {
		out = append(out, k)
	}
	return out
}

// String renders the cached entries in recency order, for debugging.
func (c *LoadingCache[K, V]) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.String()
}

/*
Close gracefully shuts down the cache.
This is important for write-back policies, so pending writes are flushed.
*/
func (c *LoadingCache[K, V]) Close() {
	c.engine.Close()
}
