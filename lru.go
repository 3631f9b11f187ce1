package cache

import (
	"fmt"
	"iter"
	"strings"

	"github.com/krisalay/lru-cache/api"
	"github.com/krisalay/lru-cache/recency"
	"github.com/krisalay/lru-cache/types"
)

var (
	// ErrNotFound is returned by Lookup and LoadingCache.Get on a miss.
	ErrNotFound = types.ErrNotFound

	// ErrInvalidCapacity is returned by New when capacity is not positive.
	ErrInvalidCapacity = types.ErrInvalidCapacity
)

var _ api.Cache[string, int] = (*LRUCache[string, int])(nil)

/*
LRUCache is a fixed-capacity key-value cache with least-recently-used eviction.

It is built from two pieces:
  - index: a map from key to the slot of its node, for O(1) lookup
  - list: a recency.List ordered from least recently used (front) to most recently used (back)

A key is in the index if and only if its node is linked in the list,
and len(index) never exceeds capacity.

LRUCache is not safe for concurrent use. Wrap it in a LoadingCache (or your own
lock covering every call) when it is shared between goroutines.
*/
type LRUCache[K comparable, V any] struct {
	capacity int
	index    map[K]recency.Handle
	list     *recency.List[K, V]
	metrics  types.Metrics
}

// New creates an empty cache holding at most capacity entries.
func New[K comparable, V any](capacity int, opts ...Option) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("new cache with capacity %d: %w", capacity, ErrInvalidCapacity)
	}

	o := options{metrics: types.NoopMetrics{}}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	return &LRUCache[K, V]{
		capacity: capacity,
		index:    make(map[K]recency.Handle, capacity),
		list:     recency.New[K, V](capacity),
		metrics:  o.metrics,
	}, nil
}

// Get returns the value for key and marks key as most recently used.
// ok is false when key is not cached; Get never evicts.
func (c *LRUCache[K, V]) Get(key K) (value V, ok bool) {
	h, ok := c.index[key]
	if !ok {
		c.metrics.Miss()
		return value, false
	}
	c.metrics.Hit()
	c.list.MoveToBack(h)
	return c.list.Value(h), true
}

// Lookup is Get for callers that want a miss as an error. The error wraps ErrNotFound.
func (c *LRUCache[K, V]) Lookup(key K) (V, error) {
	value, ok := c.Get(key)
	if !ok {
		return value, fmt.Errorf("lookup %v: %w", key, ErrNotFound)
	}
	return value, nil
}

// Peek returns the value for key without changing its recency.
func (c *LRUCache[K, V]) Peek(key K) (value V, ok bool) {
	h, ok := c.index[key]
	if !ok {
		return value, false
	}
	return c.list.Value(h), true
}

/*
Put stores value under key and marks key as most recently used.

  - If the key exists: the value is replaced and the size is unchanged
  - If the key is new and the cache is full: the least recently used entry is evicted first,
    so the size never goes above capacity, then the new entry is added

It reports whether an entry was evicted.
*/
func (c *LRUCache[K, V]) Put(key K, value V) (evicted bool) {
	if h, ok := c.index[key]; ok {
		c.list.SetValue(h, value)
		c.list.MoveToBack(h)
		return false
	}

	if len(c.index) >= c.capacity {
		c.evictOldest()
		evicted = true
	}

	c.index[key] = c.list.PushBack(key, value)
	return evicted
}

// Delete removes key. It reports false, and changes nothing, when key is not cached.
func (c *LRUCache[K, V]) Delete(key K) bool {
	h, ok := c.index[key]
	if !ok {
		return false
	}
	c.list.Remove(h)
	delete(c.index, key)
	return true
}

// Contains reports whether key is cached. It is not an access: recency is unchanged.
func (c *LRUCache[K, V]) Contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

// Oldest returns the entry that the next eviction would remove, without touching it.
func (c *LRUCache[K, V]) Oldest() (key K, value V, ok bool) {
	h, ok := c.list.Front()
	if !ok {
		return key, value, false
	}
	return c.list.Key(h), c.list.Value(h), true
}

// Reset removes every entry. The capacity is kept.
func (c *LRUCache[K, V]) Reset() {
	clear(c.index)
	c.list.Reset()
}

// Len returns the number of cached entries.
func (c *LRUCache[K, V]) Len() int { return len(c.index) }

// Cap returns the capacity set at construction.
func (c *LRUCache[K, V]) Cap() int { return c.capacity }

// All yields every entry from least to most recently used. It does not change recency.
// The cache must not be modified while the sequence is being ranged over.
func (c *LRUCache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for h, ok := c.list.Front(); ok; h, ok = c.list.Next(h) {
			if !yield(c.list.Key(h), c.list.Value(h)) {
				return
			}
		}
	}
}

// Keys yields every key from least to most recently used.
func (c *LRUCache[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range c.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values yields every value from least to most recently used.
func (c *LRUCache[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range c.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// String renders the entries in recency order, for debugging.
func (c *LRUCache[K, V]) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "LRUCache(cap=%d)[", c.capacity)
	first := true
	for k, v := range c.All() {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&b, "%v:%v", k, v)
	}
	b.WriteByte(']')
	return b.String()
}

// evictOldest removes the entry at the front of the list from both the list and the index.
func (c *LRUCache[K, V]) evictOldest() {
	h, ok := c.list.Front()
	if !ok {
		return
	}
	key, _ := c.list.Remove(h)
	delete(c.index, key)
	c.metrics.Eviction()
}

// verify checks that the index and the list describe the same entries.
func (c *LRUCache[K, V]) verify() error {
	if err := c.list.Verify(); err != nil {
		return err
	}
	if len(c.index) != c.list.Len() {
		return fmt.Errorf("index has %d keys, list has %d entries", len(c.index), c.list.Len())
	}
	if len(c.index) > c.capacity {
		return fmt.Errorf("size %d exceeds capacity %d", len(c.index), c.capacity)
	}
	for h, ok := c.list.Front(); ok; h, ok = c.list.Next(h) {
		key := c.list.Key(h)
		if got, found := c.index[key]; !found || got != h {
			return fmt.Errorf("key %v at slot %d indexed as %d (found=%v)", key, h, got, found)
		}
	}
	return nil
}
