package engine

import (
	"context"
	"fmt"

	"github.com/krisalay/lru-cache/types"
	"github.com/krisalay/lru-cache/writepolicy"
)

/*
CacheEngine is the policy layer of a LoadingCache.
It is responsible for the "behavior" around the cache, NOT storage.

It decides:
  - How data is loaded on cache miss
  - How writes are propagated to the backing store
  - How metrics are recorded
  - How keys are named when concurrent loads are collapsed

It does NOT:
  - Store data
  - Decide eviction order
  - Handle locking
*/
type CacheEngine[K comparable, V any] struct {

	// Loader is how the cache talks to the outside world when it does NOT have the data.
	// If this is nil, a miss is just a miss (ErrNotFound).
	Loader types.Loader[K, V]

	// WritePolicy decides what happens when data is written to the cache.
	// If nil, cache writes stay only in memory.
	WritePolicy writepolicy.WritePolicy[K, V]

	// Metrics is how we keep track of what the cache is doing.
	Metrics types.Metrics

	// KeyString names a key for load deduplication. Two keys that render
	// to the same string share one in-flight load, so it must be injective
	// for the key type in use. Defaults to fmt.Sprintf("%T:%#v"), which quotes strings.
	KeyString func(K) string
}

// NewCacheEngine creates a CacheEngine. Any argument may be nil.
func NewCacheEngine[K comparable, V any](
	loader types.Loader[K, V],
	writePolicy writepolicy.WritePolicy[K, V],
	metrics types.Metrics,
) *CacheEngine[K, V] {

	// Ensure metrics is always non-nil
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}

	return &CacheEngine[K, V]{
		Loader:      loader,
		WritePolicy: writePolicy,
		Metrics:     metrics,
		KeyString:   defaultKeyString[K],
	}
}

func defaultKeyString[K comparable](key K) string {
	return fmt.Sprintf("%T:%#v", key, key)
}

// CanLoad reports whether a loader is configured.
func (e *CacheEngine[K, V]) CanLoad() bool { return e.Loader != nil }

// Load fetches key from the backing store.
func (e *CacheEngine[K, V]) Load(ctx context.Context, key K) (V, error) {
	if e.Loader == nil {
		var zero V
		return zero, fmt.Errorf("load %v: no loader: %w", key, types.ErrNotFound)
	}
	return e.Loader.Load(ctx, key)
}

// LoadKey returns the deduplication name of key.
func (e *CacheEngine[K, V]) LoadKey(key K) string {
	if e.KeyString == nil {
		return defaultKeyString(key)
	}
	return e.KeyString(key)
}

/*
OnWrite is called whenever something is written to the cache.
Write propagation depends entirely on the configured WritePolicy.
*/
func (e *CacheEngine[K, V]) OnWrite(ctx context.Context, key K, value V) error {
	if e.WritePolicy == nil {
		return nil
	}
	return e.WritePolicy.OnWrite(ctx, key, value)
}

// Close releases the write policy, flushing pending write-backs.
func (e *CacheEngine[K, V]) Close() {
	if e.WritePolicy != nil {
		e.WritePolicy.Close()
	}
}
