package writepolicy

import (
	"context"
	"fmt"

	"github.com/krisalay/lru-cache/types"
)

/*
WriteThroughPolicy forwards every cache write to the backing store immediately.

So the flow is: Cache write → DB write (synchronous)
If the backing store is slow, cache writes become slow.
*/
type WriteThroughPolicy[K comparable, V any] struct {
	store types.Loader[K, V]
}

// NewWriteThroughPolicy creates a new write-through policy.
func NewWriteThroughPolicy[K comparable, V any](store types.Loader[K, V]) *WriteThroughPolicy[K, V] {
	return &WriteThroughPolicy[K, V]{store: store}
}

// OnWrite writes the data to the backing store and returns its error.
func (w *WriteThroughPolicy[K, V]) OnWrite(ctx context.Context, key K, value V) error {
	if err := w.store.Put(ctx, key, value); err != nil {
		return fmt.Errorf("write-through %v: %w", key, err)
	}
	return nil
}

// Close has nothing to release.
func (w *WriteThroughPolicy[K, V]) Close() {}
