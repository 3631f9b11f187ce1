package writepolicy

import (
	"context"
	"sync"

	"github.com/krisalay/lru-cache/types"
)

// writeReq represents one pending write operation that needs to be sent to the backing store.
type writeReq[K comparable, V any] struct {
	ctx   context.Context
	key   K
	value V
}

/*
WriteBackPolicy manages asynchronous writes to the backing store.

Writes are queued on a buffered channel and a single worker drains it,
so writes reach the store in the order they were accepted.
*/
type WriteBackPolicy[K comparable, V any] struct {
	store types.Loader[K, V]

	// onError receives errors returned by the backing store. May be nil.
	onError func(key K, err error)

	// mu guards closed and the send on ch, so no send races with close(ch).
	mu     sync.RWMutex
	closed bool
	ch     chan writeReq[K, V]

	wg sync.WaitGroup
}

// NewWriteBackPolicy creates a write-back policy with room for buffer pending writes
// and starts its worker. onError is called from the worker for every failed store write.
func NewWriteBackPolicy[K comparable, V any](store types.Loader[K, V], buffer int, onError func(key K, err error)) *WriteBackPolicy[K, V] {
	w := &WriteBackPolicy[K, V]{
		store:   store,
		onError: onError,
		ch:      make(chan writeReq[K, V], buffer),
	}

	w.wg.Add(1)
	go w.worker()

	return w
}

// OnWrite queues the write. It never blocks: when the queue is full the write is
// dropped and ErrWriteDropped is returned.
func (w *WriteBackPolicy[K, V]) OnWrite(ctx context.Context, key K, value V) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return types.ErrClosed
	}

	select {
	case w.ch <- writeReq[K, V]{ctx, key, value}:
		return nil
	default:
		return types.ErrWriteDropped
	}
}

// worker writes queued requests to the backing store until the channel is closed.
func (w *WriteBackPolicy[K, V]) worker() {
	defer w.wg.Done()

	for req := range w.ch {
		if err := w.store.Put(req.ctx, req.key, req.value); err != nil && w.onError != nil {
			w.onError(req.key, err)
		}
	}
}

/*
Close shuts down the write-back policy gracefully.
  1. Stop accepting writes
  2. Close the channel
  3. Wait for the worker to finish processing queued writes

Close is safe to call more than once.
*/
func (w *WriteBackPolicy[K, V]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.ch)
	w.mu.Unlock()

	w.wg.Wait()
}
