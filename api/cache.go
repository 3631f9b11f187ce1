// Package api defines the public contracts of the cache, without exposing internals.
package api

import (
	"context"
	"iter"
)

/*
Cache is the single-goroutine LRU cache.

Access means Get, Lookup or Put. Only an access changes recency;
Contains, Peek, Oldest and the iterators never do.
*/
type Cache[K comparable, V any] interface {

	/*
		Get returns the value for key and marks key as most recently used.

		BEHAVIOR:
		-------------------
		1. If the key is cached: return (value, true)
		2. If not: return (zero, false). Nothing is evicted.
	*/
	Get(key K) (V, bool)

	// Lookup is Get with the miss reported as an error wrapping ErrNotFound.
	Lookup(key K) (V, error)

	// Peek is Get without the recency update.
	Peek(key K) (V, bool)

	/*
		Put stores a key-value pair and marks key as most recently used.

		BEHAVIOR:
		---------
		- Existing key: value replaced, size unchanged
		- New key in a full cache: the least recently used key is evicted BEFORE the insert

		Returns whether an eviction happened.
	*/
	Put(key K, value V) bool

	// Delete removes key. Deleting a missing key is a no-op and returns false.
	Delete(key K) bool

	// Contains checks membership only.
	Contains(key K) bool

	// Oldest returns the next eviction candidate.
	Oldest() (K, V, bool)

	// Reset empties the cache and keeps the capacity.
	Reset()

	Len() int
	Cap() int

	// All, Keys and Values walk entries from least to most recently used.
	All() iter.Seq2[K, V]
	Keys() iter.Seq[K]
	Values() iter.Seq[V]

	String() string
}

/*
LoadingCache is the concurrency-safe cache with read-through loading and write propagation.
*/
type LoadingCache[K comparable, V any] interface {

	/*
		Get retrieves the value associated with the given key.

		BEHAVIOR:
		-------------------
		1. If the key is cached: return it (cache hit)
		2. If not: load it from the backing store, cache it and return it (cache miss)
		   Concurrent misses of one key share a single load.
	*/
	Get(ctx context.Context, key K) (V, error)

	// Peek reads the cache only: no load, no recency change.
	Peek(key K) (V, bool)

	/*
		Put stores a key-value pair in the cache and applies the write policy
		(write-through or write-back). The write policy's error is returned.
	*/
	Put(ctx context.Context, key K, value V) error

	/*
		Remove deletes a key from the cache immediately.
		It does NOT affect the backing store. Removing a missing key is safe.
	*/
	Remove(key K) bool

	Contains(key K) bool
	Len() int
	Reset()

	// Range walks entries from least to most recently used while holding the cache lock.
	Range(fn func(key K, value V) bool)

	// Keys returns a snapshot, least recently used first.
	Keys() []K

	/*
		Close gracefully shuts down the cache.

		BEHAVIOR:
		---------
		- Flushes any pending write-back operations
		- Stops background goroutines
	*/
	Close()
}
