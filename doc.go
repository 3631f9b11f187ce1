// Package cache implements a fixed-capacity key-value cache with LRU eviction.
//
// LRUCache is the core: a map index over an arena-backed doubly linked list,
// giving O(1) Get, Put, Delete and Contains while keeping entries ordered from
// least to most recently used. It is meant for single-goroutine use.
//
// LoadingCache guards an LRUCache with one mutex, loads misses through a
// backing store and propagates writes according to a write policy.
package cache
