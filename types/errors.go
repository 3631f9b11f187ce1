package types

import "errors"

var (
	// ErrNotFound reports a key that is not in the cache (or not in the backing store).
	ErrNotFound = errors.New("key not found")

	// ErrInvalidCapacity reports a capacity that is zero or negative.
	ErrInvalidCapacity = errors.New("capacity must be positive")

	// ErrClosed reports a write to a policy that has been closed.
	ErrClosed = errors.New("write policy is closed")

	// ErrWriteDropped reports a write-back that was dropped because the queue was full.
	ErrWriteDropped = errors.New("write-back queue full, write dropped")
)
