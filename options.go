package cache

import (
	"errors"

	"github.com/krisalay/lru-cache/types"
)

// Option configures an LRUCache at construction.
type Option func(*options) error

type options struct {
	metrics types.Metrics
}

// WithMetrics reports hits, misses and evictions to m.
func WithMetrics(m types.Metrics) Option {
	return func(o *options) error {
		if m == nil {
			return errors.New("metrics must not be nil")
		}
		o.metrics = m
		return nil
	}
}
