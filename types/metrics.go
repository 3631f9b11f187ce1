package types

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache calls these methods whenever something happens.

Only accesses count. Contains, Peek and iteration are not accesses, so they report nothing.
*/
type Metrics interface {

	// Hit is called when a lookup finds the key.
	Hit()

	// Miss is called when a lookup does NOT find the key.
	Miss()

	// Eviction is called when the least recently used key is removed to make room for a new one.
	Eviction()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

The cache always holds a non-nil Metrics, so callers that do not care
about metrics get this one and the hot path never checks for nil.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Eviction() {}
