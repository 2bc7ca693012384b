package objectpool

import "time"

// Default configuration values used by NewPool and NewAutoScalePool when the
// corresponding Option is not supplied. These constants are exported so
// callers can reference the defaults when building configurations relative
// to them (e.g. 2 * DefaultCheckInterval).
const (
	// DefaultMinSize is the prewarm count and, for an auto-scale pool, the
	// scale-in floor.
	DefaultMinSize = 0

	// DefaultMaxSize is the hard cap on resident entries.
	DefaultMaxSize = 8

	// DefaultCheckInterval is the auto-scale background sweep period.
	DefaultCheckInterval = 30 * time.Second

	// DefaultObjectTTL is the maximum entry age before a refresh is owed.
	DefaultObjectTTL = 10 * time.Minute

	// DefaultMaxIdleTime is the idle duration after which an available
	// entry above MinSize is scaled in.
	DefaultMaxIdleTime = 5 * time.Minute

	// DefaultScaleFactor is the batch size created on a miss-path
	// scale-out. A value of 1 disables batch growth.
	DefaultScaleFactor = 1

	// DefaultQueueCapacity is the bounded intake queue size used by the
	// thread-pool adapters' auto-scale variant.
	DefaultQueueCapacity = 64
)
