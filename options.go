package objectpool

import (
	"fmt"
	"time"
)

// requireNonNegative panics if v < 0 with a descriptive message.
func requireNonNegative[T int | time.Duration](name string, v T) {
	if v < 0 {
		panic(fmt.Sprintf("objectpool: %s must not be negative, got %v", name, v))
	}
}

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("objectpool: %s must be greater than 0, got %v", name, v))
	}
}

// options holds the scalar construction parameters shared by Pool and
// AutoScalePool. It is intentionally not generic: a generic Option[T] would
// force every call site to spell out a type parameter (WithMinSize[Widget](2))
// for a value that never depends on T, which is not how this package's
// users should have to write option lists.
type options struct {
	minSize       int
	maxSize       int
	checkInterval time.Duration
	objectTTL     time.Duration
	maxIdleTime   time.Duration
	scaleFactor   int
	queueCapacity int
}

func defaultOptions() options {
	return options{
		minSize:       DefaultMinSize,
		maxSize:       DefaultMaxSize,
		checkInterval: DefaultCheckInterval,
		objectTTL:     DefaultObjectTTL,
		maxIdleTime:   DefaultMaxIdleTime,
		scaleFactor:   DefaultScaleFactor,
		queueCapacity: DefaultQueueCapacity,
	}
}

// Option configures a Pool, AutoScalePool, or their workerpool counterparts
// during construction.
type Option func(*options)

// WithMinSize sets the number of entries prewarmed at construction and, for
// an auto-scale pool, the floor the background sweep will not scale below.
//
// Default: DefaultMinSize.
//
// Panics if size is negative.
func WithMinSize(size int) Option {
	requireNonNegative("minSize", size)
	return func(o *options) { o.minSize = size }
}

// WithMaxSize sets the hard cap on resident entries.
//
// Default: DefaultMaxSize.
//
// Panics if size <= 0.
func WithMaxSize(size int) Option {
	requirePositive("maxSize", size)
	return func(o *options) { o.maxSize = size }
}

// WithCheckInterval sets the auto-scale background sweep period. Has no
// effect on a bounded (non-auto-scale) pool.
//
// Default: DefaultCheckInterval.
//
// Panics if d <= 0.
func WithCheckInterval(d time.Duration) Option {
	requirePositive("checkInterval", d)
	return func(o *options) { o.checkInterval = d }
}

// WithObjectTTL sets the maximum entry age before the auto-scale sweep
// refreshes it. Has no effect on a bounded (non-auto-scale) pool.
//
// Default: DefaultObjectTTL.
//
// Panics if d <= 0.
func WithObjectTTL(d time.Duration) Option {
	requirePositive("objectTTL", d)
	return func(o *options) { o.objectTTL = d }
}

// WithMaxIdleTime sets the idle duration after which an available entry
// above MinSize is scaled in. Has no effect on a bounded (non-auto-scale)
// pool.
//
// Default: DefaultMaxIdleTime.
//
// Panics if d <= 0.
func WithMaxIdleTime(d time.Duration) Option {
	requirePositive("maxIdleTime", d)
	return func(o *options) { o.maxIdleTime = d }
}

// WithScaleFactor sets the batch size created on a miss-path scale-out.
// A value of 1 disables batch growth, so only the single miss-path entry is
// created. Has no effect on a bounded (non-auto-scale) pool.
//
// Default: DefaultScaleFactor.
//
// Panics if factor < 1.
func WithScaleFactor(factor int) Option {
	if factor < 1 {
		panic(fmt.Sprintf("objectpool: scaleFactor must be >= 1, got %d", factor))
	}
	return func(o *options) { o.scaleFactor = factor }
}

// WithQueueCapacity sets the bounded intake queue size used by the
// workerpool package's auto-scale adapter. Has no effect outside workerpool.
//
// Default: DefaultQueueCapacity.
//
// Panics if capacity <= 0.
func WithQueueCapacity(capacity int) Option {
	requirePositive("queueCapacity", capacity)
	return func(o *options) { o.queueCapacity = capacity }
}

// Resolved holds the fully-applied values of an Option list. It exists for
// callers, such as the workerpool package, that need a value (queue
// capacity) this package's own constructors don't otherwise expose.
type Resolved struct {
	MinSize       int
	MaxSize       int
	CheckInterval time.Duration
	ObjectTTL     time.Duration
	MaxIdleTime   time.Duration
	ScaleFactor   int
	QueueCapacity int
}

// Resolve applies opts over the package defaults and returns the result.
func Resolve(opts ...Option) Resolved {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return Resolved{
		MinSize:       o.minSize,
		MaxSize:       o.maxSize,
		CheckInterval: o.checkInterval,
		ObjectTTL:     o.objectTTL,
		MaxIdleTime:   o.maxIdleTime,
		ScaleFactor:   o.scaleFactor,
		QueueCapacity: o.queueCapacity,
	}
}
