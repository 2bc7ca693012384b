package objectpool

import "github.com/CNSawyer/mydotey-objectpool/internal/core"

// StaleChecker flags a payload as needing refresh independent of the
// configured ObjectTTL. A panic inside StaleChecker is recovered, logged,
// and treated as false.
type StaleChecker[T any] func(T) bool

// AutoScalePool extends Pool with batched scale-out on a miss, periodic
// scale-in of idle entries above MinSize, and TTL/stale-driven refresh. It
// embeds *Pool so Acquire, TryAcquire, Size, and Metrics are used directly;
// Release and Close carry auto-scale semantics and are defined here.
type AutoScalePool[T any] struct {
	*Pool[T]
	c *core.AutoScalePool[T]
}

// NewAutoScalePool constructs an AutoScalePool. staleChecker may be nil, in
// which case only ObjectTTL drives refresh.
//
// Panics if factory is nil or an option receives an invalid value.
func NewAutoScalePool[T any](factory Factory[T], onClose CloseHook[T], staleChecker StaleChecker[T], opts ...Option) *AutoScalePool[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg := core.AutoScaleConfig[T]{
		Config:        core.Config{MinSize: o.minSize, MaxSize: o.maxSize},
		CheckInterval: o.checkInterval,
		ObjectTTL:     o.objectTTL,
		MaxIdleTime:   o.maxIdleTime,
		ScaleFactor:   o.scaleFactor,
		StaleChecker:  staleChecker,
	}
	c := core.NewAutoScalePool(core.Factory[T](factory), core.CloseHook[T](onClose), cfg)
	return &AutoScalePool[T]{Pool: &Pool[T]{c: c.Pool}, c: c}
}

// Release returns entry to the pool. An entry that came due for refresh
// while acquired is rebuilt instead of being returned straight to the
// available queue; the rebuild runs on a background goroutine, or inline
// when the pool's refresh goroutines are all busy.
func (p *AutoScalePool[T]) Release(entry *Entry[T]) {
	p.c.Release(entry.e, entry.token)
}

// Close stops the background sweep, waits for in-flight refreshes to
// finish, and closes the underlying bounded engine.
func (p *AutoScalePool[T]) Close() {
	p.c.Close()
}
