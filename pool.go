package objectpool

import (
	"context"

	"github.com/CNSawyer/mydotey-objectpool/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Factory produces a payload for a new Entry. A Factory may fail; a failure
// on Acquire is surfaced to the caller, while a failure during prewarm or
// (in AutoScalePool) scale-out/refresh is logged and the engine continues
// with what it already has.
type Factory[T any] func() (T, error)

// CloseHook is invoked once per payload at removal: scale-in, refresh
// eviction of the superseded entry, or Close. May be nil.
type CloseHook[T any] func(T)

// Entry wraps one pooled payload together with the release token Release
// requires. The underlying core.Entry is stored as an unexported field
// rather than embedded so that callers cannot reach internal transition
// methods through a type assertion.
type Entry[T any] struct {
	e     *core.Entry[T]
	token uint64
}

// Object returns the entry's current payload.
func (e *Entry[T]) Object() T {
	return e.e.Payload()
}

// Pool is a bounded collection of lazily created entries. Acquire blocks
// until an entry is available, the pool closes, or the caller's context is
// canceled; TryAcquire never blocks. It is safe for concurrent use by
// multiple goroutines.
type Pool[T any] struct {
	c *core.Pool[T]
}

// NewPool constructs a Pool that creates entries on demand via factory, up
// to MaxSize resident entries (see WithMaxSize), prewarming MinSize of them
// eagerly (see WithMinSize). onClose may be nil.
//
// Panics if factory is nil or an option receives an invalid value.
func NewPool[T any](factory Factory[T], onClose CloseHook[T], opts ...Option) *Pool[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg := core.Config{MinSize: o.minSize, MaxSize: o.maxSize}
	return &Pool[T]{c: core.NewPool(core.Factory[T](factory), core.CloseHook[T](onClose), cfg)}
}

// Acquire returns an available entry or creates a new one on demand.
// Returns ErrPoolClosed if Close has been called.
func (p *Pool[T]) Acquire(ctx context.Context) (*Entry[T], error) {
	e, token, err := p.c.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Entry[T]{e: e, token: token}, nil
}

// TryAcquire is the non-blocking variant of Acquire: if no permit is
// immediately free, it returns ok=false without creating anything;
// otherwise it takes an available entry or creates one, like Acquire.
func (p *Pool[T]) TryAcquire() (entry *Entry[T], ok bool, err error) {
	e, token, ok, err := p.c.TryAcquire()
	if !ok || err != nil {
		return nil, ok, err
	}
	return &Entry[T]{e: e, token: token}, true, nil
}

// Release returns entry to the pool. Calling Release twice on the same
// acquisition, or with an entry acquired from a different Pool, panics.
func (p *Pool[T]) Release(entry *Entry[T]) {
	p.c.Release(entry.e, entry.token)
}

// Size returns the number of entries currently resident in the pool,
// regardless of status.
func (p *Pool[T]) Size() int {
	return p.c.Size()
}

// Close transitions the pool to a terminal state, closing every resident
// entry through the close hook exactly once. Safe to call more than once.
func (p *Pool[T]) Close() {
	p.c.Close()
}

// Metrics returns a prometheus.Collector for this pool, named poolName in
// its const labels. Register it with a prometheus.Registerer of the
// caller's choosing; it is never registered automatically.
func (p *Pool[T]) Metrics(poolName string) prometheus.Collector {
	return p.c.Metrics(poolName)
}
