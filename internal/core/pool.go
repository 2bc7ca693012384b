package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Factory produces a payload for a new Entry. It may fail; a failure on the
// acquire path is surfaced to the caller, on the sweep/scale-out paths it is
// logged and the engine continues with what it already has.
type Factory[T any] func() (T, error)

// CloseHook is invoked once per payload at removal (scale-in, refresh
// eviction of the old entry, or Close). May be nil.
type CloseHook[T any] func(T)

// Config holds the bounded engine's construction parameters.
type Config struct {
	// MinSize is the prewarm count and the scale-in floor maintained by the
	// auto-scale extension. 0 ≤ MinSize ≤ MaxSize.
	MinSize int
	// MaxSize is the hard cap on resident entries. Must be ≥ 1.
	MaxSize int
}

// Validate reports every violated constraint at once via errors.Join.
func (c Config) Validate() error {
	var errs []error
	if c.MaxSize < 1 {
		errs = append(errs, fmt.Errorf("maxSize must be >= 1, got %d", c.MaxSize))
	}
	if c.MinSize < 0 {
		errs = append(errs, fmt.Errorf("minSize must not be negative, got %d", c.MinSize))
	}
	if c.MinSize > c.MaxSize && c.MaxSize >= 1 {
		errs = append(errs, fmt.Errorf("minSize (%d) must not exceed maxSize (%d)", c.MinSize, c.MaxSize))
	}
	return errors.Join(errs...)
}

// Pool manages a collection of Entry objects with on-demand creation bounded
// by maxSize. When Acquire finds no available entry, it creates one via the
// factory — up to maxSize entries total. When all entries are in use,
// Acquire blocks until one is released, the pool is closed, or the caller's
// context is canceled.
//
// It is safe for concurrent use by multiple goroutines.
type Pool[T any] struct {
	factory Factory[T]
	onClose CloseHook[T]

	table *Table[T]
	avail *availability[T]

	// addMu serializes factory calls and table inserts on the miss path
	// (create). It does not check the table size: the permit the caller
	// already holds bounds creation. The auto-scale scale-out batch does not
	// take addMu.
	addMu sync.Mutex

	maxSize int

	closed    atomic.Bool
	closeOnce sync.Once
	closeCh   chan struct{}

	// onCreate, if set, is invoked after a new entry is created and
	// acquired on the miss path. This is the seam the auto-scale extension
	// uses to trigger scale-out without Pool knowing it exists.
	onCreate func(*Entry[T])

	metricsOnce sync.Once
	metrics     *Metrics
}

// Metrics returns a prometheus.Collector for this pool, named poolName in
// its const labels. The same collector is returned on every call; register
// it with a prometheus.Registerer of the caller's choosing.
func (p *Pool[T]) Metrics(poolName string) *Metrics {
	p.metricsOnce.Do(func() {
		p.metrics = NewMetrics(poolName,
			func() float64 { return float64(p.table.size()) },
			func() float64 { return float64(p.table.size() - p.avail.len()) },
		)
	})
	return p.metrics
}

// NewPool constructs a Pool that creates entries on demand via factory, up
// to cfg.MaxSize resident entries, prewarming cfg.MinSize of them eagerly.
// Panics if factory is nil or cfg fails Validate.
func NewPool[T any](factory Factory[T], onClose CloseHook[T], cfg Config) *Pool[T] {
	if factory == nil {
		panic(string(ErrNilFactory))
	}
	if err := cfg.Validate(); err != nil {
		panic("objectpool: " + err.Error())
	}

	p := &Pool[T]{
		factory: factory,
		onClose: onClose,
		table:   newTable[T](),
		avail:   newAvailability[T](cfg.MaxSize, cfg.MaxSize-cfg.MinSize),
		maxSize: cfg.MaxSize,
		closeCh: make(chan struct{}),
	}
	p.prewarm(cfg.MinSize)
	return p
}

func (p *Pool[T]) prewarm(minSize int) {
	for range minSize {
		payload, err := p.factory()
		if err != nil {
			Logger().Warn("prewarm factory call failed", "error", err)
			continue
		}
		e := newEntry(payload)
		p.table.insert(e)
		p.avail.push(e)
	}
}

// Size returns the number of entries currently resident in the pool,
// regardless of status.
func (p *Pool[T]) Size() int {
	return p.table.size()
}

// Acquire returns an available Entry or creates a new one on demand.
// Returns ErrPoolClosed if the pool has been closed, checked at every point
// the protocol can observe a close: while waiting on the semaphore,
// immediately after acquiring a permit, and again after a successful
// factory call, so an in-flight creation racing a Close never hands back a
// live entry after the pool is declared closed.
func (p *Pool[T]) Acquire(ctx context.Context) (*Entry[T], uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context done while waiting for entry: %w", err)
	}

	select {
	case <-p.avail.sem:
	case <-p.closeCh:
		return nil, 0, ErrPoolClosed
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("context done while waiting for entry: %w", ctx.Err())
	}

	return p.acquireWithPermit()
}

// TryAcquire is the non-blocking variant of Acquire: if no permit is
// immediately available, it returns ok=false without creating anything.
func (p *Pool[T]) TryAcquire() (*Entry[T], uint64, bool, error) {
	if p.closed.Load() {
		return nil, 0, false, ErrPoolClosed
	}
	if !p.avail.tryAcquirePermit() {
		return nil, 0, false, nil
	}
	e, token, err := p.acquireWithPermit()
	if err != nil {
		return nil, 0, false, err
	}
	return e, token, true, nil
}

// acquireWithPermit runs the common protocol once a semaphore permit has
// already been claimed: pop-or-create, then hand back the claimed entry.
func (p *Pool[T]) acquireWithPermit() (*Entry[T], uint64, error) {
	if p.closed.Load() {
		p.avail.releasePermit(p.closed.Load)
		return nil, 0, ErrPoolClosed
	}

	if e, token, ok := p.avail.popClaim(); ok {
		return e, token, nil
	}

	e, err := p.create()
	if err != nil {
		p.avail.releasePermit(p.closed.Load)
		return nil, 0, fmt.Errorf("creating entry: %w", err)
	}

	if p.closed.Load() {
		payload, _ := e.markClosed()
		p.table.remove(e.key)
		p.avail.releasePermit(p.closed.Load)
		p.invokeOnClose(payload)
		return nil, 0, ErrPoolClosed
	}

	token := e.markAcquired()
	if p.onCreate != nil {
		p.onCreate(e)
	}
	return e, token, nil
}

// create invokes the factory and registers a new Acquired-bound entry in
// the table. addMu serializes this against concurrent miss-path creators;
// the permit the caller already holds is what bounds the number of
// resident entries.
func (p *Pool[T]) create() (*Entry[T], error) {
	p.addMu.Lock()
	defer p.addMu.Unlock()

	payload, err := p.factory()
	if err != nil {
		return nil, err
	}
	e := newEntry(payload)
	p.table.insert(e)
	return e, nil
}

// Release returns entry to the available queue. token must match the value
// returned by the Acquire call that produced entry; a mismatch (or an
// entry absent from this pool's table) panics, mirroring the teacher's
// double-release detection. After Close, releasing an entry that Close has
// already closed does not panic: only its permit is handed back.
func (p *Pool[T]) Release(e *Entry[T], token uint64) {
	if _, ok := p.table.get(e.key); !ok {
		panic(string(ErrForeignEntry))
	}
	if !e.validateToken(token) {
		if p.closed.Load() && e.statusIs(StatusClosed) {
			p.avail.releasePermit(p.closed.Load)
			return
		}
		panic(string(ErrDoubleRelease))
	}

	if p.closed.Load() {
		payload, _ := e.markClosed()
		p.avail.releasePermit(p.closed.Load)
		p.invokeOnClose(payload)
		return
	}

	e.markAvailable()
	p.avail.push(e)
	p.avail.releasePermit(p.closed.Load)
}

// Close transitions the pool to a terminal state. Subsequent Acquire calls
// return ErrPoolClosed; any Acquire already blocked on the semaphore is
// unblocked via closeCh and also returns ErrPoolClosed. Every resident
// entry is closed exactly once via the close hook. Safe to call more than
// once.
func (p *Pool[T]) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.closeCh)
		for _, e := range p.table.all() {
			payload, alreadyClosed := e.markClosed()
			if !alreadyClosed {
				p.invokeOnClose(payload)
			}
		}
	})
}

func (p *Pool[T]) invokeOnClose(payload T) {
	if p.onClose == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("onClose hook panicked", "error", r)
		}
	}()
	p.onClose(payload)
}

// entryKey returns e's key. Nothing in the package calls it; tests and
// callers use the exported Entry.Key instead.
func entryKey[T any](e *Entry[T]) uuid.UUID { return e.key }
