package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// scaleOutConcurrency bounds how many factory calls a single scale-out
// batch runs at once, mirroring the teacher's cleanup errgroup limit.
const scaleOutConcurrency = 4

// AutoScaleConfig extends Config with the auto-scale engine's timing and
// growth parameters.
type AutoScaleConfig[T any] struct {
	Config

	// CheckInterval is the background sweep period. Must be > 0.
	CheckInterval time.Duration
	// ObjectTTL is the maximum entry age before a refresh is owed. Must be > 0.
	ObjectTTL time.Duration
	// MaxIdleTime is the idle duration after which an Available entry above
	// MinSize is scaled in. Must be > 0.
	MaxIdleTime time.Duration
	// ScaleFactor is the batch size created on a miss-path scale-out.
	// ScaleFactor == 1 disables batch growth (only the single miss-path
	// entry is created). Must be >= 1.
	ScaleFactor int
	// StaleChecker, if set, flags a payload as needing refresh independent
	// of ObjectTTL. A panic inside StaleChecker is recovered, logged, and
	// treated as false.
	StaleChecker func(T) bool
}

// Validate reports every violated constraint at once via errors.Join.
func (c AutoScaleConfig[T]) Validate() error {
	var errs []error
	if err := c.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("checkInterval must be greater than 0, got %s", c.CheckInterval))
	}
	if c.ObjectTTL <= 0 {
		errs = append(errs, fmt.Errorf("objectTtl must be greater than 0, got %s", c.ObjectTTL))
	}
	if c.MaxIdleTime <= 0 {
		errs = append(errs, fmt.Errorf("maxIdleTime must be greater than 0, got %s", c.MaxIdleTime))
	}
	if c.ScaleFactor < 1 {
		errs = append(errs, fmt.Errorf("scaleFactor must be >= 1, got %d", c.ScaleFactor))
	}
	return errors.Join(errs...)
}

// AutoScalePool composes Pool with batched scale-out on miss, periodic
// scale-in on idle, and TTL/stale refresh. It embeds *Pool so Acquire and
// TryAcquire are inherited unchanged; Release and Close are overridden to
// add auto-scale semantics.
type AutoScalePool[T any] struct {
	*Pool[T]

	cfg AutoScaleConfig[T]

	// scalingOut is the single-bit in-flight flag: at most one scale-out
	// batch runs concurrently. Reset happens in one deferred finalizer
	// covering panics, so a batch that panics can never wedge it permanently.
	scalingOut atomic.Bool

	refresh *refreshExecutor

	sweepStop     chan struct{}
	sweepDone     chan struct{}
	sweepStopOnce sync.Once
}

// NewAutoScalePool constructs an AutoScalePool. Panics if factory is nil or
// cfg fails Validate.
func NewAutoScalePool[T any](factory Factory[T], onClose CloseHook[T], cfg AutoScaleConfig[T]) *AutoScalePool[T] {
	if err := cfg.Validate(); err != nil {
		panic("objectpool: " + err.Error())
	}

	base := NewPool(factory, onClose, cfg.Config)
	p := &AutoScalePool[T]{
		Pool:      base,
		cfg:       cfg,
		refresh:   newRefreshExecutor(4),
		sweepStop: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
	base.onCreate = p.onMissCreate

	go p.sweepLoop()
	return p
}

// onMissCreate is the seam Pool invokes after creating a fresh entry on the
// miss path. It schedules (at most one concurrent) scale-out batch.
func (p *AutoScalePool[T]) onMissCreate(*Entry[T]) {
	if p.cfg.ScaleFactor <= 1 {
		return
	}
	if !p.scalingOut.CompareAndSwap(false, true) {
		// A batch is already in flight; idempotent scheduling attempts are
		// silently dropped (see design notes on the scale-out flag).
		return
	}
	go p.runScaleOutBatch()
}

func (p *AutoScalePool[T]) runScaleOutBatch() {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("scale-out batch panicked", "error", r)
		}
		p.scalingOut.Store(false)
	}()

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(scaleOutConcurrency)

	for range p.cfg.ScaleFactor - 1 {
		g.Go(func() error {
			p.scaleOutOne()
			return nil
		})
	}
	_ = g.Wait()
}

func (p *AutoScalePool[T]) scaleOutOne() {
	if p.Pool.closed.Load() {
		return
	}
	if !p.avail.tryAcquirePermit() {
		return
	}

	payload, err := p.factory()
	if err != nil {
		logThrottled("scale-out factory call failed", "error", err)
		p.avail.releasePermit(p.Pool.closed.Load)
		return
	}

	e := newEntry(payload)
	p.table.insert(e)

	if p.Pool.closed.Load() {
		closedPayload, _ := e.markClosed()
		p.table.remove(e.key)
		p.avail.releasePermit(p.Pool.closed.Load)
		p.invokeOnClose(closedPayload)
		return
	}

	p.avail.push(e)
	p.metrics.IncScaleOut()
}

// Release overrides Pool.Release to route PendingRefresh entries through
// the refresh/scale-in path instead of returning them straight to the
// available queue. As with Pool.Release, an entry that Close has already
// closed is accepted after Close and only its permit is handed back.
func (p *AutoScalePool[T]) Release(e *Entry[T], token uint64) {
	if _, ok := p.table.get(e.key); !ok {
		panic(string(ErrForeignEntry))
	}
	if !e.validateToken(token) {
		if p.Pool.closed.Load() && e.statusIs(StatusClosed) {
			p.avail.releasePermit(p.Pool.closed.Load)
			return
		}
		panic(string(ErrDoubleRelease))
	}

	if e.statusIs(StatusPendingRefresh) {
		p.refresh.run(func() { p.resolvePendingRefresh(e) })
		return
	}

	if p.Pool.closed.Load() {
		payload, _ := e.markClosed()
		p.avail.releasePermit(p.Pool.closed.Load)
		p.invokeOnClose(payload)
		return
	}

	e.markAvailable()
	p.avail.push(e)
	p.avail.releasePermit(p.Pool.closed.Load)
}

// resolvePendingRefresh performs the refresh owed on an entry that was
// marked PendingRefresh while acquired. On factory success the old entry is
// closed and a replacement installed under the same key. On factory failure
// the entry is scaled out of existence if it has outlived its TTL or is
// still stale; otherwise the existing, still-usable entry is returned.
func (p *AutoScalePool[T]) resolvePendingRefresh(e *Entry[T]) {
	payload, err := p.factory()
	if err != nil {
		logThrottled("pending refresh factory call failed", "key", e.key, "error", err)
		if time.Since(e.CreationTime()) >= p.cfg.ObjectTTL || p.checkStale(e.Payload()) {
			closedPayload, _ := e.markClosed()
			p.table.remove(e.key)
			p.invokeOnClose(closedPayload)
			p.avail.releasePermit(p.Pool.closed.Load)
			return
		}
		p.returnAsAvailable(e)
		return
	}

	replacement := newEntry(payload)
	p.table.swap(e.key, replacement)
	oldPayload, _ := e.markClosed()
	p.invokeOnClose(oldPayload)
	p.metrics.IncRefresh()
	p.returnAsAvailable(replacement)
}

func (p *AutoScalePool[T]) returnAsAvailable(e *Entry[T]) {
	if p.Pool.closed.Load() {
		payload, _ := e.markClosed()
		p.avail.releasePermit(p.Pool.closed.Load)
		p.invokeOnClose(payload)
		return
	}
	e.markAvailable()
	p.avail.push(e)
	p.avail.releasePermit(p.Pool.closed.Load)
}

func (p *AutoScalePool[T]) checkStale(payload T) (stale bool) {
	if p.cfg.StaleChecker == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("staleChecker panicked, treating as not stale", "error", r)
			stale = false
		}
	}()
	return p.cfg.StaleChecker(payload)
}

func (p *AutoScalePool[T]) sweepLoop() {
	defer close(p.sweepDone)
	ticker := time.NewTicker(p.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.sweepStop:
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *AutoScalePool[T]) sweep() {
	now := time.Now()
	for _, key := range p.table.snapshot() {
		e, ok := p.table.get(key)
		if !ok {
			continue
		}
		p.sweepEntry(e, now)
	}
}

func (p *AutoScalePool[T]) sweepEntry(e *Entry[T], now time.Time) {
	if p.trySweepScaleIn(e, now) {
		return
	}
	p.sweepRefreshCheck(e, now)
}

// trySweepScaleIn removes and closes e if it is idle past maxIdleTime,
// Available, and the pool is currently above minSize. Returns true only if
// it removed the entry; when the claim loses the race to a concurrent
// acquirer it returns false, so the refresh check still runs on the entry.
func (p *AutoScalePool[T]) trySweepScaleIn(e *Entry[T], now time.Time) bool {
	if !e.statusIs(StatusAvailable) {
		return false
	}
	if now.Sub(e.lastUsed()) < p.cfg.MaxIdleTime {
		return false
	}
	if p.table.size() <= p.cfg.MinSize {
		return false
	}

	removed, ok := p.avail.claimForRemoval(e.key)
	if !ok {
		return false
	}
	payload, _ := removed.markClosed()
	p.table.remove(removed.key)
	p.avail.releasePermit(p.Pool.closed.Load)
	p.invokeOnClose(payload)
	p.metrics.IncScaleIn()
	return true
}

func (p *AutoScalePool[T]) sweepRefreshCheck(e *Entry[T], now time.Time) {
	needsRefresh := now.Sub(e.CreationTime()) >= p.cfg.ObjectTTL || p.checkStale(e.Payload())
	if !needsRefresh {
		return
	}

	switch e.Status() {
	case StatusAvailable:
		p.refreshAvailable(e)
	case StatusAcquired:
		e.markPendingRefreshIfAcquired()
	}
}

// refreshAvailable rebuilds an Available entry in place: claim it out of
// the queue, build a replacement, and swap it into the table under the
// same key. On factory failure the original entry is put back unchanged.
func (p *AutoScalePool[T]) refreshAvailable(old *Entry[T]) {
	claimed, ok := p.avail.claimForRemoval(old.key)
	if !ok {
		return
	}

	payload, err := p.factory()
	if err != nil {
		logThrottled("refresh factory call failed, keeping existing entry", "key", claimed.key, "error", err)
		claimed.markAvailable()
		p.avail.push(claimed)
		return
	}

	replacement := newEntry(payload)
	p.table.swap(claimed.key, replacement)
	oldPayload, _ := claimed.markClosed()
	p.avail.push(replacement)
	p.invokeOnClose(oldPayload)
	p.metrics.IncRefresh()
}

// Close stops the background sweep, drains in-flight refreshes, and closes
// the underlying bounded engine.
func (p *AutoScalePool[T]) Close() {
	p.sweepStopOnce.Do(func() { close(p.sweepStop) })
	<-p.sweepDone
	p.refresh.wait()
	p.Pool.Close()
}
