package workerpool

import (
	"context"

	"github.com/CNSawyer/mydotey-objectpool"
)

// Pool is a bounded thread pool: a specialization of objectpool.Pool where
// each entry's payload is a long-lived worker rather than an arbitrary
// resource. Submit acquires a worker and hands it the task through its
// mailbox; the worker returns itself to the pool once the task completes.
type Pool struct {
	pool *objectpool.Pool[*worker]
}

// New constructs a bounded Pool. Workers are created lazily up to
// WithMaxSize and prewarmed up to WithMinSize, the same as objectpool.Pool.
func New(opts ...objectpool.Option) *Pool {
	return &Pool{
		pool: objectpool.NewPool(
			func() (*worker, error) { return newWorker(), nil },
			func(w *worker) { w.close() },
			opts...,
		),
	}
}

// Submit acquires a worker, blocking until one is available, the pool
// closes, or ctx is canceled, then hands it task. Returns ErrNilTask if
// task is nil.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	entry, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	w := entry.Object()
	w.dispatch(task, func() { p.pool.Release(entry) })
	return nil
}

// TrySubmit is the non-blocking variant of Submit: if no worker is
// immediately available, it returns ok=false without queuing the task.
func (p *Pool) TrySubmit(task Task) (ok bool, err error) {
	if task == nil {
		return false, ErrNilTask
	}
	entry, ok, err := p.pool.TryAcquire()
	if !ok || err != nil {
		return ok, err
	}
	w := entry.Object()
	w.dispatch(task, func() { p.pool.Release(entry) })
	return true, nil
}

// Size returns the number of workers currently resident in the pool.
func (p *Pool) Size() int {
	return p.pool.Size()
}

// Close closes the underlying object pool, which signals every worker's
// loop goroutine to exit through the close hook. It does not wait for those
// goroutines to finish.
func (p *Pool) Close() {
	p.pool.Close()
}
