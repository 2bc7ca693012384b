package workerpool

import (
	"context"

	"github.com/CNSawyer/mydotey-objectpool"
)

// AutoScalePool is the auto-scaling specialization of Pool: it adds batched
// worker creation under contention, idle scale-in back to WithMinSize, and
// a bounded intake queue for tasks submitted while every worker is busy.
type AutoScalePool struct {
	pool  *objectpool.AutoScalePool[*worker]
	queue chan Task
}

// NewAutoScalePool constructs an AutoScalePool. The intake queue capacity
// is taken from WithQueueCapacity (default DefaultQueueCapacity).
func NewAutoScalePool(opts ...objectpool.Option) *AutoScalePool {
	resolved := objectpool.Resolve(opts...)
	return &AutoScalePool{
		pool: objectpool.NewAutoScalePool[*worker](
			func() (*worker, error) { return newWorker(), nil },
			func(w *worker) { w.close() },
			nil,
			opts...,
		),
		queue: make(chan Task, resolved.QueueCapacity),
	}
}

func (p *AutoScalePool) dispatch(entry *objectpool.Entry[*worker], task Task) {
	w := entry.Object()
	w.dispatch(task, func() { p.drainOrRelease(entry) })
}

// drainOrRelease is called when a worker finishes a task. It hands the
// worker the next queued task, if any, without ever putting the worker
// back in the pool's available queue in between; otherwise it releases the
// worker normally.
func (p *AutoScalePool) drainOrRelease(entry *objectpool.Entry[*worker]) {
	select {
	case task := <-p.queue:
		p.dispatch(entry, task)
	default:
		p.pool.Release(entry)
	}
}

// Submit acquires a worker if one is immediately free; otherwise it parks
// task in the bounded intake queue, blocking if the queue is full until
// room frees up or ctx is canceled. Closing the pool does not unblock it.
func (p *AutoScalePool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	entry, ok, err := p.pool.TryAcquire()
	if err != nil {
		return err
	}
	if ok {
		p.dispatch(entry, task)
		return nil
	}
	select {
	case p.queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit is the non-blocking variant of Submit: if no worker is free and
// the intake queue is full, it returns ok=false without queuing the task.
func (p *AutoScalePool) TrySubmit(task Task) (ok bool, err error) {
	if task == nil {
		return false, ErrNilTask
	}
	entry, ok, err := p.pool.TryAcquire()
	if err != nil {
		return false, err
	}
	if ok {
		p.dispatch(entry, task)
		return true, nil
	}
	select {
	case p.queue <- task:
		return true, nil
	default:
		return false, nil
	}
}

// Size returns the number of workers currently resident in the pool.
func (p *AutoScalePool) Size() int {
	return p.pool.Size()
}

// Close closes the underlying auto-scale engine, stopping the background
// sweep and interrupting every worker's mailbox wait.
func (p *AutoScalePool) Close() {
	p.pool.Close()
}
