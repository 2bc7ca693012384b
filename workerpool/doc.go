// Package workerpool provides a thread-pool built directly on top of
// objectpool.Pool and objectpool.AutoScalePool: each pool entry's payload
// is a long-lived worker that waits on a private mailbox for a task and
// releases itself back to the pool once the task completes.
//
//	pool := workerpool.New(objectpool.WithMinSize(2), objectpool.WithMaxSize(8))
//	defer pool.Close()
//
//	if err := pool.Submit(ctx, func() { handle(req) }); err != nil {
//	    return err
//	}
//
// AutoScalePool additionally queues tasks, up to WithQueueCapacity, when
// every worker is busy:
//
//	pool := workerpool.NewAutoScalePool(
//	    objectpool.WithMinSize(1),
//	    objectpool.WithMaxSize(16),
//	    objectpool.WithQueueCapacity(32),
//	)
//	defer pool.Close()
package workerpool
