// Package objectpool provides a generic, bounded object pool with optional
// auto-scaling.
//
// A Pool creates entries on demand via a factory function, up to a
// configured maximum, and hands them out through Acquire/TryAcquire/Release.
// An AutoScalePool adds batched scale-out under contention, idle scale-in
// back to a configured floor, and periodic TTL or custom-predicate refresh
// of aging entries.
//
// # Basic usage
//
//	pool := objectpool.NewPool(
//	    func() (*sql.Conn, error) { return db.Conn(ctx) },
//	    func(c *sql.Conn) { c.Close() },
//	    objectpool.WithMinSize(2),
//	    objectpool.WithMaxSize(10),
//	)
//	defer pool.Close()
//
//	entry, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(entry)
//	conn := entry.Object()
//
// # Auto-scaling
//
//	pool := objectpool.NewAutoScalePool(
//	    factory, onClose, nil,
//	    objectpool.WithMinSize(2),
//	    objectpool.WithMaxSize(20),
//	    objectpool.WithScaleFactor(4),
//	    objectpool.WithObjectTTL(10*time.Minute),
//	)
//	defer pool.Close()
//
// See the workerpool package for a thread-pool built on top of Pool and
// AutoScalePool.
package objectpool
