package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func countingFactory() (Factory[int], *atomic.Int64) {
	var n atomic.Int64
	return func() (int, error) {
		return int(n.Add(1)), nil
	}, &n
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNewAutoScalePoolPanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	factory, _ := countingFactory()
	requirePanicContains(t, func() {
		NewAutoScalePool(factory, nil, AutoScaleConfig[int]{
			Config:        Config{MaxSize: 4},
			CheckInterval: 0,
			ObjectTTL:     time.Minute,
			MaxIdleTime:   time.Minute,
			ScaleFactor:   1,
		})
	}, "checkInterval must be greater than 0")
}

func TestAutoScalePoolScaleOutOnMiss(t *testing.T) {
	t.Parallel()

	factory, created := countingFactory()
	pool := NewAutoScalePool(factory, nil, AutoScaleConfig[int]{
		Config:        Config{MinSize: 0, MaxSize: 10},
		CheckInterval: time.Hour,
		ObjectTTL:     time.Hour,
		MaxIdleTime:   time.Hour,
		ScaleFactor:   5,
	})
	defer pool.Close()

	e, token, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	pool.Release(e, token)

	// The miss-path entry plus a batch of ScaleFactor-1 background creations.
	waitFor(t, time.Second, func() bool { return created.Load() == 5 })
	if pool.Size() != 5 {
		t.Errorf("Size() = %d, want 5", pool.Size())
	}
}

func TestAutoScalePoolConcurrentMissesStayWithinMaxSize(t *testing.T) {
	t.Parallel()

	factory, created := countingFactory()
	pool := NewAutoScalePool(factory, nil, AutoScaleConfig[int]{
		Config:        Config{MinSize: 0, MaxSize: 20},
		CheckInterval: time.Hour,
		ObjectTTL:     time.Hour,
		MaxIdleTime:   time.Hour,
		ScaleFactor:   10,
	})
	defer pool.Close()

	// Several concurrent misses on a cold pool each call onMissCreate, which
	// starts at most one scale-out batch. Miss-path and batch creations all
	// draw on the shared semaphore, so the pool must never exceed maxSize.
	const acquirers = 5
	errCh := make(chan error, acquirers)
	for range acquirers {
		go func() {
			_, _, err := pool.Acquire(context.Background())
			errCh <- err
		}()
	}
	for range acquirers {
		if err := <-errCh; err != nil {
			t.Errorf("Acquire failed: %v", err)
		}
	}

	waitFor(t, time.Second, func() bool { return created.Load() >= acquirers })
	if pool.Size() > 20 {
		t.Errorf("Size() = %d, exceeds maxSize 20", pool.Size())
	}
}

func TestAutoScalePoolScaleInIdleEntries(t *testing.T) {
	t.Parallel()

	factory, _ := countingFactory()
	var closedCount atomic.Int64
	pool := NewAutoScalePool(factory, func(int) { closedCount.Add(1) }, AutoScaleConfig[int]{
		Config:        Config{MinSize: 1, MaxSize: 5},
		CheckInterval: 10 * time.Millisecond,
		ObjectTTL:     time.Hour,
		MaxIdleTime:   20 * time.Millisecond,
		ScaleFactor:   1,
	})
	defer pool.Close()

	// Hold both the prewarmed entry and a second, miss-created one at once
	// so the pool genuinely grows past minSize before either is released.
	e1, token1, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	e2, token2, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if pool.Size() != 2 {
		t.Fatalf("Size() after two concurrent acquires = %d, want 2", pool.Size())
	}

	pool.Release(e1, token1)
	pool.Release(e2, token2)

	waitFor(t, time.Second, func() bool { return pool.Size() == 1 })
	if closedCount.Load() == 0 {
		t.Error("expected onClose to fire for the scaled-in entry")
	}
}

func TestAutoScalePoolTTLRefreshesAvailableEntry(t *testing.T) {
	t.Parallel()

	factory, created := countingFactory()
	pool := NewAutoScalePool(factory, nil, AutoScaleConfig[int]{
		Config:        Config{MinSize: 1, MaxSize: 1},
		CheckInterval: 10 * time.Millisecond,
		ObjectTTL:     20 * time.Millisecond,
		MaxIdleTime:   time.Hour,
		ScaleFactor:   1,
	})
	defer pool.Close()

	waitFor(t, time.Second, func() bool { return created.Load() >= 2 })
}

func TestAutoScalePoolStaleCheckerDrivesRefresh(t *testing.T) {
	t.Parallel()

	factory, created := countingFactory()
	var stale atomic.Bool
	stale.Store(true)

	pool := NewAutoScalePool(factory, nil, AutoScaleConfig[int]{
		Config:        Config{MinSize: 1, MaxSize: 1},
		CheckInterval: 10 * time.Millisecond,
		ObjectTTL:     time.Hour,
		MaxIdleTime:   time.Hour,
		ScaleFactor:   1,
		StaleChecker:  func(int) bool { return stale.Load() },
	})
	defer pool.Close()

	waitFor(t, time.Second, func() bool { return created.Load() >= 2 })
}

func TestAutoScalePoolStaleCheckerPanicTreatedAsNotStale(t *testing.T) {
	t.Parallel()

	factory, created := countingFactory()
	pool := NewAutoScalePool(factory, nil, AutoScaleConfig[int]{
		Config:        Config{MinSize: 1, MaxSize: 1},
		CheckInterval: 10 * time.Millisecond,
		ObjectTTL:     time.Hour,
		MaxIdleTime:   time.Hour,
		ScaleFactor:   1,
		StaleChecker:  func(int) bool { panic("boom") },
	})
	defer pool.Close()

	time.Sleep(50 * time.Millisecond)
	if created.Load() != 1 {
		t.Errorf("created = %d, want 1 (a panicking staleChecker must not trigger refresh)", created.Load())
	}
}

func TestAutoScalePoolRefreshOnReleaseOfAcquiredEntry(t *testing.T) {
	t.Parallel()

	factory, created := countingFactory()
	var closedPayloads []int
	pool := NewAutoScalePool(factory, func(v int) { closedPayloads = append(closedPayloads, v) }, AutoScaleConfig[int]{
		Config:        Config{MinSize: 1, MaxSize: 1},
		CheckInterval: 10 * time.Millisecond,
		ObjectTTL:     20 * time.Millisecond,
		MaxIdleTime:   time.Hour,
		ScaleFactor:   1,
	})
	defer pool.Close()

	e, token, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Hold the entry until the sweep marks it PendingRefresh while Acquired.
	waitFor(t, time.Second, func() bool { return e.statusIs(StatusPendingRefresh) })

	pool.Release(e, token)

	waitFor(t, time.Second, func() bool { return created.Load() >= 2 })
	waitFor(t, time.Second, func() bool { return len(closedPayloads) >= 1 })
}

func TestAutoScalePoolCloseIsIdempotentAndRejectsAcquire(t *testing.T) {
	t.Parallel()

	factory, _ := countingFactory()
	pool := NewAutoScalePool(factory, nil, AutoScaleConfig[int]{
		Config:        Config{MinSize: 1, MaxSize: 1},
		CheckInterval: time.Hour,
		ObjectTTL:     time.Hour,
		MaxIdleTime:   time.Hour,
		ScaleFactor:   1,
	})
	pool.Close()
	pool.Close() // idempotent

	_, _, err := pool.Acquire(context.Background())
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire after Close = %v, want ErrPoolClosed", err)
	}
}
