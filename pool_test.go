package objectpool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CNSawyer/mydotey-objectpool"
)

func TestNewPoolPanicsOnNilFactory(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on nil factory")
		}
	}()
	objectpool.NewPool[int](nil, nil)
}

func TestPoolAcquireReleaseRoundTrip(t *testing.T) {
	t.Parallel()

	pool := objectpool.NewPool(
		func() (int, error) { return 7, nil },
		nil,
		objectpool.WithMaxSize(1),
	)
	defer pool.Close()

	entry, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if entry.Object() != 7 {
		t.Fatalf("Object() = %d, want 7", entry.Object())
	}
	pool.Release(entry)
}

func TestPoolCloseReturnsErrPoolClosed(t *testing.T) {
	t.Parallel()

	pool := objectpool.NewPool(
		func() (int, error) { return 1, nil },
		nil,
		objectpool.WithMaxSize(1),
	)
	pool.Close()

	_, err := pool.Acquire(context.Background())
	if !errors.Is(err, objectpool.ErrPoolClosed) {
		t.Fatalf("Acquire after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestPoolReleaseDoubleReleasePanics(t *testing.T) {
	t.Parallel()

	pool := objectpool.NewPool(
		func() (int, error) { return 1, nil },
		nil,
		objectpool.WithMaxSize(1),
	)
	defer pool.Close()

	entry, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	pool.Release(entry)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on double release")
		}
	}()
	pool.Release(entry)
}

func TestAutoScalePoolAcquireReleaseRoundTrip(t *testing.T) {
	t.Parallel()

	pool := objectpool.NewAutoScalePool(
		func() (string, error) { return "widget", nil },
		nil,
		nil,
		objectpool.WithMinSize(1),
		objectpool.WithMaxSize(2),
		objectpool.WithCheckInterval(time.Hour),
		objectpool.WithObjectTTL(time.Hour),
		objectpool.WithMaxIdleTime(time.Hour),
	)
	defer pool.Close()

	entry, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if entry.Object() != "widget" {
		t.Fatalf("Object() = %q, want %q", entry.Object(), "widget")
	}
	pool.Release(entry)

	if pool.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", pool.Size())
	}
}
