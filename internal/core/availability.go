package core

import (
	"sync"

	"github.com/google/uuid"
)

// availability is a counting semaphore of claimable slots plus a LIFO queue
// of available entries. A permit represents a slot a caller may claim,
// whether by popping the queue or by creating a new entry — the two draw
// against the same budget, which is why sem is sized once at construction
// and never resized.
//
// The queue's mutex and each Entry's own mutex form a single consistent
// lock order (queue, then entry) so that claiming an entry from the queue
// (tryClaim) and claiming it out from under the queue for scale-in/refresh
// (tryMarkClosedIfAvailable) can never race each other: whichever goroutine
// gets the queue lock first wins.
type availability[T any] struct {
	sem chan struct{}

	mu    sync.Mutex
	queue []*Entry[T]
}

// newAvailability builds an availability signal with room for bufSize
// entries in the queue and permits initial permits pre-loaded.
func newAvailability[T any](bufSize, permits int) *availability[T] {
	a := &availability[T]{
		sem:   make(chan struct{}, bufSize),
		queue: make([]*Entry[T], 0, bufSize),
	}
	for range permits {
		a.sem <- struct{}{}
	}
	return a
}

// tryAcquirePermit claims a permit without blocking.
func (a *availability[T]) tryAcquirePermit() bool {
	select {
	case <-a.sem:
		return true
	default:
		return false
	}
}

// releasePermit returns a permit, unblocking a waiting acquirer. The
// non-blocking send mirrors the teacher's returnSlot: after Close the
// semaphore may already be at capacity because nothing will ever drain it
// again, which is expected; outside of that window a full semaphore means
// more releases than acquires, a real bug.
func (a *availability[T]) releasePermit(closed func() bool) {
	select {
	case a.sem <- struct{}{}:
	default:
		if closed() {
			Logger().Debug("releasePermit: semaphore full after pool close, token dropped (expected)")
			return
		}
		panic("objectpool: releasePermit: semaphore full during normal operation")
	}
}

// push places an Available entry into the queue.
func (a *availability[T]) push(e *Entry[T]) {
	a.mu.Lock()
	a.queue = append(a.queue, e)
	a.mu.Unlock()
}

// popClaim pops the most recently released entry and atomically claims it
// (Available -> Acquired) under the queue lock. If the popped entry loses
// the race against a concurrent sweep claim, it is dropped and the next
// one is tried, so popClaim never hands back an entry that is not truly
// Acquired-by-us.
func (a *availability[T]) popClaim() (*Entry[T], uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for {
		n := len(a.queue)
		if n == 0 {
			return nil, 0, false
		}
		e := a.queue[n-1]
		a.queue = a.queue[:n-1]
		if token, ok := e.tryClaim(); ok {
			return e, token, true
		}
	}
}

// claimForRemoval locates the entry identified by key still sitting in the
// queue, removes it, and transitions it to Closed, all under the queue
// lock. Returns false if the key is not present (already popped by a
// concurrent acquirer) or the entry is no longer Available.
func (a *availability[T]) claimForRemoval(key uuid.UUID) (*Entry[T], bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, e := range a.queue {
		if e.key != key {
			continue
		}
		if !e.tryMarkClosedIfAvailable() {
			return nil, false
		}
		a.queue = append(a.queue[:i], a.queue[i+1:]...)
		return e, true
	}
	return nil, false
}

// len reports the number of entries currently sitting in the queue.
func (a *availability[T]) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}
