package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Status is the tagged state of an Entry. The transitions between these
// states are the only ones the engine permits; every transition happens
// under the owning Entry's mutex.
type Status int32

const (
	StatusInitialized Status = iota
	StatusAvailable
	StatusAcquired
	StatusClosed
	StatusPendingRefresh
)

// String implements fmt.Stringer for use in log lines.
func (s Status) String() string {
	switch s {
	case StatusInitialized:
		return "initialized"
	case StatusAvailable:
		return "available"
	case StatusAcquired:
		return "acquired"
	case StatusClosed:
		return "closed"
	case StatusPendingRefresh:
		return "pending_refresh"
	default:
		return "unknown"
	}
}

// Entry wraps one pooled payload together with its lifecycle state and, for
// the auto-scale engine, its timing bookkeeping. The key is an opaque UUID,
// stable across acquire/release cycles and used both as the table's map key
// and as the identity checked by the availability queue when a concurrent
// sweep tries to claim the same entry.
//
// All status and payload transitions happen under mu, so Entry doubles as
// its own per-entry lock — the lock the sweep and an acquirer contend on
// when racing for the same entry.
type Entry[T any] struct {
	key uuid.UUID

	mu      sync.Mutex
	status  Status
	payload T

	// gen is incremented on every successful acquire. Release must present
	// the value returned by that acquire; a mismatch means the entry was
	// already released (and possibly re-acquired) since, i.e. a double
	// release.
	gen atomic.Uint64

	creationTime time.Time
	lastUsedTime atomic.Int64 // unix nanoseconds
}

func newEntry[T any](payload T) *Entry[T] {
	e := &Entry[T]{
		key:          uuid.New(),
		status:       StatusAvailable,
		payload:      payload,
		creationTime: time.Now(),
	}
	e.lastUsedTime.Store(e.creationTime.UnixNano())
	return e
}

// Key returns the entry's opaque identity token.
func (e *Entry[T]) Key() uuid.UUID {
	return e.key
}

// Payload returns the current payload. Safe to call concurrently with
// status transitions; it never observes a torn write because payload is
// only ever replaced while holding mu (refresh swaps the whole Entry rather
// than mutating payload in place, but a direct caller of Payload is also
// guarded for consistency).
func (e *Entry[T]) Payload() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.payload
}

// Status returns the entry's current status.
func (e *Entry[T]) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// CreationTime returns the monotonic time the entry was constructed.
func (e *Entry[T]) CreationTime() time.Time {
	return e.creationTime
}

func (e *Entry[T]) lastUsed() time.Time {
	return time.Unix(0, e.lastUsedTime.Load())
}

func (e *Entry[T]) touch() {
	e.lastUsedTime.Store(time.Now().UnixNano())
}

// markAcquired transitions the entry to Acquired unconditionally (used on
// the miss path, where the entry is never anything but freshly created) and
// returns the release token the caller must present to Release.
func (e *Entry[T]) markAcquired() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = StatusAcquired
	return e.gen.Add(1)
}

// tryClaim transitions Available -> Acquired, returning false if the entry
// is no longer Available (e.g. a concurrent scale-in or refresh already
// claimed it). Used when popping the availability queue so that claim and
// status check happen atomically under the same lock.
func (e *Entry[T]) tryClaim() (uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusAvailable {
		return 0, false
	}
	e.status = StatusAcquired
	return e.gen.Add(1), true
}

// tryMarkClosedIfAvailable transitions Available -> Closed, used by the
// sweep to claim an entry for scale-in or refresh while it still sits in
// the availability queue. Returns false if the entry was not Available
// (lost the race to a concurrent acquirer).
func (e *Entry[T]) tryMarkClosedIfAvailable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusAvailable {
		return false
	}
	e.status = StatusClosed
	return true
}

// validateToken reports whether token matches the entry's current
// generation and the entry is still in a release-eligible status. Release
// only ever moves an entry out of Acquired or PendingRefresh; once it has
// moved to Available or Closed, a second presentation of the same token is
// a double release and must be rejected on status alone, since gen is not
// advanced by Release and so still matches. It does not mutate status;
// callers decide the resulting transition.
func (e *Entry[T]) validateToken(token uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return (e.status == StatusAcquired || e.status == StatusPendingRefresh) && e.gen.Load() == token
}

// markAvailable transitions the entry to Available and refreshes
// lastUsedTime. Used by Release and by the refresh/scale-in fallback paths.
func (e *Entry[T]) markAvailable() {
	e.mu.Lock()
	e.status = StatusAvailable
	e.mu.Unlock()
	e.touch()
}

// markClosed transitions the entry to Closed (idempotently) and returns the
// payload at the time of closing.
func (e *Entry[T]) markClosed() (payload T, alreadyClosed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusClosed {
		return e.payload, true
	}
	e.status = StatusClosed
	return e.payload, false
}

// markPendingRefreshIfAcquired transitions Acquired -> PendingRefresh. No-op
// if the entry has since been released or closed.
func (e *Entry[T]) markPendingRefreshIfAcquired() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusAcquired {
		e.status = StatusPendingRefresh
	}
}

// statusIs reports whether the entry currently has the given status.
func (e *Entry[T]) statusIs(s Status) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status == s
}
