package core

import "github.com/CNSawyer/mydotey-objectpool/internal/core/sentinel"

// Error is the sentinel error type used throughout the pool engine. Values
// are declarable as const and compatible with errors.Is through Go's default
// comparison on comparable types.
type Error = sentinel.Error

// Sentinel errors returned by the pool engine. See each call site's doc
// comment for the exact condition that produces it.
const (
	// ErrPoolClosed is returned by Acquire/TryAcquire once Close has been
	// called, and is the terminal failure returned to any acquirer
	// blocked on the semaphore at the moment of Close.
	ErrPoolClosed = Error("objectpool: pool is closed")

	// ErrDoubleRelease is the panic message used when Release is called with
	// a stale or already-consumed token.
	ErrDoubleRelease = Error("objectpool: double-release of entry")

	// ErrForeignEntry is the panic message used when Release is called with
	// an entry that does not belong to this pool.
	ErrForeignEntry = Error("objectpool: entry belongs to another pool")

	// ErrNilFactory is the panic message used when a pool is constructed
	// with a nil factory.
	ErrNilFactory = Error("objectpool: factory must not be nil")
)
