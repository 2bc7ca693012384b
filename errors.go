package objectpool

import "github.com/CNSawyer/mydotey-objectpool/internal/core"

// Error is the sentinel error type returned by this package's operations.
// Values are declarable as const and compatible with errors.Is through Go's
// default == comparison on comparable types.
type Error = core.Error

// Sentinel errors returned by Pool and AutoScalePool. See each call site's
// doc comment for the exact condition that produces it.
const (
	// ErrPoolClosed is returned by Acquire/TryAcquire once Close has been
	// called, and is the terminal failure observed by any acquirer blocked
	// waiting for an entry at the moment of Close.
	ErrPoolClosed = core.ErrPoolClosed

	// ErrDoubleRelease holds the text of the panic (a plain string) raised
	// when Release is called with a stale or already-consumed token.
	ErrDoubleRelease = core.ErrDoubleRelease

	// ErrForeignEntry holds the text of the panic (a plain string) raised
	// when Release is called with an entry that does not belong to the pool
	// it is released to.
	ErrForeignEntry = core.ErrForeignEntry

	// ErrNilFactory holds the text of the panic (a plain string) raised when
	// a pool is constructed with a nil factory.
	ErrNilFactory = core.ErrNilFactory
)
