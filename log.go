package objectpool

import (
	"log/slog"

	"github.com/CNSawyer/mydotey-objectpool/internal/core"
)

// SetLogger replaces the package-level logger used by this package and the
// workerpool package built on it. This allows applications to integrate
// objectpool logging with their own logging infrastructure. The provided
// logger should already have any desired attributes; objectpool will not
// add additional attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next log call and then cached.
// Call SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with other objectpool operations.
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
