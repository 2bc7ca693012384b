package core

import "golang.org/x/time/rate"

// logLimiter throttles the warning lines the background sweep and
// scale-out batches can otherwise emit once per checkInterval for as long
// as a factory or staleChecker keeps failing. Without this, a persistently
// broken factory floods the configured log sink at the sweep's cadence.
//
// One warning line per second, bursts of up to 5, regardless of how many
// pools exist or how tight their checkInterval is. A single process-wide
// limiter is sufficient: the condition it guards against (a stuck factory)
// is rare enough that cross-pool sharing has no practical effect on any one
// pool's diagnostics.
var logLimiter = rate.NewLimiter(rate.Limit(1), 5)

// logThrottled emits a Warn log line through Logger(), dropping it silently
// if the limiter's budget is exhausted.
func logThrottled(msg string, args ...any) {
	if !logLimiter.Allow() {
		return
	}
	Logger().Warn(msg, args...)
}
