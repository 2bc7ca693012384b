package workerpool

import "github.com/CNSawyer/mydotey-objectpool"

// ErrNilTask is returned by Submit and TrySubmit when called with a nil
// Task.
const ErrNilTask = objectpool.Error("workerpool: task must not be nil")
