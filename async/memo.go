package async

import (
	"sync"
	"sync/atomic"
)

// Memoize returns a function that calls supplier until one call completes
// and then returns that call's value forever. Callers racing on the first
// access may each run supplier, but the first value stored wins and every
// caller, including the losers of the race, returns it. supplier must be
// safe to call concurrently; use MemoizeOnce when it has side effects.
//
// A panic in supplier propagates to the caller and stores nothing.
func Memoize[T any](supplier func() T) func() T {
	var slot atomic.Pointer[T]
	return func() T {
		if p := slot.Load(); p != nil {
			return *p
		}
		v := supplier()
		if slot.CompareAndSwap(nil, &v) {
			return v
		}
		return *slot.Load()
	}
}

// MemoizeOnce returns a function that runs supplier exactly once, blocking
// concurrent callers until it finishes. The value and error of that single
// run are returned to every caller.
func MemoizeOnce[T any](supplier func() (T, error)) func() (T, error) {
	return sync.OnceValues(supplier)
}
