// Package async provides small concurrency primitives for running build
// steps off the caller's goroutine.
//
// A Result is a one-shot future resolved with a value or an error:
//
//	res := async.Run(pool, func() ([]archive.Entry, error) {
//	    return archive.Process(ctx, entries, transformer)
//	})
//	out, err := res.Await(ctx)
//
// Failed builds a result that is already failed, for preconditions
// discovered before any work is scheduled. It composes with Then and
// Recover exactly like a result that failed later.
//
// Run never returns an error itself. Executor rejection becomes a failed
// result with kind executor_rejected, and a panic inside the action becomes
// a computation error.
//
// Memoize caches the first value computed by a supplier without holding a
// lock on the fast path. MemoizeOnce guarantees the supplier runs exactly
// once.
package async
