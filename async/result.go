package async

import (
	"context"
	"sync"

	"github.com/wippyai/class-widener/errors"
)

// Result is the eventual outcome of an asynchronous computation. It is
// resolved exactly once, with either a value or an error; later resolution
// attempts are ignored.
type Result[T any] struct {
	done  chan struct{}
	value T
	err   error
	once  sync.Once
}

func newResult[T any]() *Result[T] {
	return &Result[T]{done: make(chan struct{})}
}

// Failed returns a result already resolved with err. No goroutine or
// executor is involved.
func Failed[T any](err error) *Result[T] {
	r := newResult[T]()
	r.reject(err)
	return r
}

// Completed returns a result already resolved with v.
func Completed[T any](v T) *Result[T] {
	r := newResult[T]()
	r.resolve(v)
	return r
}

// Run submits action to exec and returns immediately. The result resolves
// with action's value, or with a computation error wrapping the error it
// returned or the value it panicked with. If exec rejects the task, the
// result resolves with an executor_rejected error; Run itself never fails.
func Run[T any](exec Executor, action func() (T, error)) *Result[T] {
	r := newResult[T]()
	task := func() {
		defer func() {
			if p := recover(); p != nil {
				r.reject(errors.Panicked(p))
			}
		}()
		v, err := action()
		if err != nil {
			r.reject(errors.Computation(err))
			return
		}
		r.resolve(v)
	}
	if err := exec.Execute(task); err != nil {
		r.reject(errors.ExecutorRejected(err))
	}
	return r
}

func (r *Result[T]) resolve(v T) {
	r.once.Do(func() {
		r.value = v
		close(r.done)
	})
}

func (r *Result[T]) reject(err error) {
	r.once.Do(func() {
		r.err = err
		close(r.done)
	})
}

// Done returns a channel closed when the result is resolved.
func (r *Result[T]) Done() <-chan struct{} {
	return r.done
}

// Resolved reports whether the result has been resolved.
func (r *Result[T]) Resolved() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Get blocks until the result is resolved.
func (r *Result[T]) Get() (T, error) {
	<-r.done
	return r.value, r.err
}

// Await blocks until the result is resolved or ctx is done. Abandoning a
// result does not stop the work behind it.
func (r *Result[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then chains fn onto a successful result. A failed r propagates its error
// unchanged. When r is already resolved, fn runs synchronously on the
// caller; otherwise it runs on a goroutine once r resolves.
func Then[T, U any](r *Result[T], fn func(T) (U, error)) *Result[U] {
	return chain(r, func(v T, err error) (U, error) {
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v)
	})
}

// Recover chains fn onto a failed result, letting it produce a replacement
// value or a new error. A successful r passes through unchanged.
func Recover[T any](r *Result[T], fn func(error) (T, error)) *Result[T] {
	return chain(r, func(v T, err error) (T, error) {
		if err == nil {
			return v, nil
		}
		return fn(err)
	})
}

func chain[T, U any](r *Result[T], fn func(T, error) (U, error)) *Result[U] {
	next := newResult[U]()
	complete := func() {
		defer func() {
			if p := recover(); p != nil {
				next.reject(errors.Panicked(p))
			}
		}()
		v, err := fn(r.value, r.err)
		if err != nil {
			next.reject(err)
			return
		}
		next.resolve(v)
	}
	if r.Resolved() {
		complete()
		return next
	}
	go func() {
		<-r.done
		complete()
	}()
	return next
}
