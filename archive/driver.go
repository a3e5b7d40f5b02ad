package archive

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/class-widener/errors"
)

type options struct {
	progress    func(done, total int)
	parallelism int
}

// Option configures Process.
type Option func(*options)

// WithParallelism bounds the number of entries transformed at once.
// Values below one mean GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithProgress registers a callback invoked after each entry. It is called
// from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// Process runs every class entry through t and passes other entries
// through untouched. All class entries are transformed, including those no
// rule names, because a class's InnerClasses table may mirror the access
// flags of classes that are widened.
//
// Entries are transformed in parallel and reassembled in input order. If
// any entry fails, the first error is returned and no output is produced.
func Process(ctx context.Context, entries []Entry, t ClassTransformer, opts ...Option) ([]Entry, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.parallelism < 1 {
		o.parallelism = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	total := len(entries)
	out := make([]Entry, total)
	var done, classes atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)

	for i := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := entries[i]
			if e.IsClass() {
				te, err := t.TransformClass(e)
				if err != nil {
					return entryError(e.Name, err)
				}
				out[i] = te
				classes.Add(1)
			} else {
				out[i] = e
			}
			n := done.Add(1)
			if o.progress != nil {
				o.progress(int(n), total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		Logger().Debug("archive pass aborted", zap.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	Logger().Info("archive processed",
		zap.Int("entries", total),
		zap.Int64("classes", classes.Load()),
		zap.Int("parallelism", o.parallelism),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// entryError keeps structured errors as they are and tags anything else
// with the entry name.
func entryError(name string, err error) error {
	var e *errors.Error
	if errors.As(err, &e) {
		return err
	}
	return errors.WithPath(errors.PhaseArchive, errors.KindComputation, err, name)
}
