package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ErrSourceFailure matches any error produced by a unit itself.
var ErrSourceFailure = errors.New("source unit failed")

// Unit produces one value. It should return promptly once ctx is done.
type Unit[T any] func(ctx context.Context) (T, error)

// UnitError reports the failing unit's input index.
type UnitError struct {
	Index int
	Err   error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("unit %d: %v", e.Index, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// Is makes every UnitError match ErrSourceFailure.
func (e *UnitError) Is(target error) bool {
	return target == ErrSourceFailure
}

// OrderedOptions configures RunOrdered.
type OrderedOptions struct {
	// Concurrency bounds the number of units that are dispatched but not yet
	// committed. Zero or less means runtime.NumCPU().
	Concurrency int

	// Progress is called on the committing goroutine with the number of
	// values committed so far.
	Progress func(committed int)
}

type indexed[T any] struct {
	index int
	value T
}

// RunOrdered pulls units lazily from units, runs up to Concurrency of them at
// once and passes their values to commit strictly in input order, on the
// calling goroutine.
//
// The first unit error or commit error stops dispatch and cancels the context
// handed to running units. Units already dispatched are allowed to finish and
// their values are discarded. The returned error is the commit error, else the
// parent context's error, else the first *UnitError.
func RunOrdered[T any](ctx context.Context, units iter.Seq[Unit[T]], opts OrderedOptions, commit func(index int, value T) error) error {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	window := semaphore.NewWeighted(int64(limit))
	results := make(chan indexed[T], limit)

	var unitFailed atomic.Bool
	var waitErr error

	go func() {
		defer close(results)

		index := 0
		for unit := range units {
			if err := window.Acquire(gctx, 1); err != nil {
				break
			}
			if gctx.Err() != nil {
				break
			}

			i := index
			index++
			g.Go(func() error {
				value, err := unit(gctx)
				if err != nil {
					unitFailed.Store(true)
					return &UnitError{Index: i, Err: err}
				}
				select {
				case results <- indexed[T]{index: i, value: value}:
				case <-gctx.Done():
				}
				return nil
			})
		}

		waitErr = g.Wait()
	}()

	pending := make(map[int]T)
	next := 0
	var commitErr error

	// Keep draining after a failure so that running units never block.
	for r := range results {
		if commitErr != nil || unitFailed.Load() || ctx.Err() != nil {
			continue
		}

		pending[r.index] = r.value
		for {
			value, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)

			if err := commit(next, value); err != nil {
				commitErr = err
				cancel()
				break
			}
			next++
			window.Release(1)

			if opts.Progress != nil {
				opts.Progress(next)
			}
		}
	}

	if commitErr != nil {
		return commitErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return waitErr
}
