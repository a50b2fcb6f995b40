package future

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPanic is wrapped into the failure of a future whose task panicked.
var ErrPanic = errors.New("future: task panicked")

// Executor runs named tasks asynchronously. reject is invoked instead of run
// when an accepted task is later dropped (for example on shutdown).
type Executor interface {
	Submit(ctx context.Context, name string, run func(ctx context.Context), reject func(err error)) error
}

// Future holds the eventual value or failure of an asynchronous computation.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// New returns an unsettled future (a deferred result).
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future already settled with v.
func Completed[T any](v T) *Future[T] {
	ret := New[T]()
	ret.Complete(v)
	return ret
}

// Failed returns a future already settled with err.
func Failed[T any](err error) *Future[T] {
	ret := New[T]()
	ret.Fail(err)
	return ret
}

// Complete settles the future with v. It reports whether this call settled it.
func (f *Future[T]) Complete(v T) bool {
	return f.settle(v, nil)
}

// Fail settles the future with err. It reports whether this call settled it.
func (f *Future[T]) Fail(err error) bool {
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	settled := false
	f.once.Do(func() {
		f.value = v
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsDone reports whether the future has settled.
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get waits for the future to settle or ctx to be done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait blocks until the future settles.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

// run executes fn and settles f with its outcome, converting a panic into a
// failure.
func (f *Future[T]) run(ctx context.Context, fn func(ctx context.Context) (T, error)) {
	defer func() {
		if r := recover(); r != nil {
			f.Fail(fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()
	v, err := fn(ctx)
	if err != nil {
		f.Fail(err)
		return
	}
	f.Complete(v)
}

// Supply runs fn on the executor and returns a future of its result. A
// submission error fails the future immediately.
func Supply[T any](ctx context.Context, executor Executor, name string, fn func(ctx context.Context) (T, error)) *Future[T] {
	ret := New[T]()
	run := func(ctx context.Context) { ret.run(ctx, fn) }
	reject := func(err error) { ret.Fail(err) }
	if err := executor.Submit(ctx, name, run, reject); err != nil {
		ret.Fail(err)
	}
	return ret
}

// Go runs fn on its own goroutine.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	ret := New[T]()
	go ret.run(ctx, fn)
	return ret
}

// Then applies fn to the value of f on the goroutine that observes its
// settlement. A failure of f is propagated without calling fn.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	ret := New[U]()
	go func() {
		v, err := f.Wait()
		if err != nil {
			ret.Fail(err)
			return
		}
		ret.run(context.Background(), func(context.Context) (U, error) { return fn(v) })
	}()
	return ret
}

// ThenAsync dispatches fn to the executor once f settles successfully. If ctx
// is done first the returned future fails with ctx.Err().
func ThenAsync[T, U any](ctx context.Context, f *Future[T], executor Executor, name string, fn func(ctx context.Context, v T) (U, error)) *Future[U] {
	ret := New[U]()
	go func() {
		v, err := f.Get(ctx)
		if err != nil {
			ret.Fail(err)
			return
		}
		run := func(ctx context.Context) {
			ret.run(ctx, func(ctx context.Context) (U, error) { return fn(ctx, v) })
		}
		reject := func(err error) { ret.Fail(err) }
		if err := executor.Submit(ctx, name, run, reject); err != nil {
			ret.Fail(err)
		}
	}()
	return ret
}
