package future

import (
	"context"
	"fmt"
)

// Future is a handle to a computation's eventual result or failure.
// It resolves exactly once; Join blocks only the awaiting goroutine.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// New creates an unresolved future. Producers resolve it with Complete or Fail.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Complete resolves the future with a value. Later resolutions are ignored.
func (f *Future[T]) Complete(val T) {
	select {
	case <-f.done:
	default:
		f.val = val
		close(f.done)
	}
}

// Fail resolves the future with an error. Later resolutions are ignored.
func (f *Future[T]) Fail(err error) {
	select {
	case <-f.done:
	default:
		f.err = err
		close(f.done)
	}
}

// Done returns a channel that is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Join blocks until the future resolves or the context is cancelled and
// returns the result. Failures inside the producing task surface here.
func (f *Future[T]) Join(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Supply runs fn on the executor and returns a future for its result.
// A panic inside fn is captured and delivered to the awaiter as an error,
// never crashing the executing goroutine.
func Supply[T any](ex Executor, fn func() (T, error)) *Future[T] {
	f := New[T]()
	if err := ex.Execute(func() {
		val, err := protect(fn)
		if err != nil {
			f.Fail(err)
			return
		}
		f.Complete(val)
	}); err != nil {
		f.Fail(fmt.Errorf("submit task: %w", err))
	}
	return f
}

// Combine resolves when both input futures resolve and applies fn to their
// values. It fails fast: the first input failure fails the combined future
// without waiting for the other input.
func Combine[A, B, C any](fa *Future[A], fb *Future[B], fn func(A, B) (C, error)) *Future[C] {
	fc := New[C]()
	go func() {
		adone, bdone := fa.done, fb.done
		for adone != nil || bdone != nil {
			select {
			case <-adone:
				if fa.err != nil {
					fc.Fail(fa.err)
					return
				}
				adone = nil
			case <-bdone:
				if fb.err != nil {
					fc.Fail(fb.err)
					return
				}
				bdone = nil
			}
		}
		val, err := protect(func() (C, error) { return fn(fa.val, fb.val) })
		if err != nil {
			fc.Fail(err)
			return
		}
		fc.Complete(val)
	}()
	return fc
}

// Then applies fn to the future's value once it resolves, returning a future
// for the transformed result. An input failure short-circuits fn.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	fu := New[U]()
	go func() {
		<-f.done
		if f.err != nil {
			fu.Fail(f.err)
			return
		}
		val, err := protect(func() (U, error) { return fn(f.val) })
		if err != nil {
			fu.Fail(err)
			return
		}
		fu.Complete(val)
	}()
	return fu
}

// protect runs fn and converts a panic into an error.
func protect[T any](fn func() (T, error)) (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return fn()
}
