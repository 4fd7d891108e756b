// Package future implements single-fulfillment result handles for operations that
// run on their own goroutine.
package future

import (
	"context"
	"github.com/cockroachdb/errors"
	"sync"
)

// Future holds the result of an asynchronous operation. It is fulfilled exactly once,
// either with a value or with an error.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// New returns an unfulfilled Future along with the function that fulfills it. Only
// the first call to fulfill has an effect.
func New[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.fulfill
}

// Go runs fn on a new goroutine and returns a Future fulfilled with its result. A
// panic in fn fulfills the Future with an error instead of crashing the process.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f, fulfill := New[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				fulfill(zero, errors.Newf("panic: %v", r))
			}
		}()
		fulfill(fn(ctx))
	}()
	return f
}

func (f *Future[T]) fulfill(v T, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
	})
}

// Done returns a channel that is closed once the Future is fulfilled.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the Future is fulfilled or ctx is cancelled. Cancelling ctx
// abandons the wait but not the underlying operation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers fn to be called with the result once the Future is fulfilled.
func (f *Future[T]) Then(fn func(T, error)) {
	go func() {
		<-f.done
		fn(f.value, f.err)
	}()
}
