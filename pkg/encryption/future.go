package encryption

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Future is the pending result of one independently scheduled operation.
// The value is published exactly once; Await may be called any number of
// times from any goroutine.
type Future[T any] struct {
	id   string
	done chan struct{}
	val  T
	err  error
}

var taskLogger = logrus.WithField("component", "encryption-task")

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// Go runs fn on its own goroutine and returns its future. If ctx is already
// done the work is not started and the future fails with ctx.Err().
//
// Cancelling ctx after fn has started does not interrupt it: the cipher work
// runs to completion and the result is published to the future, which the
// caller is free to ignore.
func Go[T any](ctx context.Context, op string, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()

	if err := ctx.Err(); err != nil {
		f.complete(*new(T), err)
		return f
	}

	go func() {
		start := time.Now()
		val, err := fn()
		f.complete(val, err)

		entry := taskLogger.WithFields(logrus.Fields{
			"task_id":  f.id,
			"op":       op,
			"duration": time.Since(start),
		})
		if err != nil {
			entry.WithError(err).Debug("Task failed")
		} else {
			entry.Debug("Task completed")
		}
	}()

	return f
}

// Completed returns a future that already holds val.
func Completed[T any](val T) *Future[T] {
	f := newFuture[T]()
	f.complete(val, nil)
	return f
}

// Failed returns a future that already holds err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	f.complete(*new(T), err)
	return f
}

func (f *Future[T]) complete(val T, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// ID returns the task id used in log fields.
func (f *Future[T]) ID() string {
	return f.id
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done. Giving up on a
// future does not cancel the underlying work.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Get blocks until the result is available.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.val, f.err
}
