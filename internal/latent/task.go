package latent

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	ErrNotReady = errors.New("latent: task result is not ready")
	ErrConsumed = errors.New("latent: task result was already consumed")
)

// Outcome is the terminal result of a task. A non-empty Err marks a failure.
type Outcome[T any] struct {
	Value T
	Err   string
}

func (o Outcome[T]) Failed() bool {
	return o.Err != ""
}

// Task is a handle on a computation running on a Pool. Exactly one consumer reads it.
type Task[T any] struct {
	done     chan struct{}
	outcome  Outcome[T]
	consumed atomic.Bool
}

// ReadyHook is called by the worker once the outcome is computed. It must call publish exactly once;
// the outcome becomes readable at that moment, so a hook can record completion order atomically with it.
type ReadyHook func(publish func())

// Go submits fn to pool and returns its handle without waiting.
// Without a hook the outcome is published as soon as fn returns.
func Go[T any](pool *Pool, fn func(ctx context.Context) (T, error), onReady ReadyHook) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	pool.Submit(func(ctx context.Context) {
		t.outcome = run(ctx, fn)
		publish := func() { close(t.done) }
		if onReady == nil {
			publish()
			return
		}
		onReady(publish)
	})
	return t
}

// IsReady reports whether the outcome can be consumed. It never blocks.
func (t *Task[T]) IsReady() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done is closed once the outcome is ready
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Consume extracts the outcome. It succeeds once, and only after IsReady reports true.
func (t *Task[T]) Consume() (Outcome[T], error) {
	if !t.IsReady() {
		return Outcome[T]{}, ErrNotReady
	}
	if t.consumed.Swap(true) {
		return Outcome[T]{}, ErrConsumed
	}
	return t.outcome, nil
}

func run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome[T]{Err: fmt.Sprintf("task panicked: %v", r)}
		}
	}()

	value, err := fn(ctx)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "unknown error"
		}
		return Outcome[T]{Value: value, Err: msg}
	}
	return Outcome[T]{Value: value}
}
