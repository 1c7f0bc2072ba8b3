package dispatch

import (
	"runtime/debug"
	"time"
)

// Executor runs listeners with panic recovery and timing.
type Executor[T any] struct {
	panicHandler PanicHandler[T]
}

// ExecutorOption configures an Executor.
type ExecutorOption[T any] func(*Executor[T])

// WithExecutorPanicHandler sets the panic handler for the executor.
func WithExecutorPanicHandler[T any](h PanicHandler[T]) ExecutorOption[T] {
	return func(e *Executor[T]) {
		e.panicHandler = h
	}
}

// NewExecutor creates a new executor with the given options.
func NewExecutor[T any](opts ...ExecutorOption[T]) *Executor[T] {
	e := &Executor[T]{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs a listener with the given item and returns the result.
// It recovers from panics and captures timing information.
func (e *Executor[T]) Execute(item T, handler Handler[T]) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()

			result.Success = false
			result.Error = nil
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = stack

			if e.panicHandler != nil {
				func() {
					// A panicking panic handler must not escape either.
					defer func() { _ = recover() }()
					e.panicHandler(item, r, stack)
				}()
			}
		}
	}()

	if err := handler.Handle(item); err != nil {
		result.Error = err
		return result
	}
	result.Success = true
	return result
}
