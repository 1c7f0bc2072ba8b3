package dispatch

import "time"

// Handler receives items delivered by a dispatcher.
// Returning an error or panicking marks the delivery as a fault; neither
// stops delivery to other listeners.
type Handler[T any] interface {
	Handle(item T) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc[T any] func(item T) error

// Handle implements the Handler interface.
func (f HandlerFunc[T]) Handle(item T) error {
	return f(item)
}

// Result represents the outcome of a single listener invocation.
type Result struct {
	// Success is true if the listener returned without error or panic.
	Success bool

	// Error is the error returned by the listener, if any.
	Error error

	// Panicked is true if the listener panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is how long the listener took to run.
	Duration time.Duration
}

// IsSuccess returns true if the result indicates successful execution.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

// IsError returns true if the listener returned an error (not a panic).
func (r Result) IsError() bool {
	return r.Error != nil && !r.Panicked
}

// IsPanic returns true if the listener panicked.
func (r Result) IsPanic() bool {
	return r.Panicked
}

// PanicHandler is called by an Executor when a listener panics.
type PanicHandler[T any] func(item T, panicValue any, stack []byte)

// FaultHandler is called by a SyncDispatcher for every failed delivery.
type FaultHandler[T any] func(item T, err *FaultError)
