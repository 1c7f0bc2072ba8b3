package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel errors for the dispatch package.
var (
	// ErrListenerPanic matches a FaultError caused by a panic.
	ErrListenerPanic = errors.New("listener panicked")

	// ErrListenerFailed matches any FaultError.
	ErrListenerFailed = errors.New("listener failed")
)

// FaultError describes a listener that failed during fan-out.
type FaultError struct {
	// SubscriptionID is the ID of the failing subscription.
	SubscriptionID uint64

	// Key is the routing key the subscription was registered under.
	Key string

	// Err is the error returned by the listener. Nil for panics.
	Err error

	// Panic is the recovered panic value. Nil for returned errors.
	Panic any

	// Stack is the stack trace captured at the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *FaultError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("listener %d on %q: %v", e.SubscriptionID, e.Key, e.Err)
	}
	return fmt.Sprintf("listener %d on %q panicked: %v", e.SubscriptionID, e.Key, e.Panic)
}

// Unwrap returns the underlying error.
func (e *FaultError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match ErrListenerFailed always and ErrListenerPanic
// for panics.
func (e *FaultError) Is(target error) bool {
	switch target {
	case ErrListenerFailed:
		return true
	case ErrListenerPanic:
		return e.Err == nil
	}
	return false
}

// newFaultError builds a FaultError from a failed result.
func newFaultError(sub *Subscription, r Result) *FaultError {
	fe := &FaultError{Err: r.Error, Panic: r.PanicValue, Stack: r.PanicStack}
	if sub != nil {
		fe.SubscriptionID = sub.ID()
		fe.Key = sub.Key()
	}
	if r.Panicked {
		fe.Err = nil
	}
	return fe
}
