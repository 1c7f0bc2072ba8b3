// Package dispatch provides fault-isolated synchronous fan-out for the event
// bus, the logger and the proctoring detector.
//
// # Listener Sets
//
// A Set is an ordered collection of listeners. Adding returns a Subscription
// handle; the handle is the listener's identity, so removing it twice (or
// removing a handle from another set) is a silent no-op. Add and Remove are
// O(1).
//
// # Fan-out
//
// SyncDispatcher delivers one item to a snapshot of listeners in registration
// order, in the caller's goroutine. Each call runs inside an Executor that
// recovers panics and captures returned errors, so one failing listener
// never prevents delivery to the rest:
//
//	set := dispatch.NewSet[string]("greetings")
//	set.Add(dispatch.HandlerFunc[string](func(s string) error {
//	    fmt.Println("hello", s)
//	    return nil
//	}))
//
//	d := dispatch.NewSyncDispatcher(
//	    dispatch.WithFaultHandler(func(item string, err *dispatch.FaultError) {
//	        slog.Warn("listener failed", "error", err)
//	    }),
//	)
//	d.DispatchAll("world", set.Snapshot())
//
// Iterating a snapshot means a listener may unsubscribe itself, or others,
// while the fan-out is in progress without affecting the current delivery.
package dispatch
