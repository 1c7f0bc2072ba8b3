// Package event provides the in-process publish/subscribe bus.
//
// The bus decouples producers and consumers of named events and keeps a
// bounded replay history for late subscribers and debugging.
//
// # Delivery
//
// Emit builds an immutable Record, appends it to history and then
// synchronously calls:
//
//  1. every listener subscribed to the record's name, in registration order
//  2. every global listener, in registration order
//
// A listener that returns an error or panics is reported to the diagnostic
// channel (slog, plus the optional fault handler and metrics recorder) and
// delivery continues with the next listener. The emitter never sees listener
// failures.
//
// # History
//
// History is a FIFO ring (default 1000 records). History returns a snapshot,
// oldest first. ClearHistory empties it and then delivers the reserved
// control event topic.ClearHistory to current listeners. Consumers that
// mirror history locally must reset their copy on that event; HistoryMirror
// implements this contract.
//
// # Basic Usage
//
//	bus := event.NewBus(event.WithHistoryCapacity(500))
//
//	sub := bus.Subscribe("proctor:violation", event.HandlerFunc(func(rec event.Record) error {
//	    fmt.Println(rec.Name, rec.Data)
//	    return nil
//	}))
//	defer bus.Unsubscribe(sub)
//
//	bus.EmitFrom("proctor", "proctor:violation", violation)
//
// # Thread Safety
//
// Bus is safe for concurrent use. Listeners run in the emitting goroutine
// without any bus lock held, so they may emit, subscribe or unsubscribe.
package event
