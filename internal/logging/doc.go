// Package logging provides the leveled diagnostic logger.
//
// The Logger records structured entries at four severities, keeps a bounded
// history and notifies subscribers synchronously, with the same fault
// isolation as the event bus. Subscribers form one flat set: every
// subscriber receives every entry, so filtering by level is the subscriber's
// job.
//
// Each entry is also mirrored to a Console, styled by level. Mirroring is a
// side effect only; it never affects history or delivery.
//
// Clear empties history. Unlike the bus, it does not deliver a reserved
// entry; subscribers that need to react implement ClearHandler.
//
// NewSlogHandler adapts a Logger to log/slog so that standard slog calls
// flow into the same history and subscribers.
package logging
