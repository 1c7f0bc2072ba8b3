// Package proctor implements the proctoring session detector.
//
// A Detector watches a Target for host UI signals (visibility changes,
// focus loss, fullscreen exit, clipboard actions, context menus and
// resizes) and turns them into Violations while a session is active.
//
// The detector is a two-state machine. StartSession merges a ConfigPatch
// over the last known Config, resets the violation count and attaches one
// listener per enabled gate. EndSession detaches everything. Signals that
// arrive while no session is active never produce a violation.
//
// The devtools gate is a resize heuristic: it fires when the outer size
// exceeds the inner size by more than a threshold on either axis. Browser
// zoom and window chrome changes trip it too, so treat it as a hint.
package proctor
