// Package ui is the terminal front end: three panels over the bus, the
// logger and the detector, plus a Host that turns terminal events into
// proctoring signals.
//
// Panels subscribe when created, seed from history, and unsubscribe on
// Close. The event panel treats the clear-history control event as a
// reset. The log panel resets through logging.ClearHandler.
package ui
