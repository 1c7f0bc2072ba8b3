package event

import (
	"time"

	"github.com/dshills/vigil/internal/event/topic"
)

// ClearHistorySource is the source of the control event delivered by
// ClearHistory.
const ClearHistorySource = "EventBusService"

// Record is a single emitted event. Records are immutable once created.
type Record struct {
	// ID uniquely identifies this record.
	ID string `json:"id"`

	// Name is the routing key (e.g. "proctor:violation").
	Name topic.Name `json:"name"`

	// Data is the event payload.
	Data any `json:"data,omitempty"`

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`

	// Source optionally identifies the producer.
	Source string `json:"source,omitempty"`
}

// Time returns the record timestamp as a time.Time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// IsClearSignal reports whether the record is the bus's clear-history
// control event.
func (r Record) IsClearSignal() bool {
	return r.Name == topic.ClearHistory
}
