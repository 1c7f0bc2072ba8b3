package logging

import "time"

// Entry is a single log record. Entries are immutable once created.
type Entry struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // milliseconds since the Unix epoch
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Module    string `json:"module,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Time returns the entry timestamp as a time.Time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// EntryOption sets optional entry fields for the convenience methods.
type EntryOption func(*Entry)

// InModule sets the entry's module.
func InModule(module string) EntryOption {
	return func(e *Entry) {
		e.Module = module
	}
}

// WithData attaches a payload to the entry.
func WithData(data any) EntryOption {
	return func(e *Entry) {
		e.Data = data
	}
}
