package event

import (
	"github.com/dshills/vigil/internal/event/topic"
)

// Filter is a record predicate.
type Filter func(rec Record) bool

// Common filter predicates for subscriptions and history queries.

// BySource allows records from the specified source.
func BySource(source string) Filter {
	return func(rec Record) bool {
		return rec.Source == source
	}
}

// ExcludeSource blocks records from the specified source.
func ExcludeSource(source string) Filter {
	return func(rec Record) bool {
		return rec.Source != source
	}
}

// ByPattern allows records whose name matches pattern. An empty pattern
// allows everything.
func ByPattern(pattern topic.Pattern) Filter {
	return func(rec Record) bool {
		return pattern.Match(rec.Name)
	}
}

// ByNamespace allows records in the given namespace.
func ByNamespace(namespace string) Filter {
	return func(rec Record) bool {
		return rec.Name.Namespace() == namespace
	}
}

// ExcludeControl blocks the bus's own control events.
func ExcludeControl() Filter {
	return func(rec Record) bool {
		return !rec.Name.IsReserved()
	}
}

// And combines filters with AND logic. No filters allows everything.
func And(filters ...Filter) Filter {
	return func(rec Record) bool {
		for _, f := range filters {
			if f != nil && !f(rec) {
				return false
			}
		}
		return true
	}
}

// Or combines filters with OR logic. No filters blocks everything.
func Or(filters ...Filter) Filter {
	return func(rec Record) bool {
		for _, f := range filters {
			if f != nil && f(rec) {
				return true
			}
		}
		return false
	}
}

// Not negates a filter.
func Not(f Filter) Filter {
	return func(rec Record) bool {
		return !f(rec)
	}
}

// Filtered wraps h so it only sees records that pass f.
func Filtered(f Filter, h Handler) Handler {
	return HandlerFunc(func(rec Record) error {
		if !f(rec) {
			return nil
		}
		return h.Handle(rec)
	})
}

// Select returns the records that pass f, preserving order.
func Select(records []Record, f Filter) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if f(rec) {
			out = append(out, rec)
		}
	}
	return out
}
