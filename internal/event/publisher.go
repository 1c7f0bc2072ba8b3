package event

import "github.com/dshills/vigil/internal/event/topic"

// Publisher emits records with a fixed source.
type Publisher struct {
	bus    *Bus
	source string
}

// NewPublisher creates a Publisher wrapping the given bus.
// The source parameter identifies where events originate (e.g. "ProctorService").
func NewPublisher(bus *Bus, source string) *Publisher {
	return &Publisher{bus: bus, source: source}
}

// Emit publishes data under name with the publisher's source.
func (p *Publisher) Emit(name topic.Name, data any) Record {
	return p.bus.EmitFrom(p.source, name, data)
}

// Source returns the publisher's source identifier.
func (p *Publisher) Source() string {
	return p.source
}

// Bus returns the underlying bus.
func (p *Publisher) Bus() *Bus {
	return p.bus
}
