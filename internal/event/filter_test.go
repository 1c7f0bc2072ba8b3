package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vigil/internal/event/topic"
)

func TestFilters(t *testing.T) {
	rec := Record{Name: "proctor:violation", Source: "ProctorService"}
	ctrl := Record{Name: topic.ClearHistory, Source: ClearHistorySource}

	tests := []struct {
		name   string
		filter Filter
		rec    Record
		want   bool
	}{
		{"by source", BySource("ProctorService"), rec, true},
		{"by other source", BySource("ConfigService"), rec, false},
		{"exclude source", ExcludeSource("ProctorService"), rec, false},
		{"by pattern", ByPattern("proctor:*"), rec, true},
		{"empty pattern", ByPattern(""), rec, true},
		{"by namespace", ByNamespace("proctor"), rec, true},
		{"by other namespace", ByNamespace("config"), rec, false},
		{"exclude control passes", ExcludeControl(), rec, true},
		{"exclude control blocks", ExcludeControl(), ctrl, false},
		{"and", And(ByNamespace("proctor"), BySource("ProctorService")), rec, true},
		{"and fails", And(ByNamespace("proctor"), BySource("x")), rec, false},
		{"empty and", And(), rec, true},
		{"or", Or(BySource("x"), ByNamespace("proctor")), rec, true},
		{"empty or", Or(), rec, false},
		{"not", Not(BySource("x")), rec, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter(tt.rec))
		})
	}
}

func TestFiltered(t *testing.T) {
	bus := NewBus()
	var got []topic.Name
	boom := errors.New("boom")
	bus.SubscribeAll(Filtered(ByNamespace("quiz"), HandlerFunc(func(rec Record) error {
		got = append(got, rec.Name)
		return boom
	})))

	var faults int
	bus2 := NewBus(WithFaultHandler(func(Record, error) { faults++ }))
	bus2.SubscribeAll(Filtered(ByNamespace("quiz"), HandlerFunc(func(Record) error { return boom })))

	bus.Emit("quiz:opened", nil)
	bus.Emit("config:reloaded", nil)
	bus2.Emit("quiz:opened", nil)
	bus2.Emit("config:reloaded", nil)

	assert.Equal(t, []topic.Name{"quiz:opened"}, got)
	assert.Equal(t, 1, faults, "filtered-out records never reach the handler")
}

func TestSelect(t *testing.T) {
	bus := NewBus()
	bus.EmitFrom("a", "x:1", nil)
	bus.EmitFrom("b", "x:2", nil)
	bus.EmitFrom("a", "y:1", nil)

	out := Select(bus.History(), BySource("a"))

	require.Len(t, out, 2)
	assert.Equal(t, topic.Name("x:1"), out[0].Name)
	assert.Equal(t, topic.Name("y:1"), out[1].Name)
	assert.Empty(t, Select(nil, BySource("a")))
}
