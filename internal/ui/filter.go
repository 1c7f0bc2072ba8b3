package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/vigil/internal/event"
	"github.com/dshills/vigil/internal/event/topic"
)

// Filter selects records by name pattern and data queries.
//
// The expression is whitespace separated. A term containing "=" is a data
// query: "path=value" matches when the gjson path resolves to value, and
// "path!=value" when it does not. A bare "path?" matches when the path
// exists. Any other term is the topic pattern (last one wins). An empty
// filter matches everything.
type Filter struct {
	expr    string
	pattern topic.Pattern
	queries []dataQuery
}

type dataQuery struct {
	path   string
	value  string
	negate bool
	exists bool
}

// ParseFilter parses a filter expression.
func ParseFilter(expr string) (Filter, error) {
	f := Filter{expr: strings.TrimSpace(expr)}
	for _, term := range strings.Fields(f.expr) {
		switch {
		case strings.Contains(term, "!="):
			path, value, _ := strings.Cut(term, "!=")
			if path == "" {
				return Filter{}, fmt.Errorf("filter %q: empty path", term)
			}
			f.queries = append(f.queries, dataQuery{path: path, value: value, negate: true})
		case strings.Contains(term, "="):
			path, value, _ := strings.Cut(term, "=")
			path = strings.TrimSuffix(path, "=")
			value = strings.TrimPrefix(value, "=")
			if path == "" {
				return Filter{}, fmt.Errorf("filter %q: empty path", term)
			}
			f.queries = append(f.queries, dataQuery{path: path, value: value})
		case strings.HasSuffix(term, "?") && len(term) > 1:
			f.queries = append(f.queries, dataQuery{path: strings.TrimSuffix(term, "?"), exists: true})
		default:
			f.pattern = topic.Pattern(term)
		}
	}
	return f, nil
}

// String returns the original expression.
func (f Filter) String() string {
	return f.expr
}

// Match reports whether rec passes the filter.
func (f Filter) Match(rec event.Record) bool {
	if !event.ByPattern(f.pattern)(rec) {
		return false
	}
	if len(f.queries) == 0 {
		return true
	}

	data := recordJSON(rec.Data)
	for _, q := range f.queries {
		res := gjson.GetBytes(data, q.path)
		var ok bool
		switch {
		case q.exists:
			ok = res.Exists()
		case q.negate:
			ok = !res.Exists() || res.String() != q.value
		default:
			ok = res.Exists() && res.String() == q.value
		}
		if !ok {
			return false
		}
	}
	return true
}

// recordJSON encodes a payload for querying and display. Payloads that do
// not encode become a JSON string of their %v form.
func recordJSON(data any) []byte {
	if data == nil {
		return []byte("null")
	}
	b, err := json.Marshal(data)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprintf("%v", data))
	}
	return b
}
