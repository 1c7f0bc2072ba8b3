package topic

import "strings"

// Name identifies an event. Names are free-form; colon-separated
// namespaces are a convention, not a requirement.
type Name string

const (
	// Separator separates namespace segments.
	Separator = ":"

	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// ReservedNamespace holds control events owned by the bus.
	ReservedNamespace = "sys"
)

// ClearHistory is delivered by the bus after its history is cleared.
// Consumers mirroring history must reset their copy instead of appending it.
const ClearHistory Name = "sys:clear_history"

// String returns the name as a string.
func (n Name) String() string {
	return string(n)
}

// Segments returns the name split by the separator.
func (n Name) Segments() []string {
	if n == "" {
		return nil
	}
	return strings.Split(string(n), Separator)
}

// Namespace returns the first segment, or "" for names without a separator.
//
// Example: "proctor:violation" -> "proctor"
func (n Name) Namespace() string {
	s := string(n)
	idx := strings.Index(s, Separator)
	if idx < 0 {
		return ""
	}
	return s[:idx]
}

// Base returns the last segment of the name.
//
// Example: "sys:clear_history" -> "clear_history"
func (n Name) Base() string {
	s := string(n)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

// IsReserved returns true for names in the reserved "sys" namespace.
func (n Name) IsReserved() bool {
	return n.Namespace() == ReservedNamespace
}

// IsValid returns true if the name is non-empty and has no empty segments.
func (n Name) IsValid() bool {
	if n == "" {
		return false
	}
	for _, seg := range n.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Join joins segments into a name.
func Join(segments ...string) Name {
	return Name(strings.Join(segments, Separator))
}

// Pattern is a name pattern that may contain wildcards.
type Pattern string

// IsWildcard returns true if the pattern contains a wildcard.
func (p Pattern) IsWildcard() bool {
	return strings.Contains(string(p), WildcardSingle)
}

// Match reports whether name matches the pattern. An empty pattern matches
// every name.
func (p Pattern) Match(name Name) bool {
	if p == "" {
		return true
	}
	if !p.IsWildcard() {
		return string(p) == string(name)
	}
	return matchSegments(name.Segments(), strings.Split(string(p), Separator))
}

// matchSegments performs recursive pattern matching on name segments.
func matchSegments(name, pattern []string) bool {
	ni, pi := 0, 0

	for pi < len(pattern) {
		if pattern[pi] == WildcardMulti {
			for ni <= len(name) {
				if matchSegments(name[ni:], pattern[pi+1:]) {
					return true
				}
				ni++
			}
			return false
		}

		if ni >= len(name) {
			return false
		}

		if pattern[pi] != WildcardSingle && pattern[pi] != name[ni] {
			return false
		}
		ni++
		pi++
	}

	return ni == len(name)
}
