// Package topic defines event names and name patterns.
//
// Event names are colon-namespaced by convention:
//
//	sys:clear_history      - bus control event (reserved)
//	proctor:violation      - a proctoring violation was recorded
//	config:reloaded        - configuration was reloaded from disk
//
// Names in the "sys" namespace are reserved for control events and must not
// be used for ordinary application events.
//
// # Patterns
//
// Patterns are used by viewers to filter names:
//
//	proctor:*    - matches proctor:violation, proctor:session_started
//	*:changed    - matches config:changed, theme:changed
//	**           - matches everything
//	proctor:**   - matches proctor and every name below it
package topic
