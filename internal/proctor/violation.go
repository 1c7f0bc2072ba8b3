package proctor

import "time"

// ViolationType identifies what rule a violation broke.
type ViolationType string

// Violation types.
const (
	ViolationTabSwitch      ViolationType = "tab-switch"
	ViolationWindowBlur     ViolationType = "window-blur"
	ViolationFullscreenExit ViolationType = "fullscreen-exit"
	ViolationCopyPaste      ViolationType = "copy-paste"
	ViolationContextMenu    ViolationType = "context-menu"
	ViolationDevTools       ViolationType = "devtools"
)

// ViolationTypes lists every violation type.
var ViolationTypes = []ViolationType{
	ViolationTabSwitch,
	ViolationWindowBlur,
	ViolationFullscreenExit,
	ViolationCopyPaste,
	ViolationContextMenu,
	ViolationDevTools,
}

// Violation is a single detected rule break. The detector does not keep
// violations; subscribers that need them must store them.
type Violation struct {
	Type      ViolationType `json:"type"`
	Timestamp int64         `json:"timestamp"` // milliseconds since the Unix epoch
	Message   string        `json:"message"`
}

// Time returns the violation timestamp as a time.Time.
func (v Violation) Time() time.Time {
	return time.UnixMilli(v.Timestamp)
}

// Session is a snapshot of the detector state.
type Session struct {
	Active         bool   `json:"active"`
	Config         Config `json:"config"`
	ViolationCount int    `json:"violationCount"`
}
