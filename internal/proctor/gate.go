package proctor

import "fmt"

// DefaultDevToolsThreshold is the outer/inner size gap, in pixels, above
// which a resize is reported as possible developer tools.
const DefaultDevToolsThreshold = 160

// gate binds one signal kind to one violation type under one config flag.
type gate struct {
	enabled func(Config) bool
	kind    SignalKind

	// prevent cancels the host default action for matching signals.
	prevent bool

	// translate decides whether a signal is a violation and describes it.
	translate func(s *Signal, threshold int) (ViolationType, string, bool)
}

var gates = []gate{
	{
		enabled: func(c Config) bool { return c.DetectTabSwitch },
		kind:    SignalVisibilityChange,
		translate: func(s *Signal, _ int) (ViolationType, string, bool) {
			return ViolationTabSwitch, "Tab switched or window minimized", s.Hidden
		},
	},
	{
		enabled: func(c Config) bool { return c.DetectTabSwitch },
		kind:    SignalBlur,
		translate: func(*Signal, int) (ViolationType, string, bool) {
			return ViolationWindowBlur, "Window lost focus", true
		},
	},
	{
		enabled: func(c Config) bool { return c.ForceFullscreen },
		kind:    SignalFullscreenChange,
		translate: func(s *Signal, _ int) (ViolationType, string, bool) {
			return ViolationFullscreenExit, "Exited fullscreen mode", !s.Fullscreen
		},
	},
	clipboardGate(SignalCopy),
	clipboardGate(SignalCut),
	clipboardGate(SignalPaste),
	{
		enabled: func(c Config) bool { return c.PreventContextMenu },
		kind:    SignalContextMenu,
		prevent: true,
		translate: func(*Signal, int) (ViolationType, string, bool) {
			return ViolationContextMenu, "Context menu blocked", true
		},
	},
	{
		enabled: func(c Config) bool { return c.DetectDevTools },
		kind:    SignalResize,
		translate: func(s *Signal, threshold int) (ViolationType, string, bool) {
			dw := s.Outer.Width - s.Inner.Width
			dh := s.Outer.Height - s.Inner.Height
			if dw <= threshold && dh <= threshold {
				return "", "", false
			}
			return ViolationDevTools, "Developer tools may be open", true
		},
	},
}

func clipboardGate(kind SignalKind) gate {
	return gate{
		enabled: func(c Config) bool { return c.PreventCopyPaste },
		kind:    kind,
		prevent: true,
		translate: func(*Signal, int) (ViolationType, string, bool) {
			return ViolationCopyPaste, fmt.Sprintf("%s blocked", clipboardAction(kind)), true
		},
	}
}

func clipboardAction(kind SignalKind) string {
	switch kind {
	case SignalCut:
		return "Cut"
	case SignalPaste:
		return "Paste"
	default:
		return "Copy"
	}
}
