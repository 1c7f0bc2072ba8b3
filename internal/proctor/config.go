package proctor

// Config holds the gating flags of a session.
type Config struct {
	DetectTabSwitch    bool `toml:"detect_tab_switch" json:"detectTabSwitch"`
	ForceFullscreen    bool `toml:"force_fullscreen" json:"forceFullscreen"`
	PreventCopyPaste   bool `toml:"prevent_copy_paste" json:"preventCopyPaste"`
	PreventContextMenu bool `toml:"prevent_context_menu" json:"preventContextMenu"`
	DetectDevTools     bool `toml:"detect_dev_tools" json:"detectDevTools"`
}

// DefaultConfig returns the config a new detector starts from.
func DefaultConfig() Config {
	return Config{
		DetectTabSwitch:    true,
		PreventCopyPaste:   true,
		PreventContextMenu: true,
	}
}

// ConfigPatch is a partial Config. Nil fields keep their previous value.
type ConfigPatch struct {
	DetectTabSwitch    *bool `json:"detectTabSwitch,omitempty"`
	ForceFullscreen    *bool `json:"forceFullscreen,omitempty"`
	PreventCopyPaste   *bool `json:"preventCopyPaste,omitempty"`
	PreventContextMenu *bool `json:"preventContextMenu,omitempty"`
	DetectDevTools     *bool `json:"detectDevTools,omitempty"`
}

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool {
	return &b
}

// Patch returns a patch that sets every field of c.
func (c Config) Patch() ConfigPatch {
	return ConfigPatch{
		DetectTabSwitch:    Bool(c.DetectTabSwitch),
		ForceFullscreen:    Bool(c.ForceFullscreen),
		PreventCopyPaste:   Bool(c.PreventCopyPaste),
		PreventContextMenu: Bool(c.PreventContextMenu),
		DetectDevTools:     Bool(c.DetectDevTools),
	}
}

// Merge returns c with every non-nil field of p applied.
func (c Config) Merge(p ConfigPatch) Config {
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&c.DetectTabSwitch, p.DetectTabSwitch)
	apply(&c.ForceFullscreen, p.ForceFullscreen)
	apply(&c.PreventCopyPaste, p.PreventCopyPaste)
	apply(&c.PreventContextMenu, p.PreventContextMenu)
	apply(&c.DetectDevTools, p.DetectDevTools)
	return c
}

// IsEmpty reports whether the patch changes nothing.
func (p ConfigPatch) IsEmpty() bool {
	return p.DetectTabSwitch == nil && p.ForceFullscreen == nil &&
		p.PreventCopyPaste == nil && p.PreventContextMenu == nil &&
		p.DetectDevTools == nil
}

// Overlay returns p with every non-nil field of q applied.
func (p ConfigPatch) Overlay(q ConfigPatch) ConfigPatch {
	pick := func(a, b *bool) *bool {
		if b != nil {
			return b
		}
		return a
	}
	return ConfigPatch{
		DetectTabSwitch:    pick(p.DetectTabSwitch, q.DetectTabSwitch),
		ForceFullscreen:    pick(p.ForceFullscreen, q.ForceFullscreen),
		PreventCopyPaste:   pick(p.PreventCopyPaste, q.PreventCopyPaste),
		PreventContextMenu: pick(p.PreventContextMenu, q.PreventContextMenu),
		DetectDevTools:     pick(p.DetectDevTools, q.DetectDevTools),
	}
}
