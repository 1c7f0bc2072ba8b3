package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/vigil/internal/logging"
)

var (
	styleBase     = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleFocused  = tcell.StyleDefault.Bold(true).Reverse(true)
	styleSelected = tcell.StyleDefault.Reverse(true)
	styleDim      = tcell.StyleDefault.Dim(true)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

// calm and alarm bound the proctor panel's severity gradient.
var (
	calm, _  = colorful.Hex("#2ecc71")
	alarm, _ = colorful.Hex("#e74c3c")
)

// tcellColor converts a colorful colour to a 24-bit tcell colour.
func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// levelStyle returns the style of a log level.
func levelStyle(l logging.Level) tcell.Style {
	style := tcell.StyleDefault.Foreground(tcellColor(logging.LevelColor(l)))
	if l == logging.LevelError {
		style = style.Bold(true)
	}
	return style
}

// severityColor blends from calm to alarm as count approaches limit.
func severityColor(count, limit int) colorful.Color {
	if limit <= 0 {
		limit = 1
	}
	t := float64(count) / float64(limit)
	if t > 1 {
		t = 1
	}
	return calm.BlendLab(alarm, t)
}
