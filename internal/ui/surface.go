package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Surface is the drawing target of the panels. tcell.Screen implements it.
type Surface interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// Rect is a screen region in cells.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// fill paints r with spaces.
func fill(s Surface, r Rect, style tcell.Style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			s.SetContent(x, y, ' ', nil, style)
		}
	}
}

// drawText draws text at (x, y), clipped to width cells. It returns the
// number of cells used. Wide and combining characters are kept whole.
func drawText(s Surface, x, y, width int, text string, style tcell.Style) int {
	used := 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if cluster == "\n" || cluster == "\r\n" || cluster == "\t" {
			cluster, w = " ", 1
		}
		if used+w > width {
			break
		}
		runes := []rune(cluster)
		s.SetContent(x+used, y, runes[0], runes[1:], style)
		for i := 1; i < w; i++ {
			s.SetContent(x+used+i, y, 0, nil, style)
		}
		used += w
	}
	return used
}

// truncate shortens text to at most width cells, marking the cut with an
// ellipsis.
func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(text) <= width {
		return text
	}

	var sb strings.Builder
	used := 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if used+w > width-1 {
			break
		}
		sb.WriteString(cluster)
		used += w
	}
	sb.WriteString("…")
	return sb.String()
}

// padRight pads text with spaces to exactly width cells, truncating first.
func padRight(text string, width int) string {
	text = truncate(text, width)
	if gap := width - uniseg.StringWidth(text); gap > 0 {
		text += strings.Repeat(" ", gap)
	}
	return text
}

// clamp bounds n to [lo, hi]. When hi < lo it returns lo.
func clamp(n, lo, hi int) int {
	if n > hi {
		n = hi
	}
	if n < lo {
		n = lo
	}
	return n
}

// splitLines splits text on newlines, dropping a trailing empty line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
