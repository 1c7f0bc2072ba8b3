package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/term"
)

// ColorMode controls console colouring.
type ColorMode int

const (
	// ColorAuto colours output only when writing to a terminal.
	ColorAuto ColorMode = iota
	// ColorAlways always emits ANSI colour sequences.
	ColorAlways
	// ColorNever never emits colour sequences.
	ColorNever
)

// String returns the colour mode name.
func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses "auto", "always" or "never". Unknown values are auto.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always", "on", "true":
		return ColorAlways
	case "never", "off", "false":
		return ColorNever
	default:
		return ColorAuto
	}
}

// levelHex is the per-level console palette.
var levelHex = map[Level]string{
	LevelDebug: "#95a5a6",
	LevelInfo:  "#3498db",
	LevelWarn:  "#f39c12",
	LevelError: "#e74c3c",
}

// LevelColor returns the display colour for a level.
func LevelColor(l Level) colorful.Color {
	hex, ok := levelHex[l]
	if !ok {
		hex = levelHex[LevelInfo]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return c
}

const ansiReset = "\x1b[0m"

// ansiStyle returns the 24-bit foreground sequence for a level; errors are
// also bold.
func ansiStyle(l Level) string {
	r, g, b := LevelColor(l).RGB255()
	seq := fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
	if l == LevelError {
		seq = "\x1b[1m" + seq
	}
	return seq
}

// Console mirrors log entries to a writer with level-appropriate styling.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	minLevel Level
	color    bool
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console, *ColorMode)

// WithMinLevel drops entries below the given level from the console.
// History and subscribers are unaffected.
func WithMinLevel(l Level) ConsoleOption {
	return func(c *Console, _ *ColorMode) {
		c.minLevel = l
	}
}

// WithColorMode sets the colour mode. Defaults to ColorAuto.
func WithColorMode(m ColorMode) ConsoleOption {
	return func(_ *Console, mode *ColorMode) {
		*mode = m
	}
}

// NewConsole creates a console mirror writing to w (os.Stderr when nil).
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	if w == nil {
		w = os.Stderr
	}
	c := &Console{w: w, minLevel: LevelDebug}
	mode := ColorAuto
	for _, opt := range opts {
		opt(c, &mode)
	}

	switch mode {
	case ColorAlways:
		c.color = true
	case ColorAuto:
		c.color = isTerminal(w)
	}
	return c
}

// SetMinLevel changes the console threshold.
func (c *Console) SetMinLevel(l Level) {
	c.mu.Lock()
	c.minLevel = l
	c.mu.Unlock()
}

// MinLevel returns the console threshold.
func (c *Console) MinLevel() Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minLevel
}

// Colored reports whether the console emits colour sequences.
func (c *Console) Colored() bool {
	return c.color
}

// Write mirrors one entry. Write errors are ignored.
func (c *Console) Write(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.Level < c.minLevel {
		return
	}
	_, _ = io.WriteString(c.w, c.format(e))
}

// Fault reports a failing log subscriber.
func (c *Console) Fault(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := fmt.Sprintf("logging: subscriber failed: %v\n", err)
	if c.color {
		line = ansiStyle(LevelError) + strings.TrimSuffix(line, "\n") + ansiReset + "\n"
	}
	_, _ = io.WriteString(c.w, line)
}

// format renders: 15:04:05.000 [LEVEL] [module] message {data}
func (c *Console) format(e Entry) string {
	var sb strings.Builder

	sb.WriteString(time.UnixMilli(e.Timestamp).Format("15:04:05.000"))
	sb.WriteByte(' ')

	tag := fmt.Sprintf("[%-5s]", e.Level.String())
	if c.color {
		sb.WriteString(ansiStyle(e.Level))
		sb.WriteString(tag)
		sb.WriteString(ansiReset)
	} else {
		sb.WriteString(tag)
	}

	if e.Module != "" {
		sb.WriteString(" [")
		sb.WriteString(e.Module)
		sb.WriteByte(']')
	}
	sb.WriteByte(' ')
	sb.WriteString(e.Message)

	if e.Data != nil {
		if b, err := json.Marshal(e.Data); err == nil {
			sb.WriteByte(' ')
			sb.Write(b)
		} else {
			fmt.Fprintf(&sb, " %v", e.Data)
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
