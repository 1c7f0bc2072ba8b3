package ui

import (
	"io"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vigil/internal/app"
	"github.com/dshills/vigil/internal/config"
)

func newTestUI(t *testing.T) (*UI, *app.Application) {
	t.Helper()
	cfg := config.Default()
	cfg.Watch.Enabled = false
	a, err := app.New(app.Options{Config: &cfg, Console: io.Discard})
	require.NoError(t, err)

	u := New(a, nil)
	t.Cleanup(func() {
		u.Close()
		a.Shutdown()
	})
	return u, a
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func typeText(u *UI, s string) {
	for _, r := range s {
		u.HandleEvent(runeKey(r))
	}
}

func TestUI_Quit(t *testing.T) {
	u, _ := newTestUI(t)

	assert.True(t, u.HandleEvent(runeKey('q')))
	assert.True(t, u.HandleEvent(key(tcell.KeyEscape)))
	assert.False(t, u.HandleEvent(runeKey('x')))
}

func TestUI_FocusCycles(t *testing.T) {
	u, _ := newTestUI(t)

	assert.Same(t, u.events, u.Focused())
	u.HandleEvent(key(tcell.KeyTab))
	assert.Same(t, u.proctor, u.Focused())
	u.HandleEvent(key(tcell.KeyTab))
	assert.Same(t, u.logs, u.Focused())
	u.HandleEvent(key(tcell.KeyTab))
	assert.Same(t, u.events, u.Focused())
	u.HandleEvent(key(tcell.KeyBacktab))
	assert.Same(t, u.logs, u.Focused())
}

func TestUI_SessionKeys(t *testing.T) {
	u, a := newTestUI(t)

	u.HandleEvent(runeKey('s'))
	assert.True(t, a.Detector().Active())
	assert.Equal(t, "session started", u.Message())

	u.HandleEvent(runeKey('s'))
	assert.Equal(t, "session already active", u.Message())

	u.HandleEvent(runeKey('e'))
	assert.False(t, a.Detector().Active())
	assert.Equal(t, "session ended", u.Message())
}

func TestUI_FilterInput(t *testing.T) {
	u, a := newTestUI(t)
	a.Bus().Emit("quiz:opened", nil)

	u.HandleEvent(runeKey('/'))
	typeText(u, "proctor:*x")
	u.HandleEvent(key(tcell.KeyBackspace2))

	g := newGrid(80, 10)
	u.Draw(g, 80, 10)
	assert.Equal(t, "filter: proctor:*", g.row(9))

	assert.False(t, u.HandleEvent(runeKey('q')), "q is text while typing a filter")
	u.HandleEvent(key(tcell.KeyBackspace2))
	u.HandleEvent(key(tcell.KeyEnter))

	assert.Equal(t, "Events [proctor:*]", u.events.Title())
	assert.Empty(t, u.events.Visible())

	u.HandleEvent(runeKey('/'))
	u.HandleEvent(key(tcell.KeyEscape))
	assert.Equal(t, "Events [proctor:*]", u.events.Title(), "escape keeps the old filter")
}

func TestUI_InvalidFilterShowsError(t *testing.T) {
	u, _ := newTestUI(t)

	u.HandleEvent(runeKey('/'))
	typeText(u, "=x")
	u.HandleEvent(key(tcell.KeyEnter))

	assert.Contains(t, u.Message(), "empty path")
}

func TestUI_ClearFocusedPanel(t *testing.T) {
	u, a := newTestUI(t)
	a.Bus().Emit("quiz:opened", nil)
	a.Logger().Info("hello")

	u.HandleEvent(runeKey('c'))
	assert.Empty(t, a.Bus().History())
	assert.NotEmpty(t, a.Logger().History())

	u.HandleEvent(key(tcell.KeyTab))
	u.HandleEvent(key(tcell.KeyTab))
	u.HandleEvent(runeKey('c'))
	assert.Empty(t, a.Logger().History())
}

func TestUI_BlockedCopyIsConsumed(t *testing.T) {
	u, a := newTestUI(t)
	u.HandleEvent(runeKey('s'))

	quit := u.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))

	assert.False(t, quit)
	assert.Equal(t, "blocked by proctoring", u.Message())
	assert.Equal(t, 1, a.Detector().ViolationCount())
}

func TestUI_FocusLossRecordsViolations(t *testing.T) {
	u, a := newTestUI(t)
	u.HandleEvent(runeKey('s'))

	u.HandleEvent(tcell.NewEventFocus(false))

	assert.Equal(t, 2, a.Detector().ViolationCount())
	assert.Len(t, u.proctor.Recent(), 2)
}

func TestUI_Draw(t *testing.T) {
	u, _ := newTestUI(t)
	u.HandleEvent(runeKey('s'))

	g := newGrid(100, 20)
	u.Draw(g, 100, 20)
	text := g.text()

	assert.Contains(t, g.row(0), "vigil")
	assert.Contains(t, text, "Events")
	assert.Contains(t, text, "Proctor")
	assert.Contains(t, text, "session ACTIVE")
	assert.Contains(t, text, "Log ≥ DEBUG")
	assert.Contains(t, text, "proctor:session_started")
	assert.Equal(t, "session started", g.row(19))
}

func TestUI_DrawTinyScreen(t *testing.T) {
	u, _ := newTestUI(t)

	assert.NotPanics(t, func() {
		u.Draw(newGrid(1, 1), 1, 1)
		u.Draw(newGrid(3, 2), 3, 2)
		u.Draw(newGrid(0, 0), 0, 0)
	})
}

func TestUI_RunWithoutScreen(t *testing.T) {
	u, _ := newTestUI(t)
	assert.Error(t, u.Run(t.Context()))
}

func TestUI_ChangesScheduleRedraw(t *testing.T) {
	u, a := newTestUI(t)

	a.Bus().Emit("quiz:opened", nil)

	select {
	case <-u.redraw:
	case <-time.After(time.Second):
		t.Fatal("no redraw scheduled")
	}
}
