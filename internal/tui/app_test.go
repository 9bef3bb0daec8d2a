package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/session"
	"github.com/f3rmion/hanzicam/internal/tui/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestApp(t *testing.T) AppModel {
	t.Helper()
	m := NewApp(Deps{
		Capture: func(context.Context, string) (session.Outcome, error) {
			return session.Outcome{Kind: session.Nothing}, nil
		},
		LoadHistory:  func() ([]hanzi.HistoryEntry, error) { return nil, nil },
		ClearHistory: func() error { return nil },
		Notifier:     NewNotifier(),
		GroupSize:    4,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(AppModel)
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	require.True(t, ok)
	return app, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestApp_TypingSwallowsGlobalKeys(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)
	require.True(t, m.captureView.Typing())

	m, cmd := update(t, m, runes("q"))
	assert.False(t, isQuit(cmd))
	m, _ = update(t, m, runes("2"))
	assert.Equal(t, ViewCapture, m.currentView)

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd))
}

func TestApp_SwitchViews(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc}) // leave the path input
	require.False(t, m.captureView.Typing())

	m, _ = update(t, m, runes("2"))
	assert.Equal(t, ViewHistory, m.currentView)
	assert.Contains(t, m.View(), "History")

	m, _ = update(t, m, runes("1"))
	assert.Equal(t, ViewCapture, m.currentView)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.sidebarActive)
	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewHistory, m.currentView)
	assert.False(t, m.sidebarActive)

	_, cmd := update(t, m, runes("q"))
	assert.True(t, isQuit(cmd))
}

func TestApp_HelpOverlay(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, runes("?"))
	assert.Contains(t, m.View(), "Press any key to close")

	m, cmd := update(t, m, runes("q"))
	assert.Nil(t, cmd)
	assert.False(t, m.showHelp)
}

func TestApp_NotificationBar(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)
	m, cmd := update(t, m, noteMsg(session.Notification{Level: session.LevelSuccess, Text: "Found 2 Chinese character(s)"}))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Found 2 Chinese character(s)")

	// A newer notification is not cleared by the older timer.
	m, _ = update(t, m, noteMsg(session.Notification{Level: session.LevelError, Text: "Failed to process image. Please try again."}))
	m, _ = update(t, m, clearNoteMsg{seq: 1})
	assert.Contains(t, m.View(), "Failed to process image")

	m, _ = update(t, m, clearNoteMsg{seq: 2})
	assert.NotContains(t, m.View(), "Failed to process image")
}

func TestApp_ReplaySwitchesToCapture(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, runes("2"))

	entry := hanzi.HistoryEntry{Results: []hanzi.RecognizedCharacter{hanzi.NewCharacter("好", "hǎo")}}
	m, _ = update(t, m, views.ReplayMsg{Entry: entry})
	assert.Equal(t, ViewCapture, m.currentView)
	assert.Contains(t, m.View(), "好")
}

func TestNotifier_DeliversInOrder(t *testing.T) {
	t.Parallel()

	n := NewNotifier()
	n.Notify(session.Notification{Text: "one"})
	n.Notify(session.Notification{Text: "two"})

	assert.Equal(t, "one", n.listen()().(noteMsg).Text)
	assert.Equal(t, "two", n.listen()().(noteMsg).Text)
}
