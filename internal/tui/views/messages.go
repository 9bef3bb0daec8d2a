package views

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/session"
)

// CaptureDoneMsg carries the result of a capture started from the capture view.
type CaptureDoneMsg struct {
	Path    string
	Outcome session.Outcome
	Err     error
}

// ReplayMsg asks the capture view to show a history entry.
type ReplayMsg struct {
	Entry hanzi.HistoryEntry
}

// HistoryChangedMsg tells the history view to reload.
type HistoryChangedMsg struct{}

type historyLoadedMsg struct {
	entries []hanzi.HistoryEntry
	err     error
}

type clearCopiedMsg struct{}

type spokenMsg struct{ err error }

func clearCopiedAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearCopiedMsg{}
	})
}

func historyChanged() tea.Msg { return HistoryChangedMsg{} }
