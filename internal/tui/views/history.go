package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/hanzicam/internal/hanzi"
)

// HistoryModel lists past recognitions, newest first.
type HistoryModel struct {
	load  func() ([]hanzi.HistoryEntry, error)
	clear func() error
	now   func() time.Time

	entries    []hanzi.HistoryEntry
	cursor     int
	confirming bool
	err        error

	width  int
	height int
}

// NewHistoryModel creates the history view. load and clear are usually
// bound to a history store and the capture controller.
func NewHistoryModel(load func() ([]hanzi.HistoryEntry, error), clear func() error) HistoryModel {
	return HistoryModel{load: load, clear: clear, now: time.Now}
}

// SetSize updates the view dimensions.
func (m *HistoryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Init loads the entries.
func (m HistoryModel) Init() tea.Cmd {
	return m.reload()
}

func (m HistoryModel) reload() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		entries, err := load()
		return historyLoadedMsg{entries: entries, err: err}
	}
}

// Update handles messages.
func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.entries = msg.entries
		m.err = msg.err
		if m.cursor >= len(m.entries) {
			m.cursor = max(len(m.entries)-1, 0)
		}
		return m, nil

	case HistoryChangedMsg:
		return m, m.reload()

	case tea.KeyMsg:
		if m.confirming {
			m.confirming = false
			if msg.String() != "y" {
				return m, nil
			}
			if err := m.clear(); err != nil {
				m.err = err
				return m, nil
			}
			m.cursor = 0
			return m, m.reload()
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.entries) {
				entry := m.entries[m.cursor]
				return m, func() tea.Msg { return ReplayMsg{Entry: entry} }
			}
		case "D":
			if len(m.entries) > 0 {
				m.confirming = true
			}
		case "r":
			return m, m.reload()
		}
	}
	return m, nil
}

// View renders the history list.
func (m HistoryModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("史 History"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n\n")
	}

	if len(m.entries) == 0 {
		b.WriteString(mutedStyle.Render("No captures yet"))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("r: reload"))
		return b.String()
	}

	now := m.now()
	for i, e := range m.entries {
		line := fmt.Sprintf("%-10s %-24s %s", e.Preview, e.PinyinPreview, mutedStyle.Render(Ago(now, e.Timestamp)))
		if i == m.cursor {
			b.WriteString(itemSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.confirming {
		b.WriteString(errorStyle.Render("Clear all history? y to confirm, any other key to cancel"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓: navigate • enter: open • D: clear all • r: reload"))
	}
	return b.String()
}

// Ago formats t relative to now, e.g. "just now", "5m ago", "Jan 2".
func Ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Local().Format("Jan 2")
}
