package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/hanzicam/internal/dictionary"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/session"
	"github.com/f3rmion/hanzicam/internal/tui/bigchar"
	"github.com/f3rmion/hanzicam/internal/tui/views"
)

// noteTTL is how long a notification stays in the bar.
const noteTTL = 4 * time.Second

// ViewType represents the current active view
type ViewType int

const (
	ViewCapture ViewType = iota
	ViewHistory
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	Icon     string
	View     ViewType
	Shortcut string
}

// Deps is what the app needs from the rest of the program.
type Deps struct {
	Capture      views.CaptureFunc
	LoadHistory  func() ([]hanzi.HistoryEntry, error)
	ClearHistory func() error
	Notifier     *Notifier
	Dictionary   *dictionary.Dictionary // optional
	Glyphs       *bigchar.Renderer      // optional
	GroupSize    int
}

type clearNoteMsg struct{ seq int }

// AppModel is the main TUI model
type AppModel struct {
	notifier *Notifier

	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Navigation
	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	captureView views.CaptureModel
	historyView views.HistoryModel

	note    *session.Notification
	noteSeq int

	showHelp bool
}

// NewApp creates the TUI application.
func NewApp(deps Deps) AppModel {
	return AppModel{
		notifier:     deps.Notifier,
		sidebarWidth: 18,
		currentView:  ViewCapture,
		menuItems: []MenuItem{
			{Label: "Capture", Icon: "拍", View: ViewCapture, Shortcut: "1"},
			{Label: "History", Icon: "史", View: ViewHistory, Shortcut: "2"},
		},
		captureView: views.NewCaptureModel(deps.Capture, deps.Dictionary, deps.Glyphs, deps.GroupSize),
		historyView: views.NewHistoryModel(deps.LoadHistory, deps.ClearHistory),
	}
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.notifier.listen(), m.historyView.Init(), textinput.Blink)
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if next, cmd, ok := m.globalKey(msg); ok {
			return next, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 4
		contentHeight := m.height - 3
		m.captureView.SetSize(contentWidth, contentHeight)
		m.historyView.SetSize(contentWidth, contentHeight)
		return m, nil

	case noteMsg:
		note := session.Notification(msg)
		m.note = &note
		m.noteSeq++
		seq := m.noteSeq
		return m, tea.Batch(
			m.notifier.listen(),
			tea.Tick(noteTTL, func(time.Time) tea.Msg { return clearNoteMsg{seq: seq} }),
		)

	case clearNoteMsg:
		if msg.seq == m.noteSeq {
			m.note = nil
		}
		return m, nil

	case views.ReplayMsg:
		m.switchTo(ViewCapture)
		var cmd tea.Cmd
		m.captureView, cmd = m.captureView.Update(msg)
		return m, cmd

	case views.HistoryChangedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); isKey {
		if m.sidebarActive {
			return m, nil
		}
		switch m.currentView {
		case ViewCapture:
			m.captureView, cmd = m.captureView.Update(msg)
		case ViewHistory:
			m.historyView, cmd = m.historyView.Update(msg)
		}
		return m, cmd
	}

	// Spinner ticks, cursor blinks and loads go to both views.
	var cmds []tea.Cmd
	m.captureView, cmd = m.captureView.Update(msg)
	cmds = append(cmds, cmd)
	m.historyView, cmd = m.historyView.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// globalKey handles keys that work in every view. While the capture path
// input has focus only ctrl+c and tab are global.
func (m AppModel) globalKey(msg tea.KeyMsg) (AppModel, tea.Cmd, bool) {
	typing := !m.sidebarActive && m.currentView == ViewCapture && m.captureView.Typing()

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true
	case "tab":
		m.sidebarActive = !m.sidebarActive
		return m, nil, true
	}
	if typing {
		return m, nil, false
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit, true
	case "?":
		m.showHelp = true
		return m, nil, true
	case "esc":
		if m.sidebarActive {
			return m, tea.Quit, true
		}
		m.sidebarActive = true
		return m, nil, true
	case "1":
		m.switchTo(ViewCapture)
		return m, nil, true
	case "2":
		m.switchTo(ViewHistory)
		return m, nil, true
	}

	if m.sidebarActive {
		switch msg.String() {
		case "j", "down":
			if m.selectedMenu < len(m.menuItems)-1 {
				m.selectedMenu++
			}
			return m, nil, true
		case "k", "up":
			if m.selectedMenu > 0 {
				m.selectedMenu--
			}
			return m, nil, true
		case "enter", "l", "right":
			m.switchTo(m.menuItems[m.selectedMenu].View)
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m *AppModel) switchTo(v ViewType) {
	m.currentView = v
	for i, item := range m.menuItems {
		if item.View == v {
			m.selectedMenu = i
			break
		}
	}
	m.sidebarActive = false
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var content string
	switch m.currentView {
	case ViewCapture:
		content = m.captureView.View()
	case ViewHistory:
		content = m.historyView.View()
	}

	contentWidth := m.width - m.sidebarWidth - 4
	mainContent := ContentStyle.
		Width(contentWidth).
		Height(m.height - 3).
		Render(content)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), mainContent)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderNote())
}

func (m AppModel) renderNote() string {
	if m.note == nil {
		return ""
	}
	switch m.note.Level {
	case session.LevelSuccess:
		return NoteSuccessStyle.Render(m.note.String())
	case session.LevelError:
		return NoteErrorStyle.Render(m.note.String())
	default:
		return NoteInfoStyle.Render(m.note.String())
	}
}

// renderSidebar renders the sidebar navigation
func (m AppModel) renderSidebar() string {
	var items []string

	items = append(items, SidebarTitleStyle.Render("  漢字 Cam  "))
	items = append(items, "")

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Icon + " " + item.Label

		var style lipgloss.Style
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				// Indicate current view but not focused
				style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
			}
		} else {
			style = SidebarItemStyle
		}
		items = append(items, style.Render(label))
	}

	usedHeight := len(items) + 5
	for i := 0; i < m.height-usedHeight-2; i++ {
		items = append(items, "")
	}
	items = append(items, SidebarHelpStyle.Render("? Help  q Quit"))

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 3).
		Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(ColorText)

	line := func(k, desc string) string {
		return keyStyle.Render(k) + descStyle.Render(desc) + "\n"
	}

	helpText := titleStyle.Render("hanzicam") + "\n\n"

	helpText += sectionStyle.Render("Global Keys") + "\n"
	helpText += line("1-2", "Switch views")
	helpText += line("tab", "Toggle sidebar focus")
	helpText += line("?", "Show this help")
	helpText += line("q", "Quit")

	helpText += sectionStyle.Render("Capture View") + "\n"
	helpText += line("i or /", "Enter an image path")
	helpText += line("enter", "Capture the image")
	helpText += line("r", "Capture it again")
	helpText += line("←/→", "Navigate characters")
	helpText += line("s", "Speak selected character")
	helpText += line("y", "Copy annotated text")

	helpText += sectionStyle.Render("History View") + "\n"
	helpText += line("j/k ↑/↓", "Navigate entries")
	helpText += line("enter", "Open in capture view")
	helpText += line("D", "Clear history")

	helpText += "\n" + lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		Render("Press any key to close")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSecondary).
		Padding(1, 2).
		Width(50)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(helpText))
}
