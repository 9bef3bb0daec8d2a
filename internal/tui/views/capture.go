package views

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/hanzicam/internal/annotate"
	"github.com/f3rmion/hanzicam/internal/clipboard"
	"github.com/f3rmion/hanzicam/internal/dictionary"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/pinyin"
	"github.com/f3rmion/hanzicam/internal/session"
	"github.com/f3rmion/hanzicam/internal/speech"
	"github.com/f3rmion/hanzicam/internal/tui/bigchar"
	"github.com/f3rmion/hanzicam/internal/tui/components"
)

// CaptureFunc snapshots the image at path and runs it through a capture.
type CaptureFunc func(ctx context.Context, path string) (session.Outcome, error)

// CaptureModel lets the user capture an image file and inspect the result.
type CaptureModel struct {
	input     textinput.Model
	spinner   spinner.Model
	capture   CaptureFunc
	speak     func(text string) error
	dict      *dictionary.Dictionary
	glyphs    *bigchar.Renderer
	groupSize int

	result   hanzi.RecognitionResult
	groups   []annotate.Group
	selected int
	source   string // path or "history" label of what is shown
	lastPath string

	busy   bool
	err    error
	copied bool

	width  int
	height int
}

// NewCaptureModel creates the capture view.
func NewCaptureModel(capture CaptureFunc, dict *dictionary.Dictionary, glyphs *bigchar.Renderer, groupSize int) CaptureModel {
	ti := textinput.New()
	ti.Placeholder = "Path to a photo of Chinese text..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 50
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ecdc4"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffe66d"))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	return CaptureModel{
		input:     ti,
		spinner:   sp,
		capture:   capture,
		speak:     speech.Speak,
		dict:      dict,
		glyphs:    glyphs,
		groupSize: groupSize,
	}
}

// SetSize updates the view dimensions.
func (m *CaptureModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-4, 10)
}

// Typing reports whether key presses go to the path input.
func (m CaptureModel) Typing() bool {
	return m.input.Focused()
}

// Busy reports whether a capture is running.
func (m CaptureModel) Busy() bool {
	return m.busy
}

// Update handles messages.
func (m CaptureModel) Update(msg tea.Msg) (CaptureModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			switch msg.String() {
			case "enter":
				return m.start(strings.TrimSpace(m.input.Value()))
			case "esc":
				m.input.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		n := len(annotate.Flatten(m.groups))
		switch msg.String() {
		case "i", "/":
			cmd := m.input.Focus()
			return m, cmd
		case "enter":
			return m.start(strings.TrimSpace(m.input.Value()))
		case "r":
			return m.start(m.lastPath)
		case "left", "h":
			if n > 0 {
				m.selected = (m.selected - 1 + n) % n
			}
		case "right", "l":
			if n > 0 {
				m.selected = (m.selected + 1) % n
			}
		case "s":
			if n > 0 {
				char, speak := annotate.Flatten(m.groups)[m.selected].Character, m.speak
				return m, func() tea.Msg { return spokenMsg{err: speak(char)} }
			}
		case "y":
			if n > 0 {
				if err := clipboard.Write(annotate.Render(m.groups, m.result.Translation)); err != nil {
					m.err = err
					return m, nil
				}
				m.copied = true
				return m, clearCopiedAfter(2 * time.Second)
			}
		}
		return m, nil

	case CaptureDoneMsg:
		if errors.Is(msg.Err, hanzi.ErrBusy) {
			m.err = errors.New("a capture is already in progress")
			return m, nil
		}
		m.busy = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		// Failed outcomes are shown by the notification bar only.
		switch msg.Outcome.Kind {
		case session.Found:
			m.show(msg.Outcome.Result, msg.Path)
			return m, historyChanged
		case session.Nothing:
			m.show(hanzi.RecognitionResult{}, msg.Path)
		}
		return m, nil

	case ReplayMsg:
		m.show(msg.Entry.Result(), "history "+msg.Entry.Timestamp.Local().Format("Jan 2 15:04"))
		m.input.Blur()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case spokenMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case clearCopiedMsg:
		m.copied = false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m CaptureModel) start(path string) (CaptureModel, tea.Cmd) {
	if path == "" {
		return m, nil
	}
	m.lastPath = path
	m.err = nil
	m.input.Blur()

	capture := m.capture
	cmd := func() tea.Msg {
		out, err := capture(context.Background(), path)
		return CaptureDoneMsg{Path: path, Outcome: out, Err: err}
	}
	if m.busy {
		return m, cmd
	}
	m.busy = true
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m *CaptureModel) show(result hanzi.RecognitionResult, source string) {
	groups, err := annotate.Split(result.Characters, m.groupSize)
	if err != nil {
		m.err = err
		return
	}
	m.result = result
	m.groups = groups
	m.selected = 0
	m.source = source
}

// View renders the capture view.
func (m CaptureModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("拍 Capture"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.busy {
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + loadingStyle.Render(" Recognizing characters..."))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	chars := annotate.Flatten(m.groups)
	if m.source != "" {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(m.source))
		b.WriteString("\n\n")
		if len(chars) == 0 {
			b.WriteString(mutedStyle.Render("No Chinese characters detected"))
			b.WriteString("\n")
		} else {
			b.WriteString(components.Groups(m.groups, m.selected))
			b.WriteString("\n")
			if m.result.Translation != nil {
				b.WriteString(translationStyle.Render("Translation: " + *m.result.Translation))
				b.WriteString("\n")
			}
			b.WriteString("\n")
			b.WriteString(m.renderDetail(chars[m.selected]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp(len(chars)))
	return b.String()
}

func (m CaptureModel) renderDetail(c hanzi.RecognizedCharacter) string {
	var rows []string
	rows = append(rows, m.renderRow("Character", c.Character))
	if c.Pinyin != "" {
		rows = append(rows, m.renderRow("Pinyin", components.Pinyin(c.Pinyin)+mutedStyle.Render(" ("+pinyin.Numbered(c.Pinyin)+")")))
	} else {
		rows = append(rows, m.renderRow("Pinyin", components.Pinyin("")))
	}
	rows = append(rows, m.renderRow("Meaning", c.MeaningOr("-")))

	if e := m.dict.Lookup(c.Character); e != nil {
		if e.Definition != "" {
			rows = append(rows, m.renderRow("Dictionary", e.Definition))
		}
		rows = append(rows, m.renderRow("Structure", dictionary.FormatDecomposition(e.Decomposition)))
		if e.Etymology != nil && e.Etymology.Hint != "" {
			rows = append(rows, m.renderRow("Etymology", e.Etymology.Hint))
		}
	}
	info := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	glyph := m.glyphs.Render(c.Character, 24, 12)
	if glyph == "" {
		return info
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, bigCharStyle.Render(glyph), "  ", info)
}

func (m CaptureModel) renderRow(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func (m CaptureModel) renderHelp(n int) string {
	if m.input.Focused() {
		return helpStyle.Render("enter: capture • esc: done typing • tab: menu")
	}
	parts := []string{"i: new path", "enter: capture path"}
	if m.lastPath != "" {
		parts = append(parts, "r: capture again")
	}
	if n > 1 {
		parts = append(parts, "←/→: navigate")
	}
	if n > 0 {
		parts = append(parts, "s: speak", "y: copy")
	}
	help := helpStyle.Render(strings.Join(parts, " • "))
	if m.copied {
		help += "  " + copiedStyle.Render("Copied!")
	}
	return help
}
