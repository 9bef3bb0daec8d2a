package views

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCapture executes cmd and returns the CaptureDoneMsg it produces.
func runCapture(t *testing.T, cmd tea.Cmd) CaptureDoneMsg {
	t.Helper()
	require.NotNil(t, cmd)

	msg := cmd()
	if done, ok := msg.(CaptureDoneMsg); ok {
		return done
	}
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok, "unexpected message %T", msg)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if done, ok := c().(CaptureDoneMsg); ok {
			return done
		}
	}
	t.Fatal("no CaptureDoneMsg in batch")
	return CaptureDoneMsg{}
}

var nihao = hanzi.RecognitionResult{
	Characters: []hanzi.RecognizedCharacter{
		hanzi.NewCharacter("你", "nǐ").WithMeaning("you"),
		hanzi.NewCharacter("好", "hǎo").WithMeaning("good"),
	},
	Translation: hanzi.Ptr("hello"),
}

func newCapture(t *testing.T, out session.Outcome, err error) (CaptureModel, *[]string) {
	t.Helper()
	var paths []string
	m := NewCaptureModel(func(_ context.Context, path string) (session.Outcome, error) {
		paths = append(paths, path)
		return out, err
	}, nil, nil, 4)
	m.SetSize(80, 40)
	return m, &paths
}

func TestCapture_EnterStartsCapture(t *testing.T) {
	t.Parallel()

	m, paths := newCapture(t, session.Outcome{Kind: session.Found, Result: nihao}, nil)
	m.input.SetValue("  photo.jpg ")
	require.True(t, m.Typing())

	m, cmd := m.Update(key("enter"))
	assert.True(t, m.Busy())
	assert.False(t, m.Typing())

	done := runCapture(t, cmd)
	assert.Equal(t, []string{"photo.jpg"}, *paths)
	assert.Equal(t, "photo.jpg", done.Path)

	m, cmd = m.Update(done)
	assert.False(t, m.Busy())
	require.NotNil(t, cmd)
	assert.IsType(t, HistoryChangedMsg{}, cmd())

	view := m.View()
	assert.Contains(t, view, "你")
	assert.Contains(t, view, "Translation: hello")
	assert.Contains(t, view, "you")
}

func TestCapture_EmptyPathIgnored(t *testing.T) {
	t.Parallel()

	m, paths := newCapture(t, session.Outcome{}, nil)
	m, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.False(t, m.Busy())
	assert.Empty(t, *paths)
}

func TestCapture_NavigationWraps(t *testing.T) {
	t.Parallel()

	m, _ := newCapture(t, session.Outcome{}, nil)
	m, _ = m.Update(ReplayMsg{Entry: hanzi.HistoryEntry{Results: nihao.Characters}})
	require.False(t, m.Typing())

	m, _ = m.Update(key("right"))
	assert.Equal(t, 1, m.selected)
	m, _ = m.Update(key("l"))
	assert.Equal(t, 0, m.selected)
	m, _ = m.Update(key("left"))
	assert.Equal(t, 1, m.selected)
	m, _ = m.Update(key("h"))
	assert.Equal(t, 0, m.selected)
}

func TestCapture_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome session.Outcome
		err     error
		busy    bool
		want    string
	}{
		{name: "nothing", outcome: session.Outcome{Kind: session.Nothing}, want: "No Chinese characters detected"},
		{name: "busy", err: hanzi.ErrBusy, busy: true, want: "a capture is already in progress"},
		{name: "invalid frame", err: hanzi.ErrInvalidFrame, want: "invalid frame"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, _ := newCapture(t, tt.outcome, tt.err)
			m.input.SetValue("a.png")
			m, cmd := m.Update(key("enter"))
			m, _ = m.Update(runCapture(t, cmd))

			assert.Equal(t, tt.busy, m.Busy())
			assert.Contains(t, m.View(), tt.want)
		})
	}
}

func TestCapture_FailureLeavesReportingToNotifications(t *testing.T) {
	t.Parallel()

	failed := session.Outcome{
		Kind: session.Failed,
		Err:  hanzi.NewRecognitionError("timed out", context.DeadlineExceeded),
	}
	m, _ := newCapture(t, failed, nil)
	m.input.SetValue("a.png")
	m, cmd := m.Update(key("enter"))
	m, cmd = m.Update(runCapture(t, cmd))

	assert.Nil(t, cmd)
	assert.False(t, m.Busy())
	assert.NoError(t, m.err)
	assert.NotContains(t, m.View(), "timed out")
	assert.NotContains(t, m.View(), "Failed")
}

func TestCapture_EnterWhileBrowsingCapturesInput(t *testing.T) {
	t.Parallel()

	m, paths := newCapture(t, session.Outcome{Kind: session.Nothing}, nil)
	m.input.Blur()
	m.input.SetValue(" b.png")

	m, cmd := m.Update(key("enter"))
	assert.True(t, m.Busy())
	runCapture(t, cmd)
	assert.Equal(t, []string{"b.png"}, *paths)
}

func TestCapture_Recapture(t *testing.T) {
	t.Parallel()

	m, paths := newCapture(t, session.Outcome{Kind: session.Nothing}, nil)
	m.input.Blur()

	m, cmd := m.Update(key("r"))
	assert.Nil(t, cmd, "nothing to recapture yet")

	m.input.SetValue("a.png")
	m, cmd = m.Update(key("enter"))
	m, _ = m.Update(runCapture(t, cmd))

	_, cmd = m.Update(key("r"))
	runCapture(t, cmd)
	assert.Equal(t, []string{"a.png", "a.png"}, *paths)
}

func TestCapture_FocusKeys(t *testing.T) {
	t.Parallel()

	m, _ := newCapture(t, session.Outcome{}, nil)
	m.input.Blur()
	require.False(t, m.Typing())

	m, _ = m.Update(key("i"))
	assert.True(t, m.Typing())

	// Keys go to the input while typing.
	m, _ = m.Update(key("r"))
	assert.Equal(t, "r", m.input.Value())
	assert.False(t, m.Busy())
}

func TestCapture_Replay(t *testing.T) {
	t.Parallel()

	m, _ := newCapture(t, session.Outcome{}, nil)
	entry := hanzi.HistoryEntry{
		Results:   nihao.Characters,
		Timestamp: time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC),
	}
	m, cmd := m.Update(ReplayMsg{Entry: entry})
	assert.Nil(t, cmd)
	assert.Contains(t, m.source, "history")
	assert.Len(t, m.groups, 1)
	assert.NotContains(t, m.View(), "Translation:")
}

func TestCapture_ReplayRegroupsLongEntries(t *testing.T) {
	t.Parallel()

	var chars []hanzi.RecognizedCharacter
	for i := 0; i < 9; i++ {
		chars = append(chars, hanzi.NewCharacter("字", "zì"))
	}
	m, _ := newCapture(t, session.Outcome{}, nil)
	m, _ = m.Update(ReplayMsg{Entry: hanzi.HistoryEntry{Results: chars}})
	assert.Len(t, m.groups, 3)
	assert.NoError(t, m.err)
}

func TestCapture_SpeakSelected(t *testing.T) {
	t.Parallel()

	var spoken []string
	m, _ := newCapture(t, session.Outcome{}, nil)
	m.speak = func(text string) error {
		spoken = append(spoken, text)
		return errors.New("no text-to-speech tool found")
	}

	m.input.Blur()
	m, cmd := m.Update(key("s"))
	assert.Nil(t, cmd, "nothing to speak yet")

	m, _ = m.Update(ReplayMsg{Entry: hanzi.HistoryEntry{Results: nihao.Characters}})
	m, _ = m.Update(key("right"))
	m, cmd = m.Update(key("s"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Equal(t, []string{"好"}, spoken)
	assert.Contains(t, m.View(), "no text-to-speech tool found")
}
