package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/hanzicam/internal/session"
)

// Notifier forwards session notifications into the bubbletea event loop.
type Notifier struct {
	ch chan session.Notification
}

// NewNotifier creates a notifier. Pass it to session.NewController and to NewApp.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan session.Notification, 16)}
}

// Notify implements session.Notifier.
func (n *Notifier) Notify(note session.Notification) {
	n.ch <- note
}

type noteMsg session.Notification

// listen waits for the next notification.
func (n *Notifier) listen() tea.Cmd {
	return func() tea.Msg {
		return noteMsg(<-n.ch)
	}
}
