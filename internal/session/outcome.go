// Package session runs captures against the recognition service and turns
// their results into outcomes, history entries and notifications.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/f3rmion/hanzicam/internal/hanzi"
)

// State of a capture channel.
type State int

const (
	Idle State = iota
	InFlight
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Kind classifies a finished capture.
type Kind int

const (
	// Found means at least one character was recognized.
	Found Kind = iota
	// Nothing means the service answered but saw no characters.
	Nothing
	// Failed means the service errored, timed out or answered garbage.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case Nothing:
		return "nothing"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the terminal result of one capture.
type Outcome struct {
	Kind   Kind
	Result hanzi.RecognitionResult
	// Entry is the history entry written for a Found outcome.
	Entry *hanzi.HistoryEntry
	// Err is the *hanzi.RecognitionError of a Failed outcome.
	Err error
	// HistoryErr is set when a Found result could not be recorded.
	HistoryErr error
	Elapsed    time.Duration
}

// Cause returns the human readable failure cause, if any.
func (o Outcome) Cause() string {
	var recErr *hanzi.RecognitionError
	if errors.As(o.Err, &recErr) {
		return recErr.Cause
	}
	if o.Err != nil {
		return o.Err.Error()
	}
	return ""
}

// Level of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a user-facing message.
type Notification struct {
	Level  Level
	Text   string
	Detail string
}

func (n Notification) String() string {
	if n.Detail == "" {
		return n.Text
	}
	return n.Text + " (" + n.Detail + ")"
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Notification builds the single message shown for o.
func (o Outcome) Notification() Notification {
	switch o.Kind {
	case Found:
		n := len(o.Result.Characters)
		text := fmt.Sprintf("Found %d Chinese character", n)
		if n != 1 {
			text += "s"
		}
		note := Notification{Level: LevelSuccess, Text: text}
		if o.HistoryErr != nil {
			note.Detail = "not saved to history"
		}
		return note
	case Nothing:
		return Notification{Level: LevelInfo, Text: "No Chinese characters detected in the image"}
	default:
		return Notification{Level: LevelError, Text: "Failed to process image. Please try again.", Detail: o.Cause()}
	}
}
