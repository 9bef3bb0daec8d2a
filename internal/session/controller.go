package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/f3rmion/hanzicam/internal/frame"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/jonboulle/clockwork"
)

// ErrClosed is returned by Capture after Close.
var ErrClosed = errors.New("session closed")

// History records successful results. *history.Store implements it.
type History interface {
	Append(result hanzi.RecognitionResult) (hanzi.HistoryEntry, error)
	Clear() error
}

// Controller runs one capture at a time. A capture requested while another
// is outstanding is rejected with hanzi.ErrBusy. Every capture that reaches
// the service ends in exactly one notification, unless it was abandoned by
// Reset or Close, in which case nothing is recorded or shown.
type Controller struct {
	recognizer hanzi.Recognizer
	history    History
	notifier   Notifier
	clock      clockwork.Clock
	log        *slog.Logger
	timeout    time.Duration

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used to time captures.
func WithClock(c clockwork.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) { ctl.log = l }
}

// WithTimeout bounds each recognition call. Zero means no bound beyond the
// recognizer's own.
func WithTimeout(d time.Duration) Option {
	return func(ctl *Controller) { ctl.timeout = d }
}

// NewController creates a controller. A nil notifier drops notifications.
func NewController(rec hanzi.Recognizer, hist History, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		recognizer: rec,
		history:    hist,
		notifier:   notifier,
		clock:      clockwork.NewRealClock(),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = NotifierFunc(func(Notification) {})
	}
	return c
}

// State reports whether a capture is outstanding.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Capture sends img to the recognizer and waits for the outcome.
//
// The returned error is non-nil only when the capture did not run to an
// outcome: hanzi.ErrInvalidFrame for unusable input, hanzi.ErrBusy while
// another capture is outstanding, hanzi.ErrStale when it was abandoned by
// Reset, Close or ctx. Service failures are reported as a Failed outcome.
func (c *Controller) Capture(ctx context.Context, img hanzi.Image) (Outcome, error) {
	return c.capture(ctx, img, nil)
}

// capture runs a capture if current, checked under the controller lock,
// still holds. A false current makes the capture stale before it starts.
func (c *Controller) capture(ctx context.Context, img hanzi.Image, current func() bool) (Outcome, error) {
	checked, err := frame.Inspect(img.Data)
	if err != nil {
		return Outcome{}, err
	}
	if img.MediaType == "" {
		img.MediaType = checked.MediaType
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	if c.state == InFlight {
		c.mu.Unlock()
		return Outcome{}, hanzi.ErrBusy
	}
	if current != nil && !current() {
		c.mu.Unlock()
		c.log.Debug("stale capture discarded")
		return Outcome{}, hanzi.ErrStale
	}
	c.gen++
	gen := c.gen
	var callCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	c.state = InFlight
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	start := c.clock.Now()
	c.log.Debug("capture started", slog.Int("bytes", len(img.Data)), slog.String("media_type", img.MediaType))

	result, recErr := c.recognizer.Recognize(callCtx, img)

	c.mu.Lock()
	if c.gen != gen || ctx.Err() != nil {
		if c.gen == gen {
			c.state = Idle
			c.cancel = nil
		}
		c.mu.Unlock()
		c.log.Debug("stale capture discarded")
		if err := ctx.Err(); err != nil {
			return Outcome{}, fmt.Errorf("%w: %w", hanzi.ErrStale, err)
		}
		return Outcome{}, hanzi.ErrStale
	}

	out := Outcome{Result: result}
	switch {
	case recErr != nil:
		out.Kind = Failed
		out.Result = hanzi.RecognitionResult{}
		out.Err = asRecognitionError(callCtx, recErr)
	case result.Empty():
		out.Kind = Nothing
	default:
		out.Kind = Found
		entry, err := c.history.Append(result)
		if err != nil {
			out.HistoryErr = err
		} else {
			out.Entry = &entry
		}
	}
	out.Elapsed = c.clock.Since(start)
	c.state = Idle
	c.cancel = nil
	c.mu.Unlock()

	c.report(out)
	c.notifier.Notify(out.Notification())
	return out, nil
}

// Reset abandons the outstanding capture, if any. Its response will be
// discarded when it arrives.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandon()
}

// Close abandons the outstanding capture and rejects further ones.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandon()
	c.closed = true
}

func (c *Controller) abandon() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Idle
}

// ClearHistory removes all history entries and announces it.
func (c *Controller) ClearHistory() error {
	return ClearHistory(c.history, c.notifier)
}

// ClearHistory empties hist and sends the single "History cleared"
// notification. A nil notifier skips the announcement.
func ClearHistory(hist History, notifier Notifier) error {
	if err := hist.Clear(); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	if notifier != nil {
		notifier.Notify(Notification{Level: LevelSuccess, Text: "History cleared"})
	}
	return nil
}

func (c *Controller) report(out Outcome) {
	attrs := []any{
		slog.String("outcome", out.Kind.String()),
		slog.Int("characters", len(out.Result.Characters)),
		slog.Duration("elapsed", out.Elapsed),
	}
	switch {
	case out.Kind == Failed:
		c.log.Warn("capture failed", append(attrs, slog.Any("error", out.Err))...)
	case out.HistoryErr != nil:
		c.log.Error("capture not recorded", append(attrs, slog.Any("error", out.HistoryErr))...)
	default:
		c.log.Info("capture finished", attrs...)
	}
}

func asRecognitionError(callCtx context.Context, err error) error {
	var recErr *hanzi.RecognitionError
	if errors.As(err, &recErr) {
		return err
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return hanzi.NewRecognitionError("timed out", err)
	}
	return hanzi.NewRecognitionError("service error", err)
}
