package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/f3rmion/hanzicam/internal/frame"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/throttle"
	"github.com/jonboulle/clockwork"
)

// LiveConfig configures a LiveScanner.
type LiveConfig struct {
	// MinInterval is the least time between two scans.
	MinInterval time.Duration
	// PollInterval is how often the scanner checks whether it may scan.
	PollInterval time.Duration
	Frame        frame.Options
}

// LiveScanner periodically snapshots a frame source and captures it through
// its own Controller. At most one scan is outstanding at a time; ticks that
// arrive meanwhile are skipped.
type LiveScanner struct {
	ctrl  *Controller
	gate  *throttle.Gate
	clock clockwork.Clock
	log   *slog.Logger
	poll  time.Duration
	opts  frame.Options

	mu     sync.Mutex
	src    frame.Source
	srcGen uint64

	wg  sync.WaitGroup
	out chan Outcome
}

// NewLiveScanner creates a scanner reading from src. The controller must not
// be shared with manual captures.
func NewLiveScanner(ctrl *Controller, src frame.Source, cfg LiveConfig) (*LiveScanner, error) {
	if cfg.PollInterval <= 0 {
		return nil, hanzi.InvalidConfigf("scan.poll_interval", "must be positive, got %s", cfg.PollInterval)
	}
	if err := cfg.Frame.Validate(); err != nil {
		return nil, err
	}
	gate, err := throttle.NewGate(cfg.MinInterval, ctrl.clock)
	if err != nil {
		return nil, err
	}

	return &LiveScanner{
		ctrl:  ctrl,
		gate:  gate,
		clock: ctrl.clock,
		log:   ctrl.log,
		poll:  cfg.PollInterval,
		opts:  cfg.Frame,
		src:   src,
		out:   make(chan Outcome, 1),
	}, nil
}

// Outcomes delivers scan outcomes in the order their scans started. It is
// closed when Run returns.
func (l *LiveScanner) Outcomes() <-chan Outcome {
	return l.out
}

// Stats reports throttle decisions so far.
func (l *LiveScanner) Stats() throttle.Stats {
	return l.gate.Stats()
}

// Run scans until ctx is done. On return the outstanding scan is abandoned
// and Outcomes is closed.
func (l *LiveScanner) Run(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.poll)
	defer func() {
		ticker.Stop()
		l.ctrl.Close()
		l.gate.Reset()
		l.wg.Wait()
		close(l.out)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			l.tick(ctx)
		}
	}
}

// SwitchSource continues scanning from src. The outstanding scan, if any,
// is abandoned and its outcome discarded.
func (l *LiveScanner) SwitchSource(src frame.Source) {
	l.mu.Lock()
	l.src = src
	l.srcGen++
	l.mu.Unlock()

	l.ctrl.Reset()
	l.gate.Reset()
	l.log.Debug("live source switched")
}

func (l *LiveScanner) tick(ctx context.Context) {
	ticket, ok := l.gate.TryAcquire()
	if !ok {
		l.log.Debug("live scan skipped", slog.Bool("in_flight", l.gate.InFlight()))
		return
	}

	l.mu.Lock()
	src, gen := l.src, l.srcGen
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.gate.Release(ticket)

		out, ok := l.scan(ctx, src, gen)
		if !ok {
			return
		}
		select {
		case l.out <- out:
		case <-ctx.Done():
		}
	}()
}

func (l *LiveScanner) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.srcGen == gen
}

func (l *LiveScanner) scan(ctx context.Context, src frame.Source, gen uint64) (Outcome, bool) {
	img, err := src.Snapshot(ctx, l.opts)
	if err != nil {
		if errors.Is(err, frame.ErrNoFrame) || ctx.Err() != nil {
			l.log.Debug("no frame to scan", slog.Any("error", err))
		} else {
			l.log.Warn("frame snapshot failed", slog.Any("error", err))
		}
		return Outcome{}, false
	}
	// The generation is checked again under the controller lock, so a
	// SwitchSource racing with this call either wins before the capture
	// starts or abandons it through Reset.
	out, err := l.ctrl.capture(ctx, img, func() bool { return l.current(gen) })
	if err != nil {
		l.log.Debug("live capture dropped", slog.Any("error", err))
		return Outcome{}, false
	}
	return out, true
}
