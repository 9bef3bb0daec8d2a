// Package throttle rate-limits automatic recognition requests.
package throttle

import (
	"sync"
	"time"

	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/jonboulle/clockwork"
)

// ShouldScan reports whether an automatic scan may start at now.
// It is false while a request is in flight or until minInterval has passed
// since lastScan.
func ShouldScan(now, lastScan time.Time, minInterval time.Duration, inFlight bool) bool {
	return !inFlight && now.Sub(lastScan) >= minInterval
}

// Ticket identifies one accepted scan. A ticket issued before Reset no longer
// releases the gate.
type Ticket uint64

// Stats counts gate decisions.
type Stats struct {
	Accepted uint64
	Rejected uint64
}

// Gate holds the in-flight flag and last scan time for one live-scan channel.
// Checks made while a scan is outstanding are rejected, never queued.
type Gate struct {
	clock       clockwork.Clock
	minInterval time.Duration

	mu       sync.Mutex
	inFlight bool
	lastScan time.Time
	ticket   Ticket
	stats    Stats
}

// NewGate creates a gate enforcing minInterval between accepted scans.
func NewGate(minInterval time.Duration, clock clockwork.Clock) (*Gate, error) {
	if minInterval <= 0 {
		return nil, hanzi.InvalidConfigf("scan.min_interval", "must be positive, got %s", minInterval)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Gate{clock: clock, minInterval: minInterval}, nil
}

// TryAcquire marks a scan as started if ShouldScan allows it.
func (g *Gate) TryAcquire() (Ticket, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if !ShouldScan(now, g.lastScan, g.minInterval, g.inFlight) {
		g.stats.Rejected++
		return 0, false
	}

	g.ticket++
	g.inFlight = true
	g.lastScan = now
	g.stats.Accepted++
	return g.ticket, true
}

// Release clears the in-flight flag for t, whether the scan succeeded or not.
// Releasing a ticket from before the last Reset is a no-op.
func (g *Gate) Release(t Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if t == g.ticket {
		g.inFlight = false
	}
}

// Reset abandons the outstanding scan, if any. Its ticket becomes stale.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ticket++
	g.inFlight = false
}

// InFlight reports whether a scan is outstanding.
func (g *Gate) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// LastScan returns when the last scan was accepted.
func (g *Gate) LastScan() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastScan
}

// Stats returns a snapshot of the gate counters.
func (g *Gate) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}
