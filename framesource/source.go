// Package framesource defines where body frames come from and translates hardware timestamps
// onto the wall clock.
package framesource

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/jenourish/bodytrack/tracking"
)

// ErrNoFrame is returned by NextFrame when the device has nothing new since the last call.
var ErrNoFrame = errors.New("no new frame available")

// A Source produces body frames. NextFrame may block until ctx is done; it returns ErrNoFrame
// when polled between hardware frames and io.EOF once a finite source is exhausted.
type Source interface {
	NextFrame(ctx context.Context) (tracking.Frame, error)
	Close(ctx context.Context) error
}

// TicksPerMicrosecond is the resolution of Kinect relative timestamps, which count 100ns ticks.
const TicksPerMicrosecond = 10

// ClockTranslator maps hardware relative timestamps onto wall-clock time. The first translated
// timestamp is pinned to the clock's time at that moment; later ones advance by the hardware
// delta.
type ClockTranslator struct {
	clock clock.Clock

	mu        sync.Mutex
	anchored  bool
	wallStart time.Time
	tickStart int64
	last      time.Time
	floor     time.Time
}

// NewClockTranslator returns a translator reading wall time from clk.
func NewClockTranslator(clk clock.Clock) *ClockTranslator {
	if clk == nil {
		clk = clock.New()
	}
	return &ClockTranslator{clock: clk}
}

// Translate converts a hardware timestamp in 100ns ticks to wall-clock time.
func (ct *ClockTranslator) Translate(ticks int64) time.Time {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if !ct.anchored {
		ct.anchored = true
		ct.wallStart = ct.clock.Now()
		if ct.wallStart.Before(ct.floor) {
			ct.wallStart = ct.floor
		}
		ct.tickStart = ticks
	}
	ct.last = ct.wallStart.Add(TicksToDuration(ticks - ct.tickStart))
	return ct.last
}

// Continue starts a new tick sequence. Its first timestamp is pinned to the clock, but never
// earlier than step after the last one translated.
func (ct *ClockTranslator) Continue(step time.Duration) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.anchored = false
	if !ct.last.IsZero() {
		ct.floor = ct.last.Add(step)
	}
}

// TicksToDuration converts a span of 100ns hardware ticks to a duration, truncated to the
// microsecond.
func TicksToDuration(ticks int64) time.Duration {
	return time.Duration(ticks/TicksPerMicrosecond) * time.Microsecond
}
