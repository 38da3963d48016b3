// Package fake provides a scripted frame source for tests and demos.
package fake

import (
	"context"
	"io"
	"math"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/jenourish/bodytrack/framesource"
	"github.com/jenourish/bodytrack/tracking"
)

// Source serves a fixed list of frames. Frames without a time are stamped from the clock when
// served.
type Source struct {
	clock clock.Clock
	loop  bool

	mu     sync.Mutex
	frames []tracking.Frame
	next   int
	closed bool
}

var _ framesource.Source = (*Source)(nil)

// NewSource returns a source serving frames in order. When loop is false it returns io.EOF after
// the last frame.
func NewSource(clk clock.Clock, frames []tracking.Frame, loop bool) *Source {
	if clk == nil {
		clk = clock.New()
	}
	return &Source{clock: clk, frames: frames, loop: loop}
}

// NextFrame returns the next scripted frame.
func (s *Source) NextFrame(ctx context.Context) (tracking.Frame, error) {
	if err := ctx.Err(); err != nil {
		return tracking.Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return tracking.Frame{}, errors.New("source is closed")
	}
	if s.next >= len(s.frames) {
		if !s.loop || len(s.frames) == 0 {
			return tracking.Frame{}, io.EOF
		}
		s.next = 0
	}
	frame := s.frames[s.next]
	s.next++
	if frame.Time.IsZero() {
		frame.Time = s.clock.Now()
	}
	return frame, nil
}

// Served returns how many frames have been handed out since the last loop.
func (s *Source) Served() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Close stops the source.
func (s *Source) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Stable ids of the people in a Scene.
const (
	WalkerID  = 72057594037928001
	StanderID = 72057594037928002
)

// Scene scripts n frames of two people for family f: a walker crossing the play space in slot 1
// for the first 60% of the frames, and a stander in slot 4 who is present from 30% to 50% of the
// frames, steps out, and comes back at 70%. The walker's hands cycle through open, closed and
// lasso.
func Scene(f tracking.Family, n int) []tracking.Frame {
	frames := make([]tracking.Frame, n)
	walkerSlot, standerSlot := 1, 4
	if f.CandidateCount <= standerSlot {
		standerSlot = f.CandidateCount - 1
		walkerSlot = 0
	}
	for i := range frames {
		cands := make([]tracking.Candidate, f.CandidateCount)
		for slot := range cands {
			cands[slot] = tracking.Candidate{Slot: slot}
		}
		progress := float64(i) / float64(n)
		if i >= n/30 && progress < 0.6 {
			head := r3.Vector{X: -1 + 2*progress/0.6, Y: 0.4, Z: 2.5}
			hand := []tracking.HandState{tracking.HandOpen, tracking.HandClosed, tracking.HandLasso}[(i/30)%3]
			cands[walkerSlot] = Person(f, walkerSlot, WalkerID, head, hand)
		}
		standing := (progress >= 0.3 && progress < 0.5) || progress >= 0.7
		if standing && walkerSlot != standerSlot {
			cands[standerSlot] = Person(f, standerSlot, StanderID, r3.Vector{X: 1.5, Y: 0.3, Z: 3.5}, tracking.HandNotTracked)
		}
		frames[i].Candidates = cands
	}
	return frames
}

// Person builds a tracked body standing upright with its anchor joint at head. Joints hang below
// the anchor in table order, facing the sensor.
func Person(f tracking.Family, slot int, id uint64, head r3.Vector, hands tracking.HandState) tracking.Candidate {
	facing := quat.Number{Real: math.Cos(math.Pi / 2), Jmag: math.Sin(math.Pi / 2)}
	joints := make([]tracking.JointSample, len(f.Joints))
	for j := range joints {
		drop := 0.06 * float64(j-f.AnchorJoint)
		if drop < 0 {
			drop = -drop
		}
		joints[j] = tracking.JointSample{
			Position:    head.Sub(r3.Vector{Y: drop}),
			Orientation: facing,
			Confidence:  tracking.Tracked,
		}
	}
	cand := tracking.Candidate{
		Slot:              slot,
		StableID:          id,
		Tracked:           true,
		ReferencePosition: head,
		Joints:            joints,
	}
	if f.Gestures {
		cand.LeftHand, cand.RightHand = hands, hands
	}
	return cand
}
