package tracking

import (
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"github.com/jenourish/bodytrack/logging"
)

const (
	// DefaultMaxPlayspaceDistance approximates the sensor's maximum effective range.
	DefaultMaxPlayspaceDistance = 7.0
	// DefaultTimeDecay is how long tracking must be lost before elapsed time alone adds a full
	// point of confidence.
	DefaultTimeDecay = 5 * time.Second
	// DefaultCommitThreshold is the score a candidate must strictly exceed to be committed.
	DefaultCommitThreshold = 0.75

	noSlot = -1
)

// ScoringConfig tunes re-acquisition scoring.
type ScoringConfig struct {
	MaxPlayspaceDistance float64
	TimeDecay            time.Duration
	CommitThreshold      float64
}

// DefaultScoringConfig returns the scoring constants tuned for Kinect-class sensors.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		MaxPlayspaceDistance: DefaultMaxPlayspaceDistance,
		TimeDecay:            DefaultTimeDecay,
		CommitThreshold:      DefaultCommitThreshold,
	}
}

// Score blends proximity to the last known tracked position with the time since tracking was
// last held. The result is unbounded above: after a long enough gap any body qualifies.
func (cfg ScoringConfig) Score(position, lastKnown r3.Vector, now, lastKnownTime time.Time) float64 {
	distanceConfidence := 1 - position.Distance(lastKnown)/cfg.MaxPlayspaceDistance
	timeConfidence := now.Sub(lastKnownTime).Seconds() / cfg.TimeDecay.Seconds()
	return distanceConfidence + timeConfidence
}

// session is the committed identity. slot is noSlot while nothing is committed; the last known
// fields outlive the commitment to seed re-acquisition.
type session struct {
	id       uuid.UUID
	slot     int
	stableID uint64
	since    time.Time

	lastKnownPosition r3.Vector
	lastKnownTime     time.Time

	// needsOffset is true until the first frame of the session is emitted.
	needsOffset bool
}

func (s *session) committed() bool {
	return s.slot != noSlot
}

// classification reports what one classify pass did.
type classification struct {
	kept       bool
	committed  bool
	released   bool
	overridden bool
	moved      bool

	// ignoredOverride is the requested slot when it held no tracked body, noSlot otherwise.
	ignoredOverride int

	// scores holds each participating slot's score; scored is false for the rest.
	scores []float64
	scored []bool
	best   int
}

// classifier updates the per-slot states and the session for one frame.
type classifier struct {
	cfg    ScoringConfig
	logger logging.Logger
}

func (c *classifier) classify(
	now time.Time,
	bySlot []*Candidate,
	states []CandidateState,
	sess *session,
	override int,
) classification {
	result := classification{
		scores: make([]float64, len(bySlot)),
		scored: make([]bool, len(bySlot)),
		best:   noSlot,

		ignoredOverride: noSlot,
	}

	for slot, cand := range bySlot {
		if cand == nil || !cand.Tracked {
			states[slot] = CannotBeTracked
		}
	}

	if override != noSlot {
		if override < 0 || override >= len(bySlot) || bySlot[override] == nil || !bySlot[override].Tracked {
			result.ignoredOverride = override
		} else if c.applyOverride(now, bySlot, states, sess, override) {
			result.overridden = true
			result.committed = true
			return result
		}
	}

	if sess.committed() {
		slot := locate(bySlot, sess)
		if slot != noSlot {
			if slot != sess.slot {
				c.logger.Debugw("committed body moved slots", "from", sess.slot, "to", slot, "id", sess.stableID)
				result.moved = true
				sess.slot = slot
			}
			c.hold(now, bySlot, states, sess)
			result.kept = true
			return result
		}

		c.logger.Infow("tracking lost", "slot", sess.slot, "id", sess.stableID, "session", sess.id)
		states[sess.slot] = CannotBeTracked
		sess.slot = noSlot
		result.released = true
	}

	bestScore := 0.0
	for slot, cand := range bySlot {
		if cand == nil || !cand.Tracked {
			continue
		}
		if states[slot] != CannotBeTracked && states[slot] != CanBeTracked {
			continue
		}
		score := c.cfg.Score(cand.ReferencePosition, sess.lastKnownPosition, now, sess.lastKnownTime)
		states[slot] = CanBeTracked
		result.scores[slot] = score
		result.scored[slot] = true
		if result.best == noSlot || score > bestScore {
			result.best = slot
			bestScore = score
		}
	}

	if result.best != noSlot && bestScore > c.cfg.CommitThreshold {
		c.commit(now, bySlot, states, sess, result.best)
		c.logger.Infow("committed body", "slot", result.best, "id", sess.stableID, "score", bestScore, "session", sess.id)
		result.committed = true
	}
	return result
}

// applyOverride force-commits the tracked body in slot. A request naming the committed body, in
// whatever slot the hardware has moved it to, keeps the session.
func (c *classifier) applyOverride(now time.Time, bySlot []*Candidate, states []CandidateState, sess *session, slot int) bool {
	if sess.committed() {
		current := locate(bySlot, sess)
		if current == slot {
			c.logger.Debugw("override requested the body already tracked", "slot", slot, "id", sess.stableID)
			return false
		}
		c.logger.Infow("override releasing body", "slot", sess.slot, "id", sess.stableID, "session", sess.id)
		states[sess.slot] = CannotBeTracked
		if current != noSlot {
			states[current] = ShouldNotBeTracked
		}
	}
	c.commit(now, bySlot, states, sess, slot)
	for other, cand := range bySlot {
		if other != slot && cand != nil && cand.Tracked {
			states[other] = ShouldNotBeTracked
		}
	}
	c.logger.Infow("committed body by override", "slot", slot, "id", sess.stableID, "session", sess.id)
	return true
}

// hold keeps the committed body: every other tracked body is excluded and the last known
// position is refreshed.
func (c *classifier) hold(now time.Time, bySlot []*Candidate, states []CandidateState, sess *session) {
	for slot, cand := range bySlot {
		if cand == nil || !cand.Tracked {
			continue
		}
		if slot == sess.slot {
			states[slot] = ShouldBeTracked
		} else {
			states[slot] = ShouldNotBeTracked
		}
	}
	sess.lastKnownPosition = bySlot[sess.slot].ReferencePosition
	sess.lastKnownTime = now
}

func (c *classifier) commit(now time.Time, bySlot []*Candidate, states []CandidateState, sess *session, slot int) {
	cand := bySlot[slot]
	for other, state := range states {
		if other != slot && state == CanBeTracked {
			states[other] = ShouldNotBeTracked
		}
	}
	states[slot] = ShouldBeTracked
	*sess = session{
		id:                uuid.New(),
		slot:              slot,
		stableID:          cand.StableID,
		since:             now,
		lastKnownPosition: cand.ReferencePosition,
		lastKnownTime:     now,
		needsOffset:       true,
	}
}

// locate finds the committed body, following its stable id if the hardware moved it to another
// slot. It returns noSlot when the body is gone.
func locate(bySlot []*Candidate, sess *session) int {
	if cand := bySlot[sess.slot]; cand != nil && cand.Tracked && cand.StableID == sess.stableID {
		return sess.slot
	}
	for slot, cand := range bySlot {
		if cand != nil && cand.Tracked && cand.StableID == sess.stableID {
			return slot
		}
	}
	return noSlot
}
