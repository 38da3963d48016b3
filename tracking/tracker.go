package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/spatialmath"
	"github.com/jenourish/bodytrack/utils"
)

// Phase is the tracker's coarse lifecycle position.
type Phase int

const (
	// Idle means no body has been seen yet.
	Idle Phase = iota
	// Acquiring means bodies are being scored but none is committed.
	Acquiring
	// Tracking means one body is committed and its joints are being emitted.
	Tracking
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Acquiring:
		return "acquiring"
	case Tracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Config configures a Tracker.
type Config struct {
	Family Family
	ScoringConfig
	// Meter receives the tracker's counters. The global otel meter is used when nil.
	Meter metric.Meter
}

// DefaultConfig returns a config for the family with the default scoring constants.
func DefaultConfig(f Family) Config {
	return Config{Family: f, ScoringConfig: DefaultScoringConfig()}
}

// Validate checks the family and scoring constants.
func (cfg Config) Validate() error {
	if err := cfg.Family.Validate(); err != nil {
		return err
	}
	if cfg.MaxPlayspaceDistance <= 0 {
		return errors.Errorf("max playspace distance must be positive, got %v", cfg.MaxPlayspaceDistance)
	}
	if cfg.TimeDecay <= 0 {
		return errors.Errorf("time decay must be positive, got %v", cfg.TimeDecay)
	}
	return nil
}

// SessionInfo describes the current tracking session.
type SessionInfo struct {
	ID       uuid.UUID
	Slot     int
	StableID uint64
	Since    time.Time
	// Offset is the zero value until the session's first frame has been emitted.
	Offset ReferenceOffset
}

// A Tracker selects one body from each frame's candidates, keeps following it as the hardware
// churns slots and ids, and emits its normalized joints to a Sink.
//
// Process must be called from a single goroutine. RequestTrackBody, CandidateStates, Phase and
// Session are safe to call concurrently with it.
type Tracker struct {
	family     Family
	classifier classifier
	sink       Sink
	logger     logging.Logger
	metrics    *trackerMetrics
	attrs      metric.MeasurementOption

	override atomic.Int64

	processMu sync.Mutex
	states    []CandidateState
	sess      session
	offset    ReferenceOffset
	origin    spatialmath.Pose
	phase     Phase

	mu           sync.RWMutex
	snapshot     []CandidateState
	snapPhase    Phase
	snapSession  SessionInfo
	snapTracking bool
}

// NewTracker returns a tracker for cfg that emits to sink.
func NewTracker(cfg Config, sink Sink, logger logging.Logger) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid tracker config")
	}
	if sink == nil {
		return nil, errors.New("tracker requires a sink")
	}
	tm, attrs, err := newTrackerMetrics(cfg.Meter, cfg.Family.Name)
	if err != nil {
		return nil, err
	}
	t := &Tracker{
		family:     cfg.Family,
		classifier: classifier{cfg: cfg.ScoringConfig, logger: logger},
		sink:       sink,
		logger:     logger,
		metrics:    tm,
		attrs:      attrs,
		states:     make([]CandidateState, cfg.Family.CandidateCount),
		sess:       session{slot: noSlot},
		snapshot:   make([]CandidateState, cfg.Family.CandidateCount),
	}
	t.override.Store(noSlot)
	return t, nil
}

// Family returns the hardware family the tracker was built for.
func (t *Tracker) Family() Family {
	return t.family
}

// RequestTrackBody asks the tracker to switch to the body in slot on the next frame, bypassing
// scoring. The latest request wins. A slot that holds no tracked body when the frame arrives is
// ignored.
func (t *Tracker) RequestTrackBody(slot int) error {
	if slot < 0 || slot >= t.family.CandidateCount {
		return errors.Wrap(ErrSlotOutOfRange, utils.NewOutOfRangeError("slot", slot, t.family.CandidateCount).Error())
	}
	t.override.Store(int64(slot))
	return nil
}

// CandidateStates returns a copy of every slot's state as of the last processed frame.
func (t *Tracker) CandidateStates() []CandidateState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	states := make([]CandidateState, len(t.snapshot))
	copy(states, t.snapshot)
	return states
}

// Phase returns the tracker's phase as of the last processed frame.
func (t *Tracker) Phase() Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapPhase
}

// Session returns the current session, if a body is committed.
func (t *Tracker) Session() (SessionInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapSession, t.snapTracking
}

// Process runs selection on one frame and, if a body is committed, emits its joints.
func (t *Tracker) Process(ctx context.Context, frame Frame) {
	t.processMu.Lock()
	defer t.processMu.Unlock()

	bySlot := t.indexCandidates(frame.Candidates)
	override := int(t.override.Swap(noSlot))
	result := t.classifier.classify(frame.Time, bySlot, t.states, &t.sess, override)
	if result.ignoredOverride != noSlot {
		t.logger.CDebugw(ctx, "ignoring override for untracked slot", "slot", result.ignoredOverride)
	}
	t.updatePhase(result)

	skipped := false
	if t.sess.committed() {
		skipped = !t.emit(ctx, bySlot[t.sess.slot], frame.Time)
	}
	t.metrics.record(ctx, result, skipped, t.attrs)
	t.publish()
}

func (t *Tracker) indexCandidates(candidates []Candidate) []*Candidate {
	bySlot := make([]*Candidate, t.family.CandidateCount)
	for i := range candidates {
		cand := &candidates[i]
		if cand.Slot < 0 || cand.Slot >= len(bySlot) {
			t.logger.Debugw("dropping candidate with out of range slot", "slot", cand.Slot)
			continue
		}
		if bySlot[cand.Slot] != nil {
			t.logger.Debugw("dropping duplicate candidate", "slot", cand.Slot)
			continue
		}
		bySlot[cand.Slot] = cand
	}
	return bySlot
}

func (t *Tracker) updatePhase(result classification) {
	switch {
	case t.sess.committed():
		t.phase = Tracking
	case result.released:
		t.phase = Acquiring
	case t.phase == Idle:
		for _, scored := range result.scored {
			if scored {
				t.phase = Acquiring
				break
			}
		}
	}
}

// emit sends the committed body's frame to the sink. It returns false when the frame had to be
// skipped.
func (t *Tracker) emit(ctx context.Context, cand *Candidate, ts time.Time) bool {
	if cand.Err != nil {
		t.logger.CDebugw(ctx, "skipping frame on read failure", "slot", cand.Slot, "error", cand.Err)
		return false
	}
	if len(cand.Joints) != len(t.family.Joints) {
		t.logger.CDebugw(ctx, "skipping frame with wrong joint count",
			"slot", cand.Slot, "joints", len(cand.Joints), "expected", len(t.family.Joints))
		return false
	}

	if t.sess.needsOffset {
		anchor := cand.Joints[t.family.AnchorJoint].Position
		t.offset = CaptureOffset(anchor, cand.Joints[t.family.AnchorOrientationJoint].Orientation)
		t.origin = OriginPose(anchor)
		t.sess.needsOffset = false
		t.logger.Debugw("captured reference offset", "session", t.sess.id, "translation", anchor)
	}

	t.sink.SendPose(t.family.ReferenceIndex, t.origin, ts)
	for joint, sample := range cand.Joints {
		t.sink.SendPose(joint, NormalizeJoint(t.family, t.offset, joint, sample), ts)
		t.sink.SendConfidence(joint, sample.Confidence.Value(), ts)
	}
	if t.family.Gestures {
		t.sink.SendGestures(GesturesFromHands(cand.LeftHand, cand.RightHand), ts)
	}
	return true
}

func (t *Tracker) publish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	copy(t.snapshot, t.states)
	t.snapPhase = t.phase
	t.snapTracking = t.sess.committed()
	if t.snapTracking {
		t.snapSession = SessionInfo{
			ID:       t.sess.id,
			Slot:     t.sess.slot,
			StableID: t.sess.stableID,
			Since:    t.sess.since,
		}
		if !t.sess.needsOffset {
			t.snapSession.Offset = t.offset
		}
	} else {
		t.snapSession = SessionInfo{}
	}
}
