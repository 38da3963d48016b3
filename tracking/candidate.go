package tracking

import (
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Candidate is one hardware-reported body slot in a single frame.
type Candidate struct {
	Slot     int
	StableID uint64
	Tracked  bool

	// ReferencePosition is the anchor (head) joint position, used for proximity scoring.
	ReferencePosition r3.Vector

	Joints    []JointSample
	LeftHand  HandState
	RightHand HandState

	// Err is set when the source could not read this body's joints, orientations or hand states.
	Err error
}

// Frame is everything the frame source reports for one tick.
type Frame struct {
	Time       time.Time
	Candidates []Candidate
}

// CandidateState is the selection state of one slot. It persists across frames.
type CandidateState int

const (
	// CannotBeTracked means the hardware reports no person in the slot.
	CannotBeTracked CandidateState = iota
	// CanBeTracked means a person is present but selection has not committed to them.
	CanBeTracked
	// ShouldNotBeTracked means a person is present but another slot was committed first. The slot
	// stays excluded until the hardware reports it untracked again.
	ShouldNotBeTracked
	// ShouldBeTracked marks the committed body. At most one slot holds it.
	ShouldBeTracked
)

var candidateStateNames = map[CandidateState]string{
	CannotBeTracked:    "cannot_be_tracked",
	CanBeTracked:       "can_be_tracked",
	ShouldNotBeTracked: "should_not_be_tracked",
	ShouldBeTracked:    "should_be_tracked",
}

func (s CandidateState) String() string {
	if name, ok := candidateStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s CandidateState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *CandidateState) UnmarshalText(text []byte) error {
	for state, name := range candidateStateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return errors.Errorf("unknown candidate state %q", text)
}
