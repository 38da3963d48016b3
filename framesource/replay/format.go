// Package replay reads and writes recorded body frames as JSON lines.
//
// A recording starts with a header line naming the hardware family, followed by one line per
// hardware tick:
//
//	{"format":"bodytrack-replay","version":1,"family":"kinect-v2"}
//	{"ticks":123450000,"bodies":[{"slot":0,"id":72057594037930000,"tracked":true,"joints":[...]}]}
//	{"no_frame":true}
//
// Joint positions are x, y, z and orientations are x, y, z, w, as the sensor reports them.
package replay

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/jenourish/bodytrack/spatialmath"
	"github.com/jenourish/bodytrack/tracking"
)

const (
	formatName    = "bodytrack-replay"
	formatVersion = 1
)

type header struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
	Family  string `json:"family"`
}

type jointRecord struct {
	Position    [3]float64                  `json:"p"`
	Orientation [4]float64                  `json:"q"`
	Confidence  tracking.TrackingConfidence `json:"c"`
}

type bodyRecord struct {
	Slot      int                `json:"slot"`
	ID        uint64             `json:"id,omitempty"`
	Tracked   bool               `json:"tracked"`
	Joints    []jointRecord      `json:"joints,omitempty"`
	LeftHand  tracking.HandState `json:"left_hand,omitempty"`
	RightHand tracking.HandState `json:"right_hand,omitempty"`
	Error     string             `json:"error,omitempty"`
}

type frameRecord struct {
	Ticks   int64        `json:"ticks"`
	NoFrame bool         `json:"no_frame,omitempty"`
	Bodies  []bodyRecord `json:"bodies,omitempty"`
}

func (h header) validate() error {
	if h.Format != formatName {
		return errors.Errorf("not a %s file (format %q)", formatName, h.Format)
	}
	if h.Version != formatVersion {
		return errors.Errorf("unsupported %s version %d", formatName, h.Version)
	}
	return nil
}

func (b bodyRecord) candidate(f tracking.Family) tracking.Candidate {
	cand := tracking.Candidate{
		Slot:      b.Slot,
		StableID:  b.ID,
		Tracked:   b.Tracked,
		LeftHand:  b.LeftHand,
		RightHand: b.RightHand,
	}
	if len(b.Joints) > 0 {
		cand.Joints = make([]tracking.JointSample, len(b.Joints))
		for i, j := range b.Joints {
			cand.Joints[i] = tracking.JointSample{
				Position:    r3.Vector{X: j.Position[0], Y: j.Position[1], Z: j.Position[2]},
				Orientation: spatialmath.NewQuaternionXYZW(j.Orientation[0], j.Orientation[1], j.Orientation[2], j.Orientation[3]).Quaternion(),
				Confidence:  j.Confidence,
			}
		}
	}
	if f.AnchorJoint < len(cand.Joints) {
		cand.ReferencePosition = cand.Joints[f.AnchorJoint].Position
	}
	if b.Error != "" {
		cand.Err = errors.New(b.Error)
	}
	return cand
}

func recordBody(cand tracking.Candidate) bodyRecord {
	b := bodyRecord{
		Slot:      cand.Slot,
		ID:        cand.StableID,
		Tracked:   cand.Tracked,
		LeftHand:  cand.LeftHand,
		RightHand: cand.RightHand,
	}
	for _, s := range cand.Joints {
		q := spatialmath.Quaternion(s.Orientation)
		x, y, z, w := q.XYZW()
		b.Joints = append(b.Joints, jointRecord{
			Position:    [3]float64{s.Position.X, s.Position.Y, s.Position.Z},
			Orientation: [4]float64{x, y, z, w},
			Confidence:  s.Confidence,
		})
	}
	if cand.Err != nil {
		b.Error = cand.Err.Error()
	}
	return b
}
