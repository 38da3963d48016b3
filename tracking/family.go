package tracking

import (
	"github.com/pkg/errors"
)

// Family describes the capabilities of one depth-sensor hardware family: how many bodies it
// reports, its joint table, and which joints anchor normalization.
type Family struct {
	Name           string
	CandidateCount int
	// Joints names every joint in the hardware's canonical order.
	Joints []string

	// AnchorJoint supplies the reference offset translation and the proximity reference position.
	AnchorJoint int
	// AnchorOrientationJoint supplies the reference offset rotation.
	AnchorOrientationJoint int

	LeftHandJoint  int
	RightHandJoint int

	// ReferenceIndex is the out-of-band joint index the sensor origin pose is reported on.
	ReferenceIndex int
	// Gestures is whether the hardware classifies hand states.
	Gestures bool
}

// Validate checks that every joint index the family names is inside its joint table.
func (f Family) Validate() error {
	if f.Name == "" {
		return errors.New("family name is required")
	}
	if f.CandidateCount <= 0 {
		return errors.Errorf("family %q: candidate count must be positive", f.Name)
	}
	if len(f.Joints) == 0 {
		return errors.Errorf("family %q: joint table is empty", f.Name)
	}
	for field, idx := range map[string]int{
		"anchor joint":             f.AnchorJoint,
		"anchor orientation joint": f.AnchorOrientationJoint,
		"left hand joint":          f.LeftHandJoint,
		"right hand joint":         f.RightHandJoint,
	} {
		if idx < 0 || idx >= len(f.Joints) {
			return errors.Errorf("family %q: %s %d out of range", f.Name, field, idx)
		}
	}
	if f.ReferenceIndex < len(f.Joints) {
		return errors.Errorf("family %q: reference index %d must lie past the joint table", f.Name, f.ReferenceIndex)
	}
	return nil
}

// IsHand reports whether the joint needs the hand basis correction.
func (f Family) IsHand(joint int) bool {
	return joint == f.LeftHandJoint || joint == f.RightHandJoint
}

// JointIndex finds a joint by name.
func (f Family) JointIndex(name string) (int, bool) {
	for i, n := range f.Joints {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// JointName names a joint index, including the reference index.
func (f Family) JointName(joint int) string {
	if joint == f.ReferenceIndex {
		return ReferenceJointName
	}
	if joint < 0 || joint >= len(f.Joints) {
		return ""
	}
	return f.Joints[joint]
}

// ReferenceJointName names the sensor origin pose.
const ReferenceJointName = "reference"
