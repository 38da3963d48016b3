// Package kinect describes the Kinect v1 and v2 body tracking families.
package kinect

import (
	"github.com/pkg/errors"

	"github.com/jenourish/bodytrack/tracking"
)

// Family names as they appear in configuration.
const (
	V1Name = "kinect-v1"
	V2Name = "kinect-v2"
)

// BodyCount is how many bodies both generations report per frame.
const BodyCount = 6

// Kinect v2 joint indices.
const (
	V2SpineBase = iota
	V2SpineMid
	V2Neck
	V2Head
	V2ShoulderLeft
	V2ElbowLeft
	V2WristLeft
	V2HandLeft
	V2ShoulderRight
	V2ElbowRight
	V2WristRight
	V2HandRight
	V2HipLeft
	V2KneeLeft
	V2AnkleLeft
	V2FootLeft
	V2HipRight
	V2KneeRight
	V2AnkleRight
	V2FootRight
	V2SpineShoulder
	V2HandTipLeft
	V2ThumbLeft
	V2HandTipRight
	V2ThumbRight
	V2JointCount
)

// Kinect v1 joint indices.
const (
	V1HipCenter = iota
	V1Spine
	V1ShoulderCenter
	V1Head
	V1ShoulderLeft
	V1ElbowLeft
	V1WristLeft
	V1HandLeft
	V1ShoulderRight
	V1ElbowRight
	V1WristRight
	V1HandRight
	V1HipLeft
	V1KneeLeft
	V1AnkleLeft
	V1FootLeft
	V1HipRight
	V1KneeRight
	V1AnkleRight
	V1FootRight
	V1JointCount
)

var v2Joints = []string{
	"spine_base", "spine_mid", "neck", "head",
	"shoulder_left", "elbow_left", "wrist_left", "hand_left",
	"shoulder_right", "elbow_right", "wrist_right", "hand_right",
	"hip_left", "knee_left", "ankle_left", "foot_left",
	"hip_right", "knee_right", "ankle_right", "foot_right",
	"spine_shoulder", "hand_tip_left", "thumb_left", "hand_tip_right", "thumb_right",
}

var v1Joints = []string{
	"hip_center", "spine", "shoulder_center", "head",
	"shoulder_left", "elbow_left", "wrist_left", "hand_left",
	"shoulder_right", "elbow_right", "wrist_right", "hand_right",
	"hip_left", "knee_left", "ankle_left", "foot_left",
	"hip_right", "knee_right", "ankle_right", "foot_right",
}

// V2 returns the Kinect v2 family. Its offset orientation comes from the neck, since the v2 SDK
// does not report a head orientation.
func V2() tracking.Family {
	return tracking.Family{
		Name:                   V2Name,
		CandidateCount:         BodyCount,
		Joints:                 append([]string(nil), v2Joints...),
		AnchorJoint:            V2Head,
		AnchorOrientationJoint: V2Neck,
		LeftHandJoint:          V2HandLeft,
		RightHandJoint:         V2HandRight,
		ReferenceIndex:         V2JointCount,
		Gestures:               true,
	}
}

// V1 returns the Kinect v1 family. The v1 reference pose sits one past the first free index.
func V1() tracking.Family {
	return tracking.Family{
		Name:                   V1Name,
		CandidateCount:         BodyCount,
		Joints:                 append([]string(nil), v1Joints...),
		AnchorJoint:            V1Head,
		AnchorOrientationJoint: V1Head,
		LeftHandJoint:          V1HandLeft,
		RightHandJoint:         V1HandRight,
		ReferenceIndex:         V1JointCount + 1,
	}
}

// FamilyByName looks up a family by its configuration name.
func FamilyByName(name string) (tracking.Family, error) {
	switch name {
	case V1Name:
		return V1(), nil
	case V2Name:
		return V2(), nil
	default:
		return tracking.Family{}, errors.Errorf("unknown kinect family %q (expected %q or %q)", name, V1Name, V2Name)
	}
}

// Names lists the supported family names.
func Names() []string {
	return []string{V1Name, V2Name}
}
