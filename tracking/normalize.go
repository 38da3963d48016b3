package tracking

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/jenourish/bodytrack/spatialmath"
)

// Orientations with a smaller norm are treated as unreported by the hardware.
const minOrientationNorm = 1e-9

// ReferenceOffset is captured once per tracking session from the anchor joint.
type ReferenceOffset struct {
	Translation r3.Vector
	// Rotation is the inverse of the captured anchor orientation. It is kept for consumers but is
	// not applied to emitted poses.
	Rotation quat.Number
}

// NormalizeOrientation converts a joint's raw orientation into the orientation reported
// downstream. Only the family's two hand joints are changed.
func NormalizeOrientation(f Family, joint int, raw quat.Number) quat.Number {
	if !f.IsHand(joint) {
		return raw
	}
	return BoneToHand(raw)
}

// BoneToHand rotates a bone-local orientation by 90 degrees about its own X axis, expressed in
// world space, turning the sensor's hand bone convention into a hand-facing one.
func BoneToHand(raw quat.Number) quat.Number {
	if quat.Abs(raw) < minOrientationNorm {
		return raw
	}
	axis := spatialmath.RotateVector(spatialmath.Normalize(raw), r3.Vector{X: 1})
	rotation := spatialmath.NewR4AAFromAxis(math.Pi/2, axis).ToQuat()
	return quat.Mul(rotation, raw)
}

// CaptureOffset builds the session's reference offset from the anchor pose.
func CaptureOffset(position r3.Vector, orientation quat.Number) ReferenceOffset {
	rotation := quat.Number{Real: 1}
	if quat.Abs(orientation) >= minOrientationNorm {
		anchor := spatialmath.Quaternion(orientation)
		rotation = spatialmath.OrientationInverse(&anchor).Quaternion()
	}
	return ReferenceOffset{Translation: position, Rotation: rotation}
}

// ApplyOffset expresses pose relative to the captured anchor position. The orientation is passed
// through unchanged.
func ApplyOffset(offset ReferenceOffset, pose spatialmath.Pose) spatialmath.Pose {
	return spatialmath.NewPose(pose.Point().Sub(offset.Translation), pose.Orientation())
}

// OriginPose is the sensor origin as seen from the anchor position at capture time.
func OriginPose(anchorPosition r3.Vector) spatialmath.Pose {
	return spatialmath.NewPose(anchorPosition.Mul(-1), spatialmath.NewZeroOrientation())
}

// NormalizeJoint runs one joint sample through the full normalization pipeline.
func NormalizeJoint(f Family, offset ReferenceOffset, joint int, sample JointSample) spatialmath.Pose {
	o := spatialmath.Quaternion(NormalizeOrientation(f, joint, sample.Orientation))
	return ApplyOffset(offset, spatialmath.NewPose(sample.Position, &o))
}
