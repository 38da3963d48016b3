// Package spatialmath defines spatial mathematical operations on joint poses.
package spatialmath

import (
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	AxisAngles() *R4AA
	Quaternion() quat.Number
}

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &Quaternion{1, 0, 0, 0}
}

// OrientationInverse returns the orientation that undoes o.
func OrientationInverse(o Orientation) Orientation {
	q := Quaternion(quat.Inv(o.Quaternion()))
	return &q
}
