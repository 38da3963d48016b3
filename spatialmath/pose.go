package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) in the sensor's native length unit and the
// Orientation() method returns an Orientation object.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type basicPose struct {
	point       r3.Vector
	orientation Quaternion
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}
	return &basicPose{point: p, orientation: Quaternion(o.Quaternion())}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(point r3.Vector) Pose {
	return &basicPose{point: point, orientation: Quaternion{Real: 1}}
}

func (p *basicPose) Point() r3.Vector {
	return p.point
}

func (p *basicPose) Orientation() Orientation {
	o := p.orientation
	return &o
}

func (p *basicPose) String() string {
	qx, qy, qz, qw := p.orientation.XYZW()
	return fmt.Sprintf("{X:%.3f Y:%.3f Z:%.3f QX:%.3f QY:%.3f QZ:%.3f QW:%.3f}",
		p.point.X, p.point.Y, p.point.Z, qx, qy, qz, qw)
}
