package spatialmath

import (
	"fmt"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestBasicPoseConstruction(t *testing.T) {
	p := NewPoseFromPoint(r3.Vector{})
	test.That(t, p.Point(), test.ShouldResemble, r3.Vector{})
	test.That(t, QuaternionAlmostEqual(p.Orientation().Quaternion(), NewZeroOrientation().Quaternion(), 1e-9), test.ShouldBeTrue)

	ov := &R4AA{Theta: math.Pi / 3, RX: 1}
	p = NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, ov)
	test.That(t, p.Point(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, QuaternionAlmostEqual(p.Orientation().Quaternion(), ov.ToQuat(), 1e-9), test.ShouldBeTrue)

	p = NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, nil)
	test.That(t, p.Orientation().Quaternion(), test.ShouldResemble, NewZeroOrientation().Quaternion())
	test.That(t, p.(fmt.Stringer).String(), test.ShouldEqual,
		"{X:1.000 Y:2.000 Z:3.000 QX:0.000 QY:0.000 QZ:0.000 QW:1.000}")
}

func TestPoseOrientationIsCopied(t *testing.T) {
	p := NewPose(r3.Vector{}, NewZeroOrientation())
	o := p.Orientation().(*Quaternion)
	o.Real = 0
	o.Imag = 1
	test.That(t, p.Orientation().Quaternion(), test.ShouldResemble, NewZeroOrientation().Quaternion())
}
