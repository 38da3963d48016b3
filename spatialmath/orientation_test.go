package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

// represent a 45 degree rotation around the x axis in all the representations
var (
	th    = math.Pi / 4.
	q45x  = quat.Number{Real: math.Cos(th / 2.), Imag: math.Sin(th / 2.), Jmag: 0, Kmag: 0} // in quaternion representation
	aa45x = &R4AA{th, 1., 0., 0.}                                                           // in axis-angle representation
)

func TestZeroOrientation(t *testing.T) {
	zero := NewZeroOrientation()
	test.That(t, zero.Quaternion(), test.ShouldResemble, quat.Number{Real: 1, Imag: 0, Jmag: 0, Kmag: 0})
	test.That(t, zero.AxisAngles().Theta, test.ShouldEqual, 0.)
}

func TestQuaternions(t *testing.T) {
	qq45x := Quaternion(q45x)
	test.That(t, qq45x.AxisAngles().Theta, test.ShouldAlmostEqual, aa45x.Theta)
	test.That(t, qq45x.AxisAngles().RX, test.ShouldAlmostEqual, aa45x.RX)
	test.That(t, qq45x.AxisAngles().RY, test.ShouldAlmostEqual, aa45x.RY)
	test.That(t, qq45x.AxisAngles().RZ, test.ShouldAlmostEqual, aa45x.RZ)

	q := aa45x.ToQuat()
	test.That(t, QuaternionAlmostEqual(q, q45x, 1e-9), test.ShouldBeTrue)

	x, y, z, w := NewQuaternionXYZW(0.1, 0.2, 0.3, 0.4).XYZW()
	test.That(t, []float64{x, y, z, w}, test.ShouldResemble, []float64{0.1, 0.2, 0.3, 0.4})
}

func TestOrientationInverse(t *testing.T) {
	o := &R4AA{Theta: math.Pi / 2, RZ: 1}
	inv := OrientationInverse(o)
	test.That(t, inv.AxisAngles().Theta, test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, inv.AxisAngles().RZ, test.ShouldAlmostEqual, -1.)
	undone := quat.Mul(inv.Quaternion(), o.Quaternion())
	test.That(t, QuaternionAlmostEqual(undone, quat.Number{Real: 1}, 1e-9), test.ShouldBeTrue)
}

func TestRotateVector(t *testing.T) {
	q := (&R4AA{Theta: math.Pi / 2, RZ: 1}).ToQuat()
	v := RotateVector(q, r3.Vector{X: 1})
	test.That(t, v.X, test.ShouldAlmostEqual, 0.)
	test.That(t, v.Y, test.ShouldAlmostEqual, 1.)
	test.That(t, v.Z, test.ShouldAlmostEqual, 0.)
}

func TestNormalize(t *testing.T) {
	test.That(t, Normalize(quat.Number{}), test.ShouldResemble, quat.Number{Real: 1})
	n := Normalize(quat.Number{Real: 2})
	test.That(t, n.Real, test.ShouldAlmostEqual, 1.)
	test.That(t, func() { NewR4AAFromAxis(1, r3.Vector{}).ToQuat() }, test.ShouldPanic)
}
