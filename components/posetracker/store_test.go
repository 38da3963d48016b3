package posetracker_test

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/jenourish/bodytrack/components/posetracker"
	"github.com/jenourish/bodytrack/spatialmath"
	"github.com/jenourish/bodytrack/tracking"
	"github.com/jenourish/bodytrack/tracking/kinect"
)

func TestStore(t *testing.T) {
	f := kinect.V2()
	s := posetracker.NewStore("kinect", f)
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s.SendPose(f.ReferenceIndex, spatialmath.NewPoseFromPoint(r3.Vector{Z: -2}), ts)
	s.SendPose(kinect.V2Head, spatialmath.NewPoseFromPoint(r3.Vector{}), ts)
	s.SendConfidence(kinect.V2Head, 0.5, ts)
	s.SendPose(kinect.V2HandLeft, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.3}), ts)
	s.SendConfidence(kinect.V2HandLeft, 1, ts)
	s.SendPose(99, spatialmath.NewPoseFromPoint(r3.Vector{}), ts)
	s.SendGestures(tracking.Gestures{true}, ts)
	test.That(t, s.Len(), test.ShouldEqual, 3)

	all, err := s.Poses(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, all, test.ShouldHaveLength, 3)
	test.That(t, all["reference"].Pose.Point(), test.ShouldResemble, r3.Vector{Z: -2})
	test.That(t, all["reference"].Confidence, test.ShouldEqual, 1.0)
	test.That(t, all["head"].Confidence, test.ShouldEqual, 0.5)
	test.That(t, all["head"].Parent, test.ShouldEqual, "kinect")
	test.That(t, all["head"].Time, test.ShouldEqual, ts)

	some, err := s.Poses([]string{"hand_left", "neck"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, some, test.ShouldHaveLength, 1)
	test.That(t, some["hand_left"].Pose.Point().X, test.ShouldEqual, 0.3)

	// returned entries are copies
	some["hand_left"].Confidence = 0
	again, err := s.Poses([]string{"hand_left"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again["hand_left"].Confidence, test.ShouldEqual, 1.0)

	_, err = s.Poses([]string{"tail"})
	test.That(t, err, test.ShouldBeError, `unknown body part "tail"`)

	s.Reset()
	test.That(t, s.Len(), test.ShouldEqual, 0)
}
