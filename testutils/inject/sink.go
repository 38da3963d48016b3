package inject

import (
	"time"

	"github.com/jenourish/bodytrack/spatialmath"
	"github.com/jenourish/bodytrack/tracking"
)

// Sink is an injected tracking sink.
type Sink struct {
	tracking.Sink
	SendPoseFunc       func(joint int, pose spatialmath.Pose, ts time.Time)
	SendConfidenceFunc func(joint int, value float64, ts time.Time)
	SendGesturesFunc   func(gestures tracking.Gestures, ts time.Time)
}

// SendPose calls the injected SendPose or the real version.
func (s *Sink) SendPose(joint int, pose spatialmath.Pose, ts time.Time) {
	if s.SendPoseFunc == nil {
		s.Sink.SendPose(joint, pose, ts)
		return
	}
	s.SendPoseFunc(joint, pose, ts)
}

// SendConfidence calls the injected SendConfidence or the real version.
func (s *Sink) SendConfidence(joint int, value float64, ts time.Time) {
	if s.SendConfidenceFunc == nil {
		s.Sink.SendConfidence(joint, value, ts)
		return
	}
	s.SendConfidenceFunc(joint, value, ts)
}

// SendGestures calls the injected SendGestures or the real version.
func (s *Sink) SendGestures(gestures tracking.Gestures, ts time.Time) {
	if s.SendGesturesFunc == nil {
		s.Sink.SendGestures(gestures, ts)
		return
	}
	s.SendGesturesFunc(gestures, ts)
}
