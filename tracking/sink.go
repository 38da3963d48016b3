package tracking

import (
	"time"

	"github.com/jenourish/bodytrack/spatialmath"
)

// A Sink receives the tracker's output channels. Joint indices are the family's canonical indices
// plus its reference index for the sensor origin pose.
type Sink interface {
	SendPose(joint int, pose spatialmath.Pose, ts time.Time)
	SendConfidence(joint int, value float64, ts time.Time)
	SendGestures(gestures Gestures, ts time.Time)
}

// MultiSink fans every emission out to each of its sinks in order.
type MultiSink []Sink

// SendPose forwards to every sink.
func (m MultiSink) SendPose(joint int, pose spatialmath.Pose, ts time.Time) {
	for _, s := range m {
		s.SendPose(joint, pose, ts)
	}
}

// SendConfidence forwards to every sink.
func (m MultiSink) SendConfidence(joint int, value float64, ts time.Time) {
	for _, s := range m {
		s.SendConfidence(joint, value, ts)
	}
}

// SendGestures forwards to every sink.
func (m MultiSink) SendGestures(gestures Gestures, ts time.Time) {
	for _, s := range m {
		s.SendGestures(gestures, ts)
	}
}
