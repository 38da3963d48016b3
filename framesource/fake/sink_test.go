package fake

import (
	"time"

	"github.com/jenourish/bodytrack/spatialmath"
	"github.com/jenourish/bodytrack/tracking"
)

type countingSink struct {
	poses *int
}

func (s countingSink) SendPose(int, spatialmath.Pose, time.Time) { *s.poses++ }

func (s countingSink) SendConfidence(int, float64, time.Time) {}

func (s countingSink) SendGestures(tracking.Gestures, time.Time) {}
