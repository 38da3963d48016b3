// Package posetracker contains the interface for a pose tracker component and a store that keeps
// the latest tracked joint poses.
package posetracker

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/jenourish/bodytrack/spatialmath"
)

// ErrNoBody is returned by Poses when no body is being tracked.
var ErrNoBody = errors.New("no body is being tracked")

// PoseInFrame is a pose expressed in a named reference frame, with the time it was observed and
// the hardware's confidence in it.
type PoseInFrame struct {
	Parent     string
	Pose       spatialmath.Pose
	Time       time.Time
	Confidence float64
}

// BodyToPoseInFrame maps body part names to their poses.
type BodyToPoseInFrame map[string]*PoseInFrame

// A PoseTracker represents a component that can observe bodies in an environment and provide
// their respective poses in space. These poses are given in the context of the PoseTracker's
// frame of reference.
type PoseTracker interface {
	// Name is the tracker's name, which is also the parent frame of its poses.
	Name() string
	// Poses returns the poses of the named body parts, or all of them when bodyNames is empty.
	Poses(ctx context.Context, bodyNames []string, extra map[string]interface{}) (BodyToPoseInFrame, error)
	Close(ctx context.Context) error
}
