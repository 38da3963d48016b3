package inject

import (
	"context"

	"github.com/jenourish/bodytrack/components/posetracker"
)

// PoseTracker is an injected pose tracker.
type PoseTracker struct {
	posetracker.PoseTracker
	NameFunc  func() string
	PosesFunc func(ctx context.Context, bodyNames []string, extra map[string]interface{}) (posetracker.BodyToPoseInFrame, error)
	CloseFunc func(ctx context.Context) error
}

// Name calls the injected Name or the real version.
func (pT *PoseTracker) Name() string {
	if pT.NameFunc == nil {
		return pT.PoseTracker.Name()
	}
	return pT.NameFunc()
}

// Poses calls the injected Poses or the real version.
func (pT *PoseTracker) Poses(
	ctx context.Context, bodyNames []string, extra map[string]interface{},
) (posetracker.BodyToPoseInFrame, error) {
	if pT.PosesFunc == nil {
		return pT.PoseTracker.Poses(ctx, bodyNames, extra)
	}
	return pT.PosesFunc(ctx, bodyNames, extra)
}

// Close calls the injected Close or the real version.
func (pT *PoseTracker) Close(ctx context.Context) error {
	if pT.CloseFunc == nil {
		return pT.PoseTracker.Close(ctx)
	}
	return pT.CloseFunc(ctx)
}
