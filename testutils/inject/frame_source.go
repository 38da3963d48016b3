package inject

import (
	"context"

	"github.com/jenourish/bodytrack/framesource"
	"github.com/jenourish/bodytrack/tracking"
)

// FrameSource is an injected frame source.
type FrameSource struct {
	framesource.Source
	NextFrameFunc func(ctx context.Context) (tracking.Frame, error)
	CloseFunc     func(ctx context.Context) error
}

// NextFrame calls the injected NextFrame or the real version.
func (s *FrameSource) NextFrame(ctx context.Context) (tracking.Frame, error) {
	if s.NextFrameFunc == nil {
		return s.Source.NextFrame(ctx)
	}
	return s.NextFrameFunc(ctx)
}

// Close calls the injected Close or the real version.
func (s *FrameSource) Close(ctx context.Context) error {
	if s.CloseFunc == nil {
		if s.Source == nil {
			return nil
		}
		return s.Source.Close(ctx)
	}
	return s.CloseFunc(ctx)
}
