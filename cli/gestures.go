package cli

import (
	"context"

	"go.uber.org/atomic"

	"github.com/jenourish/bodytrack/components/input"
	"github.com/jenourish/bodytrack/logging"
)

// watchGestures logs every button change on ctrl and counts the presses.
func watchGestures(ctx context.Context, ctrl input.Controller, logger logging.Logger) (*atomic.Int64, error) {
	controls, err := ctrl.Controls(ctx)
	if err != nil {
		return nil, err
	}
	presses := atomic.NewInt64(0)
	onChange := func(ctx context.Context, ev input.Event) {
		if ev.Event == input.ButtonPress {
			presses.Inc()
		}
		logger.Debugw("gesture", "control", ev.Control, "event", ev.Event, "time", ev.Time)
	}
	for _, control := range controls {
		if err := ctrl.RegisterControlCallback(ctx, control, []input.EventType{input.ButtonChange}, onChange); err != nil {
			return nil, err
		}
	}
	return presses, nil
}
