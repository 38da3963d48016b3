package inject

import (
	"context"

	"github.com/jenourish/bodytrack/components/input"
)

// InputController is an injected InputController.
type InputController struct {
	input.Controller
	ControlsFunc                func(ctx context.Context) ([]input.Control, error)
	EventsFunc                  func(ctx context.Context) (map[input.Control]input.Event, error)
	RegisterControlCallbackFunc func(
		ctx context.Context,
		control input.Control,
		triggers []input.EventType,
		ctrlFunc input.ControlFunction,
	) error
}

// Controls calls the injected function or the real version.
func (s *InputController) Controls(ctx context.Context) ([]input.Control, error) {
	if s.ControlsFunc == nil {
		return s.Controller.Controls(ctx)
	}
	return s.ControlsFunc(ctx)
}

// Events calls the injected function or the real version.
func (s *InputController) Events(ctx context.Context) (map[input.Control]input.Event, error) {
	if s.EventsFunc == nil {
		return s.Controller.Events(ctx)
	}
	return s.EventsFunc(ctx)
}

// RegisterControlCallback calls the injected function or the real version.
func (s *InputController) RegisterControlCallback(
	ctx context.Context,
	control input.Control,
	triggers []input.EventType,
	ctrlFunc input.ControlFunction,
) error {
	if s.RegisterControlCallbackFunc == nil {
		return s.Controller.RegisterControlCallback(ctx, control, triggers, ctrlFunc)
	}
	return s.RegisterControlCallbackFunc(ctx, control, triggers, ctrlFunc)
}
