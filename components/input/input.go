// Package input provides human input signals, such as the hand gesture buttons derived from a
// tracked body.
package input

import (
	"context"
	"time"
)

// Controller is a logical "container" of controls more than an actual device.
type Controller interface {
	// Controls returns the controls the Controller provides.
	Controls(ctx context.Context) ([]Control, error)

	// Events returns the most recent Event for each control, which is its current state.
	Events(ctx context.Context) (map[Control]Event, error)

	// RegisterControlCallback registers a callback that fires on the given EventTypes for a
	// Control. A nil ctrlFunc removes the callback.
	RegisterControlCallback(ctx context.Context, control Control, triggers []EventType, ctrlFunc ControlFunction) error
}

// ControlFunction is a callback passed to RegisterControlCallback.
type ControlFunction func(ctx context.Context, ev Event)

// EventType represents the type of input event.
type EventType string

// EventType list.
const (
	// Callbacks registered for this event are called in addition to other registered event callbacks.
	AllEvents EventType = "AllEvents"
	// Sent at controller initialization.
	Connect EventType = "Connect"
	// Sent when the controller shuts down.
	Disconnect EventType = "Disconnect"
	// Typical key press.
	ButtonPress EventType = "ButtonPress"
	// Key release.
	ButtonRelease EventType = "ButtonRelease"
	// Both press and release for convenience during registration, never emitted.
	ButtonChange EventType = "ButtonChange"
)

// Control identifies one input of a controller.
type Control string

// Event is passed to the registered ControlFunction or returned by Events.
type Event struct {
	Time    time.Time
	Event   EventType
	Control Control
	Value   float64 // 0 or 1 for buttons
}
