// Package gesture implements an input controller whose buttons are the tracked body's hand
// gestures.
package gesture

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/jenourish/bodytrack/components/input"
	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/spatialmath"
	"github.com/jenourish/bodytrack/tracking"
)

// Gesture controls, one per hand state button.
const (
	RightHandOpen   input.Control = "RightHandOpen"
	RightHandClosed input.Control = "RightHandClosed"
	RightHandLasso  input.Control = "RightHandLasso"
	LeftHandOpen    input.Control = "LeftHandOpen"
	LeftHandClosed  input.Control = "LeftHandClosed"
	LeftHandLasso   input.Control = "LeftHandLasso"
)

// Controls lists the gesture controls indexed like tracking.Gestures.
var Controls = [tracking.GestureCount]input.Control{
	tracking.RightHandOpen:   RightHandOpen,
	tracking.RightHandClosed: RightHandClosed,
	tracking.RightHandLasso:  RightHandLasso,
	tracking.LeftHandOpen:    LeftHandOpen,
	tracking.LeftHandClosed:  LeftHandClosed,
	tracking.LeftHandLasso:   LeftHandLasso,
}

// Controller turns gesture batches from a tracker into button events. It is a tracking.Sink that
// ignores poses and confidences, so it can sit in a tracking.MultiSink next to a pose store.
type Controller struct {
	logger logging.Logger

	mu           sync.RWMutex
	state        tracking.Gestures
	lastEvents   map[input.Control]input.Event
	callbacks    map[input.Control]map[input.EventType]input.ControlFunction
	callbackWait sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	closed       bool
}

var (
	_ input.Controller = (*Controller)(nil)
	_ tracking.Sink    = (*Controller)(nil)
)

// NewController returns a controller with every button released.
func NewController(logger logging.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		logger:     logger,
		lastEvents: make(map[input.Control]input.Event, len(Controls)),
		callbacks:  make(map[input.Control]map[input.EventType]input.ControlFunction),
		ctx:        ctx,
		cancel:     cancel,
	}
	now := time.Now()
	for _, control := range Controls {
		c.lastEvents[control] = input.Event{Time: now, Event: input.Connect, Control: control}
	}
	return c
}

// Controls returns the six gesture buttons.
func (c *Controller) Controls(ctx context.Context) ([]input.Control, error) {
	return append([]input.Control(nil), Controls[:]...), nil
}

// Events returns the latest event for each gesture button.
func (c *Controller) Events(ctx context.Context) (map[input.Control]input.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[input.Control]input.Event, len(c.lastEvents))
	for k, v := range c.lastEvents {
		out[k] = v
	}
	return out, nil
}

// RegisterControlCallback registers ctrlFunc for the control's triggers.
func (c *Controller) RegisterControlCallback(
	ctx context.Context,
	control input.Control,
	triggers []input.EventType,
	ctrlFunc input.ControlFunction,
) error {
	if !isControl(control) {
		return errors.Errorf("unknown gesture control %q", control)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.callbacks[control] == nil {
		c.callbacks[control] = make(map[input.EventType]input.ControlFunction)
	}
	for _, trigger := range triggers {
		if trigger == input.ButtonChange {
			c.callbacks[control][input.ButtonRelease] = ctrlFunc
			c.callbacks[control][input.ButtonPress] = ctrlFunc
		} else {
			c.callbacks[control][trigger] = ctrlFunc
		}
	}
	return nil
}

func isControl(control input.Control) bool {
	for _, c := range Controls {
		if c == control {
			return true
		}
	}
	return false
}

// SendGestures records a gesture batch, firing press and release events for buttons that changed.
func (c *Controller) SendGestures(gestures tracking.Gestures, ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for i, pressed := range gestures {
		if pressed == c.state[i] {
			continue
		}
		ev := input.Event{Time: ts, Event: input.ButtonRelease, Control: Controls[i]}
		if pressed {
			ev.Event = input.ButtonPress
			ev.Value = 1
		}
		c.lastEvents[ev.Control] = ev
		c.logger.Debugw("gesture changed", "control", ev.Control, "event", ev.Event)
		c.execCallback(ev)
	}
	c.state = gestures
}

// SendPose is a no-op.
func (c *Controller) SendPose(int, spatialmath.Pose, time.Time) {}

// SendConfidence is a no-op.
func (c *Controller) SendConfidence(int, float64, time.Time) {}

// execCallback must be called with mu held.
func (c *Controller) execCallback(event input.Event) {
	callbackMap, ok := c.callbacks[event.Control]
	if !ok {
		return
	}
	for _, trigger := range []input.EventType{event.Event, input.AllEvents} {
		callback := callbackMap[trigger]
		if callback == nil {
			continue
		}
		c.callbackWait.Add(1)
		utils.PanicCapturingGo(func() {
			defer c.callbackWait.Done()
			callback(c.ctx, event)
		})
	}
}

// Close releases every pressed button and waits for outstanding callbacks.
func (c *Controller) Close(ctx context.Context) error {
	c.SendGestures(tracking.Gestures{}, time.Now())
	c.mu.Lock()
	c.closed = true
	c.cancel()
	c.mu.Unlock()
	c.callbackWait.Wait()
	return nil
}
