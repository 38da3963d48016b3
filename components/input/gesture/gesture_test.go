package gesture

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"github.com/jenourish/bodytrack/components/input"
	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/tracking"
)

type eventLog struct {
	mu     sync.Mutex
	events []input.Event
}

func (l *eventLog) record(ctx context.Context, ev input.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func TestGestureEvents(t *testing.T) {
	ctx := context.Background()
	c := NewController(logging.NewTestLogger(t))

	controls, err := c.Controls(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, controls, test.ShouldHaveLength, tracking.GestureCount)

	var presses, changes, all eventLog
	test.That(t, c.RegisterControlCallback(ctx, RightHandOpen, []input.EventType{input.ButtonPress}, presses.record), test.ShouldBeNil)
	test.That(t, c.RegisterControlCallback(ctx, LeftHandLasso, []input.EventType{input.ButtonChange}, changes.record), test.ShouldBeNil)
	test.That(t, c.RegisterControlCallback(ctx, LeftHandLasso, []input.EventType{input.AllEvents}, all.record), test.ShouldBeNil)
	test.That(t, c.RegisterControlCallback(ctx, "Thumbs", []input.EventType{input.ButtonPress}, presses.record), test.ShouldNotBeNil)

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.SendGestures(tracking.GesturesFromHands(tracking.HandLasso, tracking.HandOpen), ts)
	// unchanged batches fire nothing
	c.SendGestures(tracking.GesturesFromHands(tracking.HandLasso, tracking.HandOpen), ts.Add(time.Millisecond))
	c.SendGestures(tracking.GesturesFromHands(tracking.HandClosed, tracking.HandOpen), ts.Add(2*time.Millisecond))

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, presses.len(), test.ShouldEqual, 1)
		test.That(tb, changes.len(), test.ShouldEqual, 2)
		test.That(tb, all.len(), test.ShouldEqual, 2)
	})

	events, err := c.Events(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, events[RightHandOpen].Event, test.ShouldEqual, input.ButtonPress)
	test.That(t, events[RightHandOpen].Value, test.ShouldEqual, 1.0)
	test.That(t, events[RightHandOpen].Time, test.ShouldEqual, ts)
	test.That(t, events[LeftHandLasso].Event, test.ShouldEqual, input.ButtonRelease)
	test.That(t, events[LeftHandClosed].Event, test.ShouldEqual, input.ButtonPress)
	test.That(t, events[RightHandLasso].Event, test.ShouldEqual, input.Connect)

	test.That(t, c.Close(ctx), test.ShouldBeNil)
	events, err = c.Events(ctx)
	test.That(t, err, test.ShouldBeNil)
	for _, ev := range events {
		test.That(t, ev.Value, test.ShouldEqual, 0.0)
	}

	// closed controllers drop batches
	c.SendGestures(tracking.Gestures{true}, ts.Add(time.Second))
	events, _ = c.Events(ctx)
	test.That(t, events[RightHandOpen].Value, test.ShouldEqual, 0.0)
}

func TestCallbackPanicIsCaptured(t *testing.T) {
	ctx := context.Background()
	c := NewController(logging.NewTestLogger(t))
	var after eventLog
	test.That(t, c.RegisterControlCallback(ctx, RightHandClosed, []input.EventType{input.ButtonPress}, func(context.Context, input.Event) {
		panic("boom")
	}), test.ShouldBeNil)
	test.That(t, c.RegisterControlCallback(ctx, RightHandClosed, []input.EventType{input.AllEvents}, after.record), test.ShouldBeNil)

	c.SendGestures(tracking.Gestures{tracking.RightHandClosed: true}, time.Now())
	test.That(t, c.Close(ctx), test.ShouldBeNil)
	test.That(t, after.len(), test.ShouldEqual, 2)
}
