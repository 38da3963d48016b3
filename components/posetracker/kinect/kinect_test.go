package kinect

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"github.com/jenourish/bodytrack/components/input"
	"github.com/jenourish/bodytrack/components/input/gesture"
	"github.com/jenourish/bodytrack/components/posetracker"
	"github.com/jenourish/bodytrack/framesource"
	"github.com/jenourish/bodytrack/framesource/fake"
	"github.com/jenourish/bodytrack/framesource/replay"
	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/spatialmath"
	"github.com/jenourish/bodytrack/testutils/inject"
	"github.com/jenourish/bodytrack/tracking"
	"github.com/jenourish/bodytrack/tracking/kinect"
)

const testName = "kinect1"

func fakeConfig() *Config {
	return &Config{Family: kinect.V2Name, Source: SourceConfig{Type: SourceFake}}
}

// scripted serves results in order, then io.EOF.
func scripted(results ...func() (tracking.Frame, error)) (*inject.FrameSource, *int) {
	closed := 0
	next := 0
	return &inject.FrameSource{
		NextFrameFunc: func(ctx context.Context) (tracking.Frame, error) {
			if next >= len(results) {
				return tracking.Frame{}, io.EOF
			}
			next++
			return results[next-1]()
		},
		CloseFunc: func(ctx context.Context) error {
			closed++
			return nil
		},
	}, &closed
}

func frameOf(ts time.Time, cands ...tracking.Candidate) func() (tracking.Frame, error) {
	return func() (tracking.Frame, error) {
		return tracking.Frame{Time: ts, Candidates: cands}, nil
	}
}

func failWith(err error) func() (tracking.Frame, error) {
	return func() (tracking.Frame, error) {
		return tracking.Frame{}, err
	}
}

func TestStep(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	f := kinect.V2()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	head := r3.Vector{X: 0.2, Y: 0.5, Z: 2.2}

	src, closed := scripted(
		failWith(framesource.ErrNoFrame),
		failWith(errors.New("usb hiccup")),
		frameOf(start, tracking.Candidate{Slot: 0}),
		frameOf(start.Add(time.Second), fake.Person(f, 3, 12, head, tracking.HandClosed)),
	)
	tr, err := NewTracker(ctx, testName, fakeConfig(), logger, WithSource(src), WithoutPolling())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.Name(), test.ShouldEqual, testName)
	test.That(t, tr.Family().Name, test.ShouldEqual, kinect.V2Name)

	test.That(t, tr.Step(ctx), test.ShouldBeNil)
	test.That(t, tr.Step(ctx), test.ShouldBeError, "usb hiccup")
	test.That(t, tr.Step(ctx), test.ShouldBeNil)
	_, err = tr.Poses(ctx, nil, nil)
	test.That(t, err, test.ShouldEqual, posetracker.ErrNoBody)
	test.That(t, tr.Phase(), test.ShouldEqual, tracking.Idle)

	test.That(t, tr.Step(ctx), test.ShouldBeNil)
	test.That(t, tr.Phase(), test.ShouldEqual, tracking.Tracking)
	sess, ok := tr.Session()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, sess.Slot, test.ShouldEqual, 3)
	test.That(t, tr.CandidateStates()[3], test.ShouldEqual, tracking.ShouldBeTracked)

	poses, err := tr.Poses(ctx, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, poses, test.ShouldHaveLength, kinect.V2JointCount+1)
	test.That(t, poses["head"].Pose.Point(), test.ShouldResemble, r3.Vector{})
	test.That(t, poses["head"].Parent, test.ShouldEqual, testName)
	test.That(t, poses["head"].Time, test.ShouldEqual, start.Add(time.Second))
	test.That(t, poses["reference"].Pose.Point(), test.ShouldResemble, head.Mul(-1))

	some, err := tr.Poses(ctx, []string{"hand_left", "hand_right"}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, some, test.ShouldHaveLength, 2)
	_, err = tr.Poses(ctx, []string{"antenna"}, nil)
	test.That(t, err, test.ShouldNotBeNil)

	events, err := tr.Gestures().Events(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, events[gesture.RightHandClosed].Event, test.ShouldEqual, input.ButtonPress)
	test.That(t, events[gesture.LeftHandClosed].Event, test.ShouldEqual, input.ButtonPress)
	test.That(t, events[gesture.LeftHandOpen].Event, test.ShouldEqual, input.Connect)

	test.That(t, tr.Step(ctx), test.ShouldEqual, io.EOF)
	test.That(t, tr.Step(ctx), test.ShouldEqual, io.EOF)
	select {
	case <-tr.Done():
	default:
		t.Fatal("expected Done to be closed")
	}
	test.That(t, tr.Stats(), test.ShouldResemble, Stats{Polls: 6, Frames: 2, NoFrames: 1, Errors: 1, Exhausted: true})

	test.That(t, tr.Close(ctx), test.ShouldBeNil)
	test.That(t, *closed, test.ShouldEqual, 1)
}

func TestNewSessionDropsOldJoints(t *testing.T) {
	ctx := context.Background()
	f := kinect.V2()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	a := fake.Person(f, 0, 1, r3.Vector{Z: 2}, tracking.HandOpen)
	b := fake.Person(f, 2, 2, r3.Vector{Z: 3}, tracking.HandOpen)
	failedB := b
	failedB.Err = errors.New("hand state read failed")
	src, _ := scripted(
		frameOf(start, a, b),
		frameOf(start.Add(time.Second), a, failedB),
		frameOf(start.Add(2*time.Second), a, b),
	)
	tr, err := NewTracker(ctx, testName, fakeConfig(), logging.NewTestLogger(t), WithSource(src), WithoutPolling())
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, tr.Close(ctx), test.ShouldBeNil)
	}()

	test.That(t, tr.Step(ctx), test.ShouldBeNil)
	_, err = tr.Poses(ctx, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, tr.RequestTrackBody(2), test.ShouldBeNil)
	test.That(t, tr.Step(ctx), test.ShouldBeNil)
	sess, _ := tr.Session()
	test.That(t, sess.Slot, test.ShouldEqual, 2)
	_, err = tr.Poses(ctx, nil, nil)
	test.That(t, err, test.ShouldEqual, posetracker.ErrNoBody)

	test.That(t, tr.Step(ctx), test.ShouldBeNil)
	poses, err := tr.Poses(ctx, []string{"head"}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, poses["head"].Pose.Point(), test.ShouldResemble, r3.Vector{})
	test.That(t, errors.Is(tr.RequestTrackBody(9), tracking.ErrSlotOutOfRange), test.ShouldBeTrue)
}

func TestPolling(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	conf := fakeConfig()
	conf.PollHz = 10
	conf.Source.Frames = 50

	tr, err := NewTracker(ctx, testName, conf, logging.NewTestLogger(t), WithClock(clk))
	test.That(t, err, test.ShouldBeNil)

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		clk.Add(100 * time.Millisecond)
		test.That(tb, tr.Phase(), test.ShouldEqual, tracking.Tracking)
	})
	test.That(t, tr.Stats().Frames, test.ShouldBeGreaterThan, 0)
	test.That(t, tr.Close(ctx), test.ShouldBeNil)
}

func TestPollingCarriesDebugMode(t *testing.T) {
	clk := clock.NewMock()
	logger, logs := logging.NewObservedTestLogger(t)
	logger.SetLevel(logging.INFO)
	f := kinect.V2()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	body := fake.Person(f, 2, 5, r3.Vector{Z: 2}, tracking.HandOpen)
	failed := body
	failed.Err = errors.New("orientations unavailable")
	src, _ := scripted(frameOf(start, body), frameOf(start.Add(time.Second), failed))

	ctx := logging.EnableDebugMode(context.Background(), "test")
	conf := fakeConfig()
	conf.PollHz = 10
	tr, err := NewTracker(ctx, testName, conf, logger, WithSource(src), WithClock(clk))
	test.That(t, err, test.ShouldBeNil)
	defer tr.Close(context.Background())

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		clk.Add(100 * time.Millisecond)
		test.That(tb, logs.FilterMessage("skipping frame on read failure").Len(), test.ShouldEqual, 1)
	})
	test.That(t, logs.FilterMessage("skipping frame on read failure").All()[0].Level.String(), test.ShouldEqual, "debug")
}

func TestReplaySource(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()

	record := func(name string, f tracking.Family) string {
		path := filepath.Join(dir, name)
		w, err := replay.Create(path, f.Name)
		test.That(t, err, test.ShouldBeNil)
		for i, frame := range fake.Scene(f, 60) {
			test.That(t, w.WriteFrame(int64(i)*333_333, frame.Candidates), test.ShouldBeNil)
		}
		test.That(t, w.Close(), test.ShouldBeNil)
		return path
	}
	v2 := record("v2.jsonl", kinect.V2())

	conf := &Config{Family: kinect.V2Name, Source: SourceConfig{Type: SourceReplay, Path: v2}}
	tr, err := NewTracker(ctx, testName, conf, logger, WithoutPolling())
	test.That(t, err, test.ShouldBeNil)
	for {
		if err := tr.Step(ctx); err != nil {
			test.That(t, err, test.ShouldEqual, io.EOF)
			break
		}
	}
	test.That(t, tr.Stats().Frames, test.ShouldEqual, int64(60))
	sess, ok := tr.Session()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, sess.StableID, test.ShouldEqual, uint64(fake.StanderID))
	test.That(t, tr.Close(ctx), test.ShouldBeNil)

	v1 := record("v1.jsonl", kinect.V1())
	conf.Source.Path = v1
	_, err = NewTracker(ctx, testName, conf, logger, WithoutPolling())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "is kinect-v1 but the tracker is configured for kinect-v2")

	conf.Source.Path = filepath.Join(dir, "missing.jsonl")
	_, err = NewTracker(ctx, testName, conf, logger, WithoutPolling())
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewTracker(ctx, testName, &Config{Family: kinect.V2Name}, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestExtraSink(t *testing.T) {
	ctx := context.Background()
	var gestures []tracking.Gestures
	sink := &inject.Sink{
		SendPoseFunc:       func(int, spatialmath.Pose, time.Time) {},
		SendConfidenceFunc: func(int, float64, time.Time) {},
		SendGesturesFunc: func(g tracking.Gestures, _ time.Time) {
			gestures = append(gestures, g)
		},
	}
	f := kinect.V2()
	src, _ := scripted(frameOf(time.Now(), fake.Person(f, 1, 5, r3.Vector{Z: 2}, tracking.HandLasso)))
	tr, err := NewTracker(ctx, testName, fakeConfig(), logging.NewTestLogger(t), WithSource(src), WithSink(sink), WithoutPolling())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.Step(ctx), test.ShouldBeNil)
	test.That(t, gestures, test.ShouldResemble, []tracking.Gestures{{tracking.RightHandLasso: true, tracking.LeftHandLasso: true}})
	test.That(t, tr.Close(ctx), test.ShouldBeNil)
}
