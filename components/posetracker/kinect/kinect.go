// Package kinect implements a pose tracker that follows one body seen by a Kinect v1 or v2
// sensor.
package kinect

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/jenourish/bodytrack/components/input"
	"github.com/jenourish/bodytrack/components/input/gesture"
	"github.com/jenourish/bodytrack/components/posetracker"
	"github.com/jenourish/bodytrack/framesource"
	"github.com/jenourish/bodytrack/framesource/fake"
	"github.com/jenourish/bodytrack/framesource/replay"
	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/tracking"
	"github.com/jenourish/bodytrack/utils"
)

// Stats counts what the poll loop has seen.
type Stats struct {
	Polls     int64
	Frames    int64
	NoFrames  int64
	Errors    int64
	Exhausted bool
}

// Option customizes a Tracker.
type Option func(*options)

type options struct {
	clock   clock.Clock
	source  framesource.Source
	sinks   []tracking.Sink
	meter   metric.Meter
	polling bool
}

// WithClock drives polling and replay timestamps from clk.
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

// WithSource replaces the configured frame source.
func WithSource(src framesource.Source) Option {
	return func(o *options) { o.source = src }
}

// WithSink adds a sink that receives every emission after the pose store and gesture controller.
func WithSink(sink tracking.Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, sink) }
}

// WithMeter records tracker metrics on m.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithoutPolling leaves frame pulls to the caller through Step.
func WithoutPolling() Option {
	return func(o *options) { o.polling = false }
}

// Tracker is the kinect pose tracker component.
type Tracker struct {
	name   string
	logger logging.Logger
	clock  clock.Clock

	source   framesource.Source
	tracker  *tracking.Tracker
	store    *posetracker.Store
	gestures *gesture.Controller
	workers  utils.StoppableWorkers

	polls, frames, noFrames, errs atomic.Int64
	exhausted                     atomic.Bool
	done                          chan struct{}
	doneOnce                      sync.Once
}

var _ posetracker.PoseTracker = (*Tracker)(nil)

// NewTracker builds the component from conf and, unless WithoutPolling is given, starts polling
// its frame source. If ctx was marked with logging.EnableDebugMode, so are the polls.
func NewTracker(ctx context.Context, name string, conf *Config, logger logging.Logger, opts ...Option) (*Tracker, error) {
	if _, err := conf.Validate(name); err != nil {
		return nil, err
	}
	o := options{clock: clock.New(), polling: true}
	for _, opt := range opts {
		opt(&o)
	}

	trackerCfg, err := conf.TrackerConfig()
	if err != nil {
		return nil, err
	}
	trackerCfg.Meter = o.meter

	src := o.source
	if src == nil {
		src, err = newSource(conf, trackerCfg.Family, o.clock, logger)
		if err != nil {
			return nil, err
		}
	}

	t := &Tracker{
		name:     name,
		logger:   logger,
		clock:    o.clock,
		source:   src,
		store:    posetracker.NewStore(name, trackerCfg.Family),
		gestures: gesture.NewController(logger.Sublogger("gestures")),
		done:     make(chan struct{}),
	}
	sink := append(tracking.MultiSink{t.store, t.gestures}, o.sinks...)
	t.tracker, err = tracking.NewTracker(trackerCfg, sink, logger.Sublogger("tracking"))
	if err != nil {
		return nil, multierr.Combine(err, src.Close(ctx), t.gestures.Close(ctx))
	}

	if o.polling {
		interval := conf.PollInterval()
		debug := logging.IsDebugMode(ctx)
		t.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
			if debug {
				ctx = logging.EnableDebugMode(ctx, name)
			}
			t.poll(ctx, interval)
		})
	}
	logger.Infow("kinect pose tracker started", "family", trackerCfg.Family.Name, "poll_interval", conf.PollInterval())
	return t, nil
}

func newSource(conf *Config, family tracking.Family, clk clock.Clock, logger logging.Logger) (framesource.Source, error) {
	switch conf.Source.Type {
	case SourceReplay:
		src, err := replay.Open(conf.Source.Path, replay.Options{Loop: conf.Source.Loop, Clock: clk}, logger.Sublogger("replay"))
		if err != nil {
			return nil, err
		}
		if src.Family().Name != family.Name {
			return nil, multierr.Combine(
				errors.Errorf("recording %s is %s but the tracker is configured for %s", conf.Source.Path, src.Family().Name, family.Name),
				src.Close(context.Background()))
		}
		return src, nil
	case SourceFake:
		n := conf.Source.Frames
		if n == 0 {
			n = DefaultFakeFrameCount
		}
		return fake.NewSource(clk, fake.Scene(family, n), conf.Source.Loop), nil
	default:
		return nil, errors.Errorf("unknown source type %q", conf.Source.Type)
	}
}

func (t *Tracker) poll(ctx context.Context, interval time.Duration) {
	ticker := t.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		case <-ticker.C:
		}
		if err := t.Step(ctx); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
			t.logger.Warnw("error reading frame", "error", err)
		}
	}
}

// Step pulls one frame from the source and runs it through the tracker. A poll that finds no new
// frame is not an error. Once the source is exhausted Step returns io.EOF and Done is closed.
func (t *Tracker) Step(ctx context.Context) error {
	t.polls.Inc()
	frame, err := t.source.NextFrame(ctx)
	switch {
	case err == nil:
	case errors.Is(err, framesource.ErrNoFrame):
		t.noFrames.Inc()
		return nil
	case errors.Is(err, io.EOF):
		t.doneOnce.Do(func() {
			t.exhausted.Store(true)
			t.logger.Infow("frame source exhausted", "frames", t.frames.Load())
			close(t.done)
		})
		return io.EOF
	default:
		t.errs.Inc()
		return err
	}

	t.frames.Inc()
	before, _ := t.tracker.Session()
	t.tracker.Process(ctx, frame)
	// a new session that has not emitted yet must not serve the previous body's joints
	if after, ok := t.tracker.Session(); ok && after.ID != before.ID && after.Offset == (tracking.ReferenceOffset{}) {
		t.store.Reset()
	}
	return nil
}

// Name returns the component name, which is also the frame its poses are expressed in.
func (t *Tracker) Name() string {
	return t.name
}

// Poses returns the tracked body's latest normalized joint poses keyed by joint name, plus the
// sensor origin under "reference".
func (t *Tracker) Poses(ctx context.Context, bodyNames []string, extra map[string]interface{}) (posetracker.BodyToPoseInFrame, error) {
	_, span := trace.StartSpan(ctx, "kinect::Tracker::Poses")
	defer span.End()
	if _, ok := t.tracker.Session(); !ok || t.store.Len() == 0 {
		return nil, posetracker.ErrNoBody
	}
	return t.store.Poses(bodyNames)
}

// Gestures returns the controller whose buttons follow the tracked body's hand states.
func (t *Tracker) Gestures() input.Controller {
	return t.gestures
}

// RequestTrackBody switches tracking to the body in slot on the next frame.
func (t *Tracker) RequestTrackBody(slot int) error {
	return t.tracker.RequestTrackBody(slot)
}

// CandidateStates returns every slot's selection state.
func (t *Tracker) CandidateStates() []tracking.CandidateState {
	return t.tracker.CandidateStates()
}

// Phase returns the tracker's phase.
func (t *Tracker) Phase() tracking.Phase {
	return t.tracker.Phase()
}

// Session returns the current tracking session, if any.
func (t *Tracker) Session() (tracking.SessionInfo, bool) {
	return t.tracker.Session()
}

// Family returns the configured hardware family.
func (t *Tracker) Family() tracking.Family {
	return t.tracker.Family()
}

// Stats returns the poll loop counters.
func (t *Tracker) Stats() Stats {
	return Stats{
		Polls:     t.polls.Load(),
		Frames:    t.frames.Load(),
		NoFrames:  t.noFrames.Load(),
		Errors:    t.errs.Load(),
		Exhausted: t.exhausted.Load(),
	}
}

// Done is closed once a finite frame source runs out.
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}

// Close stops polling and releases the frame source.
func (t *Tracker) Close(ctx context.Context) error {
	if t.workers != nil {
		t.workers.Stop()
	}
	return multierr.Combine(t.source.Close(ctx), t.gestures.Close(ctx))
}
