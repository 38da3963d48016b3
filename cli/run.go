package cli

import (
	"context"
	"io"
	"net"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/jenourish/bodytrack/components/posetracker/kinect"
	"github.com/jenourish/bodytrack/config"
	"github.com/jenourish/bodytrack/framesource/replay"
	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/web/override"
)

// newLogger builds the process logger from the global flags. level applies unless --debug is set.
func newLogger(c *cli.Context, level logging.Level) logging.Logger {
	logger := logging.NewLogger("kinect-replay")
	logger.SetLevel(level)
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	}
	return logger
}

// addFileAppender tees logger into a rotated log file and returns the file's closer.
func addFileAppender(logger logging.Logger, cfg logging.FileAppenderConfig) io.Closer {
	appender, closer := logging.NewFileAppender(cfg)
	logger.AddAppender(appender)
	return closer
}

// RunAction replays frames through the kinect pose tracker and prints what it tracked.
func RunAction(c *cli.Context) (err error) {
	conf, err := config.Load(c.String(flagConfig))
	if err != nil {
		return err
	}
	logger := newLogger(c, conf.Log.Level)
	if path := c.String(flagLogFile); path != "" {
		conf.Log.File = path
	}
	if conf.Log.File != "" {
		closer := addFileAppender(logger, conf.Log.FileAppenderConfig())
		defer func() {
			err = multierr.Combine(err, logger.Sync(), closer.Close())
		}()
	}

	if err := applyRunFlags(c, &conf.Tracker, logger); err != nil {
		return err
	}
	if c.IsSet(flagListen) {
		conf.Web.Listen = c.String(flagListen)
	}
	fast := c.IsSet(flagRate) && c.Float64(flagRate) == 0

	meter := newCountingMeter()
	opts := []kinect.Option{kinect.WithMeter(meter)}
	if fast {
		opts = append(opts, kinect.WithoutPolling())
	}
	runCtx := c.Context
	if c.Bool(flagFrameLogs) {
		runCtx = logging.EnableDebugMode(runCtx, "kinect-replay")
	}
	tracker, err := kinect.NewTracker(runCtx, "kinect", &conf.Tracker, logger, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(runCtx)
	defer cancel()
	presses, err := watchGestures(ctx, tracker.Gestures(), logger)
	if err != nil {
		return multierr.Combine(err, tracker.Close(ctx))
	}

	served := make(chan error, 1)
	if conf.Web.Listen != "" {
		listener, err := net.Listen("tcp", conf.Web.Listen)
		if err != nil {
			return multierr.Combine(err, tracker.Close(ctx))
		}
		handler := override.NewHandler(tracker, tracker, logger.Sublogger("override"))
		utils.PanicCapturingGo(func() {
			served <- override.Serve(ctx, listener, handler, logger)
		})
	} else {
		close(served)
	}

	if fast {
		err = drain(ctx, tracker)
	} else {
		select {
		case <-tracker.Done():
		case <-ctx.Done():
		}
	}
	if err == nil && conf.Web.Listen != "" && ctx.Err() == nil {
		logger.Infow("replay finished, serving the override panel until interrupted", "listen", conf.Web.Listen)
		<-ctx.Done()
	}
	cancel()
	err = multierr.Combine(err, <-served, tracker.Close(context.Background()))

	session, active := tracker.Session()
	summary := runSummary{
		family:    tracker.Family().Name,
		stats:     tracker.Stats(),
		commits:   meter.count("bodytrack.commits"),
		overrides: meter.count("bodytrack.overrides"),
		losses:    meter.count("bodytrack.losses"),
		skipped:   meter.count("bodytrack.frames.skipped"),
		gestures:  presses.Load(),
		phase:     tracker.Phase(),
		states:    tracker.CandidateStates(),
		session:   session,
		active:    active,
	}
	printf(c.App.Writer, "%s", summary.render())
	return err
}

// applyRunFlags points the tracker config at --recording and applies --family and --rate.
func applyRunFlags(c *cli.Context, conf *kinect.Config, logger logging.Logger) error {
	if path := c.String(flagRecording); path != "" {
		conf.Source = kinect.SourceConfig{Type: kinect.SourceReplay, Path: path}
		if !c.IsSet(flagFamily) {
			src, err := replay.Open(path, replay.Options{}, logger)
			if err != nil {
				return err
			}
			conf.Family = src.Family().Name
			if err := src.Close(c.Context); err != nil {
				return err
			}
		}
	}
	if c.IsSet(flagFamily) {
		conf.Family = c.String(flagFamily)
	}
	if c.IsSet(flagRate) {
		rate := c.Float64(flagRate)
		if rate < 0 {
			return errors.Errorf("--%s must not be negative, got %v", flagRate, rate)
		}
		if rate > 0 {
			conf.PollHz = rate
		}
	}
	return nil
}

// drain steps the tracker until its source runs out or ctx is done.
func drain(ctx context.Context, tracker *kinect.Tracker) error {
	for ctx.Err() == nil {
		if err := tracker.Step(ctx); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
	return nil
}
