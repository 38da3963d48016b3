package tracking

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/jenourish/bodytrack/tracking"

type trackerMetrics struct {
	frames    metric.Int64Counter
	commits   metric.Int64Counter
	losses    metric.Int64Counter
	overrides metric.Int64Counter
	skipped   metric.Int64Counter
}

func newTrackerMetrics(m metric.Meter, family string) (*trackerMetrics, metric.MeasurementOption, error) {
	if m == nil {
		m = otel.Meter(instrumentationName)
	}
	var (
		tm  trackerMetrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&tm.frames, "bodytrack.frames", "Frames processed"},
		{&tm.commits, "bodytrack.commits", "Bodies committed by scoring"},
		{&tm.losses, "bodytrack.losses", "Committed bodies lost"},
		{&tm.overrides, "bodytrack.overrides", "Bodies committed by manual override"},
		{&tm.skipped, "bodytrack.frames.skipped", "Committed frames skipped on read failure"},
	}
	for _, c := range counters {
		*c.dst, err = m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "creating %s counter", c.name)
		}
	}
	return &tm, metric.WithAttributes(attribute.String("family", family)), nil
}

func (tm *trackerMetrics) record(ctx context.Context, result classification, skipped bool, attrs metric.MeasurementOption) {
	tm.frames.Add(ctx, 1, attrs)
	switch {
	case result.overridden:
		tm.overrides.Add(ctx, 1, attrs)
	case result.committed:
		tm.commits.Add(ctx, 1, attrs)
	}
	if result.released {
		tm.losses.Add(ctx, 1, attrs)
	}
	if skipped {
		tm.skipped.Add(ctx, 1, attrs)
	}
}
