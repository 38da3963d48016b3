package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/atomic"

	"github.com/jenourish/bodytrack/components/posetracker/kinect"
	"github.com/jenourish/bodytrack/tracking"
)

// countingMeter keeps the running total of every counter the tracker creates so a run can be
// summarized without an exporter.
type countingMeter struct {
	noop.Meter

	mu       sync.Mutex
	counters map[string]*atomic.Int64
}

func newCountingMeter() *countingMeter {
	return &countingMeter{counters: map[string]*atomic.Int64{}}
}

func (m *countingMeter) Int64Counter(name string, _ ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, ok := m.counters[name]
	if !ok {
		total = atomic.NewInt64(0)
		m.counters[name] = total
	}
	return &countingCounter{total: total}, nil
}

func (m *countingMeter) count(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if total, ok := m.counters[name]; ok {
		return total.Load()
	}
	return 0
}

type countingCounter struct {
	noop.Int64Counter
	total *atomic.Int64
}

func (c *countingCounter) Add(_ context.Context, incr int64, _ ...metric.AddOption) {
	c.total.Add(incr)
}

type runSummary struct {
	family    string
	stats     kinect.Stats
	commits   int64
	overrides int64
	losses    int64
	skipped   int64
	gestures  int64
	phase     tracking.Phase
	states    []tracking.CandidateState
	session   tracking.SessionInfo
	active    bool
}

func (s runSummary) render() string {
	t := table.NewWriter()
	t.SetTitle("Replay summary (" + s.family + ")")
	t.AppendRows([]table.Row{
		{"Frames", s.stats.Frames},
		{"Polls without a frame", s.stats.NoFrames},
		{"Read errors", s.stats.Errors},
		{"Commits", s.commits},
		{"Overrides", s.overrides},
		{"Losses", s.losses},
		{"Skipped frames", s.skipped},
		{"Gesture presses", s.gestures},
		{"Final phase", s.phase},
	})
	if s.active {
		t.AppendRow(table.Row{"Tracked body", s.session.StableID})
		t.AppendRow(table.Row{"Tracked slot", s.session.Slot})
	}
	t.AppendSeparator()
	for slot, state := range s.states {
		t.AppendRow(table.Row{fmt.Sprintf("Slot %d", slot), state})
	}
	return t.Render()
}
