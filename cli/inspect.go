package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/jenourish/bodytrack/framesource"
	"github.com/jenourish/bodytrack/framesource/replay"
	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/tracking"
)

// InspectAction prints one row per body present in each frame of a recording.
func InspectAction(c *cli.Context) (err error) {
	logger := newLogger(c, logging.WARN)
	src, err := replay.Open(c.String(flagRecording), replay.Options{}, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, src.Close(c.Context))
	}()

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s (%s)", c.String(flagRecording), src.Family().Name))
	t.AppendHeader(table.Row{"Frame", "Time", "Slot", "ID", "Head", "Left", "Right", "Error"})

	var (
		start            time.Time
		frames, noFrames int
		limit            = c.Int(flagLimit)
	)
	for limit == 0 || frames < limit {
		frame, err := src.NextFrame(c.Context)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, framesource.ErrNoFrame) {
			noFrames++
			continue
		}
		if err != nil {
			return err
		}
		if frames == 0 {
			start = frame.Time
		}
		for _, cand := range frame.Candidates {
			if !cand.Tracked {
				continue
			}
			t.AppendRow(bodyRow(frames, frame.Time.Sub(start), cand))
		}
		frames++
	}
	t.AppendFooter(table.Row{frames, "", "", "", "", "", "", fmt.Sprintf("%d polls without a frame", noFrames)})
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

func bodyRow(frame int, offset time.Duration, cand tracking.Candidate) table.Row {
	errText := ""
	if cand.Err != nil {
		errText = cand.Err.Error()
	}
	head := cand.ReferencePosition
	return table.Row{
		frame,
		offset.Round(time.Millisecond),
		cand.Slot,
		cand.StableID,
		fmt.Sprintf("(%.2f, %.2f, %.2f)", head.X, head.Y, head.Z),
		cand.LeftHand,
		cand.RightHand,
		errText,
	}
}
