package cli

import (
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/jenourish/bodytrack/framesource"
	"github.com/jenourish/bodytrack/framesource/fake"
	"github.com/jenourish/bodytrack/framesource/replay"
	"github.com/jenourish/bodytrack/tracking/kinect"
)

// synthFrameTicks is one 30Hz frame in hardware ticks.
const synthFrameTicks = int64(time.Second/30/time.Microsecond) * framesource.TicksPerMicrosecond

// SynthAction writes the scripted fake scene as a recording.
func SynthAction(c *cli.Context) error {
	family, err := kinect.FamilyByName(c.String(flagFamily))
	if err != nil {
		return err
	}
	n := c.Int(flagFrames)
	if n <= 0 {
		return errors.Errorf("--%s must be positive, got %d", flagFrames, n)
	}

	out := c.String(flagOut)
	w, err := replay.Create(out, family.Name)
	if err != nil {
		return err
	}
	for i, frame := range fake.Scene(family, n) {
		if err := w.WriteFrame(int64(i)*synthFrameTicks, frame.Candidates); err != nil {
			return multierr.Combine(err, w.Close())
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	printf(c.App.Writer, "wrote %d %s frames to %s", n, family.Name, out)
	return nil
}
