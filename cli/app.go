// Package cli contains the kinect-replay command line tool.
package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/jenourish/bodytrack/tracking/kinect"
)

// Flags.
const (
	flagDebug     = "debug"
	flagLogFile   = "log-file"
	flagConfig    = "config"
	flagRecording = "recording"
	flagFamily    = "family"
	flagRate      = "rate"
	flagListen    = "listen"
	flagFrameLogs = "debug-frames"
	flagOut       = "out"
	flagFrames    = "frames"
	flagLimit     = "limit"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "kinect-replay",
		Usage:           "replay recorded kinect body frames through the body tracker",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotating it as it grows",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "replay a recording through the tracker and summarize what it tracked",
				UsageText: fmt.Sprintf("kinect-replay run --%s FILE [other options]", flagRecording),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagRecording,
						Aliases: []string{"r"},
						Usage:   "recording to replay; without it the configured source is used",
					},
					&cli.StringFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "load configuration from `FILE`",
					},
					&cli.StringFlag{
						Name:  flagFamily,
						Usage: "hardware family (kinect-v1 or kinect-v2); defaults to the recording's",
					},
					&cli.Float64Flag{
						Name:  flagRate,
						Usage: "frames per second to replay at; 0 replays as fast as possible",
					},
					&cli.StringFlag{
						Name:  flagListen,
						Usage: "serve the override panel on `ADDR` until interrupted",
					},
					&cli.BoolFlag{
						Name:  flagFrameLogs,
						Usage: "log skipped frames and ignored overrides whatever the log level",
					},
				},
				Action: RunAction,
			},
			{
				Name:      "inspect",
				Usage:     "print the bodies in every frame of a recording",
				UsageText: fmt.Sprintf("kinect-replay inspect --%s FILE", flagRecording),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagRecording,
						Aliases:  []string{"r"},
						Required: true,
						Usage:    "recording to inspect",
					},
					&cli.IntFlag{
						Name:  flagLimit,
						Usage: "stop after this many frames; 0 prints them all",
					},
				},
				Action: InspectAction,
			},
			{
				Name:      "synth",
				Usage:     "write a scripted two person scene as a recording",
				UsageText: fmt.Sprintf("kinect-replay synth --%s FILE [--%s N]", flagOut, flagFrames),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagOut,
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "recording to write",
					},
					&cli.StringFlag{
						Name:  flagFamily,
						Value: kinect.V2Name,
						Usage: "hardware family (kinect-v1 or kinect-v2)",
					},
					&cli.IntFlag{
						Name:  flagFrames,
						Value: 300,
						Usage: "number of frames to script",
					},
				},
				Action: SynthAction,
			},
		},
	}
}

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}
