// Package main is the kinect-replay command itself.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jenourish/bodytrack/cli"
	"github.com/jenourish/bodytrack/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		logging.NewLogger("kinect-replay").Errorw("kinect-replay failed", "error", err)
		os.Exit(1)
	}
}
