package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// testAppender writes console lines through a testing.TB so they are attributed to the test that
// produced them.
type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender logging to tb.
func NewTestAppender(tb testing.TB) Appender {
	return testAppender{tb}
}

func (app testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	app.tb.Helper()
	line, err := consoleLine(entry, fields)
	app.tb.Log(line)
	return err
}

func (app testAppender) Sync() error {
	return nil
}
