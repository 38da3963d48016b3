package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/jenourish/bodytrack/components/posetracker/kinect"
	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/tracking"
	trackingkinect "github.com/jenourish/bodytrack/tracking/kinect"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

func TestLoadDefaults(t *testing.T) {
	conf, err := Load("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.Tracker, test.ShouldResemble, kinect.Config{
		Family:               trackingkinect.V2Name,
		PollHz:               kinect.DefaultPollHz,
		MaxPlayspaceDistance: tracking.DefaultMaxPlayspaceDistance,
		TimeDecaySec:         5,
		CommitThreshold:      tracking.DefaultCommitThreshold,
		Source:               kinect.SourceConfig{Type: kinect.SourceFake, Frames: kinect.DefaultFakeFrameCount},
	})
	test.That(t, conf.Web.Listen, test.ShouldEqual, "")
	test.That(t, conf.Log.Level, test.ShouldEqual, logging.INFO)
	test.That(t, conf.Log.FileAppenderConfig(), test.ShouldResemble, logging.FileAppenderConfig{MaxSizeMB: 100, MaxBackups: 3})

	trackerConf, err := conf.Tracker.TrackerConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, trackerConf.TimeDecay, test.ShouldEqual, 5*time.Second)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "bodytrack.json", `{
		"tracker": {
			"family": "kinect-v1",
			"commit_threshold": 0.5,
			"source": {"type": "replay", "path": "/tmp/session.jsonl", "loop": true}
		},
		"web": {"listen": "localhost:8080"},
		"log": {"level": "debug", "file": "/tmp/bodytrack.log"}
	}`)
	conf, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.Tracker.Family, test.ShouldEqual, trackingkinect.V1Name)
	test.That(t, conf.Tracker.CommitThreshold, test.ShouldEqual, 0.5)
	test.That(t, conf.Tracker.PollHz, test.ShouldEqual, kinect.DefaultPollHz)
	test.That(t, conf.Tracker.Source, test.ShouldResemble, kinect.SourceConfig{
		Type:   kinect.SourceReplay,
		Path:   "/tmp/session.jsonl",
		Loop:   true,
		Frames: kinect.DefaultFakeFrameCount,
	})
	test.That(t, conf.Web.Listen, test.ShouldEqual, "localhost:8080")
	test.That(t, conf.Log.Level, test.ShouldEqual, logging.DEBUG)
	test.That(t, conf.Log.File, test.ShouldEqual, "/tmp/bodytrack.log")
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "bodytrack.yaml", `
tracker:
  family: kinect-v2
  poll_hz: 15
  max_playspace_distance: 4.5
  source:
    type: fake
    frames: 90
log:
  level: warn
`)
	conf, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.Tracker.PollHz, test.ShouldEqual, 15.)
	test.That(t, conf.Tracker.MaxPlayspaceDistance, test.ShouldEqual, 4.5)
	test.That(t, conf.Tracker.Source.Frames, test.ShouldEqual, 90)
	test.That(t, conf.Log.Level, test.ShouldEqual, logging.WARN)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BODYTRACK_TRACKER_FAMILY", "kinect-v1")
	t.Setenv("BODYTRACK_TRACKER_TIME_DECAY_SEC", "2.5")
	t.Setenv("BODYTRACK_TRACKER_SOURCE_FRAMES", "120")
	t.Setenv("BODYTRACK_WEB_LISTEN", ":9090")

	path := writeFile(t, "bodytrack.json", `{"tracker": {"family": "kinect-v2"}}`)
	conf, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.Tracker.Family, test.ShouldEqual, trackingkinect.V1Name)
	test.That(t, conf.Tracker.TimeDecaySec, test.ShouldEqual, 2.5)
	test.That(t, conf.Tracker.Source.Frames, test.ShouldEqual, 120)
	test.That(t, conf.Web.Listen, test.ShouldEqual, ":9090")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "error reading config file")

	_, err = Load(writeFile(t, "typo.json", `{"tracker": {"famly": "kinect-v2"}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "famly")

	_, err = Load(writeFile(t, "level.json", `{"log": {"level": "loud"}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown log level")

	_, err = Load(writeFile(t, "family.json", `{"tracker": {"family": "kinect-v3"}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "kinect-v3")

	_, err = Load(writeFile(t, "replay.json", `{"tracker": {"source": {"type": "replay"}}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"source.path" is required`)

	_, err = Load(writeFile(t, "backups.json", `{"log": {"max_backups": -1}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_backups must not be negative")
}
