package kinect

import (
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/jenourish/bodytrack/tracking"
	"github.com/jenourish/bodytrack/tracking/kinect"
)

// Frame source types.
const (
	SourceReplay = "replay"
	SourceFake   = "fake"
)

// Defaults applied to unset config fields.
const (
	DefaultPollHz         = 30.0
	DefaultFakeFrameCount = 300
	// MaxPollHz bounds poll_hz so the poll interval stays a usable ticker period.
	MaxPollHz = 1000.0
)

// SourceConfig picks where frames come from.
type SourceConfig struct {
	Type string `json:"type" mapstructure:"type"`
	// Path is the recording to play for replay sources.
	Path string `json:"path,omitempty" mapstructure:"path"`
	Loop bool   `json:"loop,omitempty" mapstructure:"loop"`
	// Frames is the length of the scripted scene for fake sources.
	Frames int `json:"frames,omitempty" mapstructure:"frames"`
}

// Config describes how to configure the kinect pose tracker. Zero scoring values fall back to the
// tracking defaults.
type Config struct {
	Family               string       `json:"family" mapstructure:"family"`
	PollHz               float64      `json:"poll_hz,omitempty" mapstructure:"poll_hz"`
	MaxPlayspaceDistance float64      `json:"max_playspace_distance,omitempty" mapstructure:"max_playspace_distance"`
	TimeDecaySec         float64      `json:"time_decay_sec,omitempty" mapstructure:"time_decay_sec"`
	CommitThreshold      float64      `json:"commit_threshold,omitempty" mapstructure:"commit_threshold"`
	Source               SourceConfig `json:"source" mapstructure:"source"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	if conf.Family == "" {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "family")
	}
	if _, err := kinect.FamilyByName(conf.Family); err != nil {
		return nil, goutils.NewConfigValidationError(path, err)
	}
	for field, v := range map[string]float64{
		"poll_hz":                conf.PollHz,
		"max_playspace_distance": conf.MaxPlayspaceDistance,
		"time_decay_sec":         conf.TimeDecaySec,
		"commit_threshold":       conf.CommitThreshold,
	} {
		if v < 0 {
			return nil, goutils.NewConfigValidationError(path, errors.Errorf("%s must not be negative, got %v", field, v))
		}
	}
	if conf.PollHz > MaxPollHz {
		return nil, goutils.NewConfigValidationError(path, errors.Errorf("poll_hz must be at most %v, got %v", MaxPollHz, conf.PollHz))
	}
	switch conf.Source.Type {
	case "":
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "source.type")
	case SourceReplay:
		if conf.Source.Path == "" {
			return nil, goutils.NewConfigValidationFieldRequiredError(path, "source.path")
		}
	case SourceFake:
		if conf.Source.Frames < 0 {
			return nil, goutils.NewConfigValidationError(path, errors.Errorf("source.frames must not be negative, got %d", conf.Source.Frames))
		}
	default:
		return nil, goutils.NewConfigValidationError(path,
			errors.Errorf("unknown source type %q (expected %q or %q)", conf.Source.Type, SourceReplay, SourceFake))
	}
	return nil, nil
}

// PollInterval is the time between frame polls.
func (conf *Config) PollInterval() time.Duration {
	hz := conf.PollHz
	if hz == 0 {
		hz = DefaultPollHz
	}
	return time.Duration(float64(time.Second) / hz)
}

// TrackerConfig resolves the family and scoring constants.
func (conf *Config) TrackerConfig() (tracking.Config, error) {
	family, err := kinect.FamilyByName(conf.Family)
	if err != nil {
		return tracking.Config{}, err
	}
	cfg := tracking.DefaultConfig(family)
	if conf.MaxPlayspaceDistance > 0 {
		cfg.MaxPlayspaceDistance = conf.MaxPlayspaceDistance
	}
	if conf.TimeDecaySec > 0 {
		cfg.TimeDecay = time.Duration(conf.TimeDecaySec * float64(time.Second))
	}
	if conf.CommitThreshold > 0 {
		cfg.CommitThreshold = conf.CommitThreshold
	}
	return cfg, nil
}
