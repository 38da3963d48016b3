// Package config loads the body tracker configuration from a JSON or YAML file, with defaults and
// BODYTRACK_ environment overrides.
package config

import (
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	goutils "go.viam.com/utils"

	"github.com/jenourish/bodytrack/components/posetracker/kinect"
	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/tracking"
	trackingkinect "github.com/jenourish/bodytrack/tracking/kinect"
	"github.com/jenourish/bodytrack/utils"
)

// EnvPrefix prefixes every environment override, e.g. BODYTRACK_TRACKER_FAMILY.
const EnvPrefix = "BODYTRACK"

// Config is the top level configuration file.
type Config struct {
	Tracker kinect.Config `json:"tracker" mapstructure:"tracker"`
	Web     WebConfig     `json:"web" mapstructure:"web"`
	Log     LogConfig     `json:"log" mapstructure:"log"`
}

// WebConfig configures the override panel. An empty Listen address disables it.
type WebConfig struct {
	Listen string `json:"listen,omitempty" mapstructure:"listen"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level      logging.Level `json:"level" mapstructure:"level"`
	File       string        `json:"file,omitempty" mapstructure:"file"`
	MaxSizeMB  int           `json:"max_size_mb,omitempty" mapstructure:"max_size_mb"`
	MaxBackups int           `json:"max_backups,omitempty" mapstructure:"max_backups"`
}

// FileAppenderConfig returns the rotation settings for the log file.
func (lc LogConfig) FileAppenderConfig() logging.FileAppenderConfig {
	return logging.FileAppenderConfig{
		Filename:   lc.File,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if _, err := c.Tracker.Validate("tracker"); err != nil {
		return err
	}
	if c.Log.MaxSizeMB < 0 {
		return goutils.NewConfigValidationError("log", errors.Errorf("max_size_mb must not be negative, got %d", c.Log.MaxSizeMB))
	}
	if c.Log.MaxBackups < 0 {
		return goutils.NewConfigValidationError("log", errors.Errorf("max_backups must not be negative, got %d", c.Log.MaxBackups))
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("tracker.family", trackingkinect.V2Name)
	v.SetDefault("tracker.poll_hz", kinect.DefaultPollHz)
	v.SetDefault("tracker.max_playspace_distance", tracking.DefaultMaxPlayspaceDistance)
	v.SetDefault("tracker.time_decay_sec", tracking.DefaultTimeDecay.Seconds())
	v.SetDefault("tracker.commit_threshold", tracking.DefaultCommitThreshold)
	v.SetDefault("tracker.source.type", kinect.SourceFake)
	v.SetDefault("tracker.source.path", "")
	v.SetDefault("tracker.source.loop", false)
	v.SetDefault("tracker.source.frames", kinect.DefaultFakeFrameCount)
	v.SetDefault("web.listen", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path, or only defaults and environment overrides when path is
// empty. The format follows the file extension.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "error reading config file %s", path)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var conf Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(logLevelHook),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &conf,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, errors.Wrap(err, "error decoding config")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

var levelType = reflect.TypeOf(logging.Level(0))

func logLevelHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != levelType {
		return data, nil
	}
	str, ok := data.(string)
	if !ok {
		return nil, utils.NewUnexpectedTypeError[string](data)
	}
	return logging.LevelFromString(str)
}
