// Package appconfig loads the YAML configuration shared by the commands.
//
// Values are resolved in this order, later ones winning: the embedded
// defaults, the file given to Load (or named by ALGOEQ_CONFIG), then the
// ALGOEQ_* environment variables.
package appconfig

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

const (
	envConfigFile   = "ALGOEQ_CONFIG"
	envSampleRate   = "ALGOEQ_SAMPLE_RATE"
	envPresetPath   = "ALGOEQ_PRESET_PATH"
	envLogLevel     = "ALGOEQ_LOG_LEVEL"
	envBufferFrames = "ALGOEQ_BUFFER_FRAMES"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("appconfig: invalid configuration")

// Config holds the settings of the eq commands.
type Config struct {
	SampleRate   float64 `yaml:"sample_rate"`
	PresetPath   string  `yaml:"preset_path"`
	LogLevel     string  `yaml:"log_level"`
	BufferFrames int     `yaml:"buffer_frames"`
}

// Default returns the embedded defaults.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfig, &cfg); err != nil {
		panic(fmt.Sprintf("appconfig: embedded defaults: %v", err))
	}

	cfg.PresetPath = expandHome(cfg.PresetPath)

	return cfg
}

// Load reads the configuration. An empty path falls back to ALGOEQ_CONFIG
// and then to the defaults alone.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(envConfigFile)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("appconfig: read %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("appconfig: parse %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	cfg.PresetPath = expandHome(cfg.PresetPath)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if !(c.SampleRate > 0) {
		return fmt.Errorf("%w: sample_rate %v", ErrInvalid, c.SampleRate)
	}

	if c.BufferFrames <= 0 {
		return fmt.Errorf("%w: buffer_frames %d", ErrInvalid, c.BufferFrames)
	}

	if c.PresetPath == "" {
		return fmt.Errorf("%w: empty preset_path", ErrInvalid)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}

	return nil
}

// Logger returns a text logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	l.SetLevel(level)

	return l
}

func applyEnvOverrides(cfg *Config) error {
	if v, ok := os.LookupEnv(envSampleRate); ok {
		sr, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, envSampleRate, v)
		}

		cfg.SampleRate = sr
	}

	if v, ok := os.LookupEnv(envPresetPath); ok {
		cfg.PresetPath = v
	}

	if v, ok := os.LookupEnv(envLogLevel); ok {
		cfg.LogLevel = strings.TrimSpace(v)
	}

	if v, ok := os.LookupEnv(envBufferFrames); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, envBufferFrames, v)
		}

		cfg.BufferFrames = n
	}

	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}

	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
