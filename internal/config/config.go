// Package config loads the profiler's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cxd309/motion-profiler/internal/kinematics"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the top-level configuration file.
type Config struct {
	// SamplesFile is the capture file profiles are generated from.
	SamplesFile string `yaml:"samples_file"`

	// Distances are the target distances generated by the generate command.
	Distances []float64 `yaml:"distances" validate:"dive,gt=0"`

	Output OutputConfig `yaml:"output"`
	Limits LimitsConfig `yaml:"limits"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Synth  SynthConfig  `yaml:"synth"`
}

// LimitsConfig bounds the work of a single profile.
type LimitsConfig struct {
	MaxStates int `yaml:"max_states" validate:"gt=0"`
}

// OutputConfig selects how trajectories are written.
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=csv json"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr         string `yaml:"addr" validate:"required"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" validate:"gt=0"`
}

// SynthConfig describes the model sampled by the synth command.
type SynthConfig struct {
	AAcc          float64 `yaml:"a_acc" validate:"gt=0"`
	ADcc          float64 `yaml:"a_dcc" validate:"gt=0"`
	VMax          float64 `yaml:"v_max" validate:"gt=0"`
	TimeStep      float64 `yaml:"dt" validate:"gt=0"`
	CruiseSamples int     `yaml:"cruise_samples" validate:"gte=0"`
}

// Model returns the constant-acceleration model described by s.
func (s SynthConfig) Model() kinematics.ConstantAcceleration {
	return kinematics.ConstantAcceleration{AAcc: s.AAcc, ADcc: s.ADcc, VMaxVal: s.VMax}
}

// CaptureConfig returns the sampling parameters described by s.
func (s SynthConfig) CaptureConfig() kinematics.CaptureConfig {
	return kinematics.CaptureConfig{TimeStep: s.TimeStep, CruiseSamples: s.CruiseSamples}
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Distances: []float64{5},
		Output:    OutputConfig{Format: "csv"},
		Limits:    LimitsConfig{MaxStates: 1_000_000},
		Log:       LogConfig{Level: "info"},
		Server:    ServerConfig{Addr: ":8080", MaxBodyBytes: 1 << 20},
		Synth: SynthConfig{
			AAcc:          1,
			ADcc:          1,
			VMax:          2,
			TimeStep:      0.1,
			CruiseSamples: 10,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
