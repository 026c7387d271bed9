package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/lifecycle/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Format selects the decoder used by Decode.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

type Config struct {
	Log         LogConfig         `yaml:"log" toml:"log"`
	Loop        LoopConfig        `yaml:"loop" toml:"loop"`
	Lifecycle   LifecycleConfig   `yaml:"lifecycle" toml:"lifecycle"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics" toml:"diagnostics"`
}

type LogConfig struct {
	Level    string `yaml:"level" toml:"level"`
	Encoding string `yaml:"encoding" toml:"encoding"` // json or console
}

type LoopConfig struct {
	TickRate time.Duration `yaml:"tick_rate" toml:"tick_rate"`
	// MaxFrames stops the loop after that many frames; zero runs until cancelled.
	MaxFrames uint64 `yaml:"max_frames" toml:"max_frames"`
}

type LifecycleConfig struct {
	FaultHistory int `yaml:"fault_history" toml:"fault_history"`
}

type DiagnosticsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Addr    string `yaml:"addr" toml:"addr"`
	// PublishEvery throttles snapshot publication to once per that many frames.
	PublishEvery uint64 `yaml:"publish_every" toml:"publish_every"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Loop: LoopConfig{
			TickRate: 33 * time.Millisecond,
		},
		Lifecycle: LifecycleConfig{
			FaultHistory: 64,
		},
		Diagnostics: DiagnosticsConfig{
			Addr:         "127.0.0.1:7070",
			PublishEvery: 30,
		},
	}
}

// Load reads a config file, picking the format from its extension.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads r over the defaults and validates the result.
func Decode(r io.Reader, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: log encoding %q", ErrInvalidConfig, c.Log.Encoding)
	}
	if c.Loop.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive, got %s", ErrInvalidConfig, c.Loop.TickRate)
	}
	if c.Lifecycle.FaultHistory < 0 {
		return fmt.Errorf("%w: fault_history must not be negative", ErrInvalidConfig)
	}
	if c.Diagnostics.Enabled && c.Diagnostics.Addr == "" {
		return fmt.Errorf("%w: diagnostics enabled without addr", ErrInvalidConfig)
	}
	return nil
}

// LogOptions converts the log section for log.New.
func (c *Config) LogOptions() log.Options {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Options{Level: level, Encoding: c.Log.Encoding}
}

func formatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: unsupported config file %s", ErrInvalidConfig, path)
	}
}
