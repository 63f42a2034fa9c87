// Package config loads engine configuration from YAML, on top of defaults
// that make the zero config runnable.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig tunes the frame clock and initial stage.
type EngineConfig struct {
	// TargetFPS caps delivered frames; 0 leaves the clock uncapped.
	TargetFPS int `yaml:"target_fps"`
	// TickRate is the internal timer granularity in ticks per second.
	TickRate int `yaml:"tick_rate"`
	// StartStage, when set, is switched to before the clock starts.
	StartStage string `yaml:"start_stage"`
}

// Duration accepts Go duration strings ("50ms") in YAML documents.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// ServerConfig tunes the world-state streaming server.
type ServerConfig struct {
	Host             string   `yaml:"host"`
	Port             int      `yaml:"port"`
	SnapshotInterval Duration `yaml:"snapshot_interval"`
}

// LogConfig tunes logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			TargetFPS: 60,
			TickRate:  240,
		},
		Server: ServerConfig{
			Host:             "127.0.0.1",
			Port:             8080,
			SnapshotInterval: Duration(50 * time.Millisecond),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes YAML from r over the defaults and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.TargetFPS < 0 {
		return fmt.Errorf("engine.target_fps must be >= 0, got %d", c.Engine.TargetFPS)
	}
	if c.Engine.TickRate <= 0 {
		return fmt.Errorf("engine.tick_rate must be > 0, got %d", c.Engine.TickRate)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.SnapshotInterval <= 0 {
		return fmt.Errorf("server.snapshot_interval must be > 0, got %s", c.Server.SnapshotInterval)
	}
	return nil
}

// TickInterval converts the tick rate to the timer granularity.
func (c EngineConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}
