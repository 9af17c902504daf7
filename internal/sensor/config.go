package sensor

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults matching the original sample's command line.
const (
	DefaultCount    = 4
	DefaultInterval = 250 * time.Millisecond
	DefaultLifetime = 20 * time.Second
	DefaultRadius   = 100.0
)

// Duration wraps time.Duration so YAML can carry values like "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config describes one sensor run. All fields are optional; zero values
// fall back to the defaults above.
type Config struct {
	// Count is the number of sensors, each driving one prim.
	Count int `yaml:"count"`

	// Interval between samples.
	Interval Duration `yaml:"interval"`

	// Lifetime of the whole run.
	Lifetime Duration `yaml:"lifetime"`

	// Radius of the built-in orbit signal.
	Radius float64 `yaml:"radius"`

	// Script is an optional path to a Starlark file exporting
	// sample(t, index). When set it replaces the orbit signal.
	Script string `yaml:"script"`
}

// LoadConfig reads a YAML sensor configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read sensor config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse sensor config: %w", err)
	}
	return cfg, nil
}

// withDefaults fills in unset fields.
func (c Config) withDefaults() Config {
	if c.Count <= 0 {
		c.Count = DefaultCount
	}
	if c.Interval <= 0 {
		c.Interval = Duration(DefaultInterval)
	}
	if c.Lifetime <= 0 {
		c.Lifetime = Duration(DefaultLifetime)
	}
	if c.Radius <= 0 {
		c.Radius = DefaultRadius
	}
	return c
}
