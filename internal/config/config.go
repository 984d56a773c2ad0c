// Package config loads process/session settings for the simulator CLI,
// grounded on core/program.go's gopkg.in/yaml.v3 use for loading structured
// text configuration. This governs the simulator's own runtime behaviour
// only — per spec.md §6 the simulated circuit's own state is never
// persisted.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig holds session-scoped defaults that spec.md leaves to the
// implementer: the default clock speed applied when a primary input pin is
// marked as a clock without its own explicit rate, and the bootstrap-cycle
// cap used when auto-building a hierarchical sub-schematic's nested
// simulator (spec.md §7's "10 bootstrap cycles" integrity error).
type RuntimeConfig struct {
	// DefaultClockSpeedHz mirrors loader/simulator2.py's GLOBAL_CLOCK_SPEED
	// default of 60 (there expressed as ticks-per-flip at an assumed 60Hz
	// frame rate; here expressed directly in Hz).
	DefaultClockSpeedHz int `yaml:"default_clock_speed_hz"`

	// MaxBootstrapCycles caps how many internal Update() calls a nested
	// hierarchical simulator may take to reach status "On" before the
	// parent treats it as an integrity error, per spec.md §7.
	MaxBootstrapCycles int `yaml:"max_bootstrap_cycles"`

	// LogLevel is one of the stdlib slog names plus "trace"/"waveform".
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *RuntimeConfig {
	return &RuntimeConfig{
		DefaultClockSpeedHz: 60,
		MaxBootstrapCycles:  10,
		LogLevel:            "info",
	}
}

// Load reads a YAML runtime configuration file, filling in defaults for
// any field the file omits.
func Load(path string) (*RuntimeConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.DefaultClockSpeedHz <= 0 {
		cfg.DefaultClockSpeedHz = 60
	}
	if cfg.MaxBootstrapCycles <= 0 {
		cfg.MaxBootstrapCycles = 10
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}
