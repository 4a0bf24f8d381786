package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig holds runtime options loaded from a drift.yml next to the
// script (all optional).
type RunConfig struct {
	// TraceAsync enables debug logging of frame state transitions.
	TraceAsync bool `yaml:"trace_async"`
	// MaxCallDepth overrides DefaultMaxCallDepth when positive.
	MaxCallDepth int `yaml:"max_call_depth"`
	// NoColor disables colored diagnostics even on a tty.
	NoColor bool `yaml:"no_color"`
}

const RunConfigFileName = "drift.yml"

// LoadRunConfig reads path, returning defaults when the file is absent.
func LoadRunConfig(path string) (*RunConfig, error) {
	cfg := &RunConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
