// Package config handles the optional spiderlab configuration file.
//
// Both CLIs accept --config pointing at a YAML file that supplies default
// search limits and pipeline settings. Flags given on the command line
// always win over file values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SearchConfig holds per-seed search budget defaults.
type SearchConfig struct {
	MaxNodes    int     `yaml:"max_nodes,omitempty"`
	MaxSeconds  float64 `yaml:"max_seconds,omitempty"`
	MaxFrontier int     `yaml:"max_frontier,omitempty"`
}

// PoolConfig holds pipeline defaults.
type PoolConfig struct {
	Workers         int    `yaml:"workers,omitempty"`
	ProgressEvery   int    `yaml:"progress_every,omitempty"`
	SaveIntervalSec int    `yaml:"save_interval_sec,omitempty"`
	Out             string `yaml:"out,omitempty"`
}

// Config is the top-level configuration for spiderlab tools.
type Config struct {
	Search SearchConfig `yaml:"search,omitempty"`
	Pool   PoolConfig   `yaml:"pool,omitempty"`
}

// DefaultConfig returns an empty config; zero values mean "use the tool's
// built-in default".
func DefaultConfig() Config {
	return Config{}
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
