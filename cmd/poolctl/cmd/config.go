package cmd

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// poolConfig is poolctl's on-disk config file shape. It is intentionally
// separate from core.Builder: the library itself takes no config files,
// consistent with its scope — this struct exists only to let the demo CLI
// describe a pool declaratively instead of via flags.
type poolConfig struct {
	Name         string `yaml:"name"`
	MinThreads   int    `yaml:"min_threads"`
	MaxThreads   int    `yaml:"max_threads"`
	MaxQueueSize int    `yaml:"max_queue_size"`
	IdleTimeout  string `yaml:"idle_timeout"`
}

func loadPoolConfig(path string) (poolConfig, error) {
	var cfg poolConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func (c poolConfig) idleTimeoutDuration() (time.Duration, error) {
	if c.IdleTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.IdleTimeout)
}
