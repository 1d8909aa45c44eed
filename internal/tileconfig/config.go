// Package tileconfig holds the demo CLI's settings. The LookupEngine
// itself takes no config file, no environment variables, and no
// persisted state — this package exists only for cmd/ tools.
package tileconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// Config holds the cmd/texprobe settings a JSON file may override.
type Config struct {
	SearchPath   []string `json:"search_path"`
	MaxOpenFiles int      `json:"max_open_files"`
	MaxMemoryMB  int      `json:"max_memory_mb"`
	Workers      int      `json:"workers"`
}

// Load reads a JSON config file. Fields absent from the file keep
// their zero values; callers apply defaults via Resolve.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("tileconfig: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("tileconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	MaxOpenFiles int
	MaxMemoryMB  int
	Workers      int
}

// Resolve fills in empty fields with defaults, letting non-zero CLI
// flags take priority over the config file.
func (c *Config) Resolve(flags Flags) {
	if flags.MaxOpenFiles > 0 {
		c.MaxOpenFiles = flags.MaxOpenFiles
	}
	if flags.MaxMemoryMB > 0 {
		c.MaxMemoryMB = flags.MaxMemoryMB
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.MaxOpenFiles <= 0 {
		c.MaxOpenFiles = 100
	}
	if c.MaxMemoryMB <= 0 {
		c.MaxMemoryMB = 256
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}
