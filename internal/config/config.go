// Package config loads wakecore's run configuration: the job bridge
// address, the local executor's worker count and memo database path,
// and debug-dump flags, mirroring funxy's internal/ext yaml.Config
// shape (spec.md §6 "External Interfaces": configuration is a host-
// side concern, not part of the resolver/evaluator core itself).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of a wakecore.yaml run configuration.
type Config struct {
	// Job configures the `job` primitive's executor.
	Job JobConfig `yaml:"job"`

	// DumpIR is parsed from the configuration file; no CLI subcommand
	// reads it (`resolve` always prints the IR to stdout).
	DumpIR bool `yaml:"dump_ir,omitempty"`
}

// JobConfig selects and configures a jobexec.JobExecutor.
type JobConfig struct {
	// Backend is "local" (the default, an in-process worker pool) or
	// "grpc" (dial a remote executor at Address).
	Backend string `yaml:"backend,omitempty"`

	// Address is the remote executor's dial target, required when
	// Backend is "grpc".
	Address string `yaml:"address,omitempty"`

	// Workers bounds LocalExecutor's concurrent job count. Defaults to
	// 4 when unset or non-positive.
	Workers int `yaml:"workers,omitempty"`

	// MemoPath is the sqlite memo database LocalExecutor opens.
	// Defaults to "wakecore-jobs.db" when empty.
	MemoPath string `yaml:"memo_path,omitempty"`
}

// Default returns the configuration a run gets when no wakecore.yaml
// is present: a local executor, four workers, the memo db in the
// current directory.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses a wakecore.yaml configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses wakecore.yaml content from bytes. path is used only in
// error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Job.Backend == "" {
		c.Job.Backend = "local"
	}
	if c.Job.Workers <= 0 {
		c.Job.Workers = 4
	}
	if c.Job.MemoPath == "" {
		c.Job.MemoPath = "wakecore-jobs.db"
	}
}
