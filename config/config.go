// Package config loads the YAML run configuration.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weiihann/schemoor/dataset"
	"github.com/weiihann/schemoor/harness"
	"github.com/weiihann/schemoor/scenario"
	"github.com/weiihann/schemoor/variant"
)

// Config is a benchmark run configuration. Empty selection lists select
// everything.
type Config struct {
	Iterations   int `yaml:"iterations"`
	Rounds       int `yaml:"rounds"`
	WarmupRounds int `yaml:"warmup_rounds"`

	// Fixtures is a directory overriding the embedded fixture files.
	Fixtures string `yaml:"fixtures"`

	// Groups, Variants and Modes hold path.Match patterns. Each mode
	// pattern must match compiled or raw.
	Groups   []string `yaml:"groups"`
	Variants []string `yaml:"variants"`
	Modes    []string `yaml:"modes"`

	// History is the SQLite file runs are recorded into.
	History string `yaml:"history"`

	// Generated, when set, appends a synthetic dataset to the registry.
	Generated *Generated `yaml:"generated"`
}

// Generated configures the synthetic dataset.
type Generated struct {
	Items        int    `yaml:"items"`
	MinTags      int    `yaml:"min_tags"`
	MaxTags      int    `yaml:"max_tags"`
	Distribution string `yaml:"distribution"`
	Seed         int64  `yaml:"seed"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	h := harness.DefaultConfig()

	return Config{
		Iterations:   h.Iterations,
		Rounds:       h.Rounds,
		WarmupRounds: h.WarmupRounds,
	}
}

// Load reads a YAML config from path. Keys missing from the file keep their
// default values; unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()

	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks counts, selection patterns, modes and the generator.
func (c Config) Validate() error {
	if err := c.Harness().Validate(); err != nil {
		return err
	}

	if err := c.Selector().Validate(); err != nil {
		return err
	}

	for _, m := range c.Modes {
		if _, err := variant.MatchModes(m); err != nil {
			return err
		}
	}

	if c.Generated != nil {
		if err := c.GeneratorConfig().Validate(); err != nil {
			return fmt.Errorf("generated: %w", err)
		}
	}

	return nil
}

// Harness returns the timing parameters.
func (c Config) Harness() harness.Config {
	return harness.Config{
		Iterations:   c.Iterations,
		Rounds:       c.Rounds,
		WarmupRounds: c.WarmupRounds,
	}
}

// Selector returns the case selection.
func (c Config) Selector() scenario.Selector {
	return scenario.Selector{
		Groups:   c.Groups,
		Variants: c.Variants,
		Modes:    c.Modes,
	}
}

// GeneratorConfig returns the synthetic dataset settings. It is the zero
// value when Generated is nil.
func (c Config) GeneratorConfig() dataset.GeneratorConfig {
	if c.Generated == nil {
		return dataset.GeneratorConfig{}
	}

	return dataset.GeneratorConfig{
		Items:        c.Generated.Items,
		MinTags:      c.Generated.MinTags,
		MaxTags:      c.Generated.MaxTags,
		Distribution: c.Generated.Distribution,
		Seed:         c.Generated.Seed,
	}
}
