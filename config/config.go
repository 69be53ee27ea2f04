// Package config loads and validates the runtime configuration from a yaml or
// json file, with MD_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gridwise/microdispatch/core/metrics"
)

type Config struct {
	Input   InputConfig    `json:"input"`
	Output  OutputConfig   `json:"output"`
	Assets  AssetsConfig   `json:"assets"`
	Solver  SolverConfig   `json:"solver"`
	Sweep   SweepConfig    `json:"sweep"`
	Metrics metrics.Config `json:"metrics"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("MD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "md_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Output.SetDefaults()
	cfg.Assets.SetDefaults()
	cfg.Solver.SetDefaults()
	cfg.Sweep.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Input.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Output.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Assets.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Solver.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Sweep.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InputConfig locates the hourly load and solar series.
type InputConfig struct {
	// SeriesPath points to a csv file with hour, load_kw and solar_kw columns.
	SeriesPath string `json:"series_path"`
}

// Validate checks mandatory fields.
func (c InputConfig) Validate() error {
	if c.SeriesPath == "" {
		return fmt.Errorf("input.series_path is required")
	}
	return nil
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	// Path is the result file location; empty writes to stdout.
	Path string `json:"path"`
	// Format selects the writer: "json" or "csv".
	Format string `json:"format"`
}

// SetDefaults applies fallback values for optional fields.
func (c *OutputConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks the configured format.
func (c OutputConfig) Validate() error {
	if c.Format != "json" && c.Format != "csv" {
		return fmt.Errorf("unknown output format %s", c.Format)
	}
	return nil
}
