package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if !c.Extent.Valid() {
		return fmt.Errorf("extent %+v is degenerate", c.Extent)
	}
	if c.Tiles.Size <= 0 {
		return fmt.Errorf("tile size %g must be positive", c.Tiles.Size)
	}
	if c.Tiles.OverlapFraction < 0 || c.Tiles.OverlapFraction >= 1 {
		return fmt.Errorf("overlap fraction %g must be in [0, 1)", c.Tiles.OverlapFraction)
	}
	if c.Sampling.Spacing <= 0 {
		return fmt.Errorf("sample spacing %g must be positive", c.Sampling.Spacing)
	}
	if c.Run.MaxFailedRatio < 0 || c.Run.MaxFailedRatio > 1 {
		return fmt.Errorf("max failed ratio %g must be in [0, 1]", c.Run.MaxFailedRatio)
	}
	return nil
}
