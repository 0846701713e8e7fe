package engine

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config carries the tunable knobs of an extraction run.
type Config struct {
	// WindowRadius is the byte radius of text context windows.
	WindowRadius int `yaml:"window_radius"`
	// Tolerance is the relative tolerance for quantity×price=value.
	Tolerance float64 `yaml:"tolerance"`
	// LotSizes are the quantity multipliers tried when cross-validation
	// finds a clean-factor mismatch.
	LotSizes []int `yaml:"lot_sizes"`
	// Workers bounds the reconciliation worker pool; 0 means one worker
	// per task.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		WindowRadius: 200,
		Tolerance:    0.10,
		LotSizes:     []int{10, 100, 1000},
		Workers:      4,
	}
}

// LoadConfig reads a YAML config file over the defaults, so partial
// files only override what they mention.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.WindowRadius < 0 {
		return fmt.Errorf("window_radius must be non-negative, got %d", c.WindowRadius)
	}
	if c.Tolerance < 0 || c.Tolerance >= 1 {
		return fmt.Errorf("tolerance must be in [0,1), got %g", c.Tolerance)
	}
	for _, lot := range c.LotSizes {
		if lot < 2 {
			return fmt.Errorf("lot sizes must be at least 2, got %d", lot)
		}
	}
	return nil
}
