package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wildfunctions/genetic_diagnosis/pkg/strategy"
)

// Config holds all parameters for an evolutionary run. It is built once and
// never modified while a run is in progress.
type Config struct {
	Pool           string  `json:"pool" yaml:"pool" validate:"required"`
	Strategy       string  `json:"strategy" yaml:"strategy" validate:"required"`
	Population     int     `json:"population" yaml:"population" validate:"gt=0"`
	MaxGenerations int     `json:"max_generations" yaml:"max_generations" validate:"gt=0"`
	MinError       float64 `json:"min_error" yaml:"min_error"`
	ConstMin       float64 `json:"const_min" yaml:"const_min"`
	ConstMax       float64 `json:"const_max" yaml:"const_max" validate:"gtefield=ConstMin"`
	Seed           int64   `json:"seed" yaml:"seed"`
	Workers        int     `json:"workers" yaml:"workers" validate:"gte=1"`
	ReportInterval int     `json:"report_interval" yaml:"report_interval" validate:"gte=0"`
	Format         string  `json:"format" yaml:"format" validate:"oneof=text json"`
	Verbose        bool    `json:"verbose" yaml:"verbose"`

	strategy.Params `yaml:",inline"`
}

// DefaultConfig returns a config with the reference settings.
func DefaultConfig() Config {
	return Config{
		Pool:           "arithmetic",
		Strategy:       "generational",
		Population:     1000,
		MaxGenerations: 300,
		MinError:       0.02,
		ConstMin:       -1.0,
		ConstMax:       10.0,
		Seed:           0, // 0 = random
		Workers:        runtime.NumCPU(),
		ReportInterval: 25,
		Format:         "text",
		Params:         strategy.DefaultParams(),
	}
}

// ErrInvalidConfig is wrapped by every configuration failure.
var ErrInvalidConfig = errors.New("invalid config")

var configValidate = validator.New()

// Validate checks the config before any evolution starts.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Params.Check(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads a YAML config file over DefaultConfig. Unknown keys are
// an error. An empty path returns the defaults. The result is not validated;
// callers apply their own overrides first and then call Validate.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
