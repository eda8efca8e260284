package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	DefaultDt       = 60.0
	DefaultDuration = 86400.0
	DefaultDataDir  = ".orbitsim"
	DefaultLogLevel = "info"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	G             float64      `yaml:"g"`
	Dt            float64      `yaml:"dt"`
	Duration      float64      `yaml:"duration"`
	Workers       int          `yaml:"workers"`
	ValidateState bool         `yaml:"validate_state"`
	DataDir       string       `yaml:"data_dir"`
	LogLevel      string       `yaml:"log_level"`
	Bodies        []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	ID       string     `yaml:"id"`
	Mass     float64    `yaml:"mass"`
	Position [3]float64 `yaml:"position,flow"`
	Velocity [3]float64 `yaml:"velocity,flow"`
}

func DefaultConfig() *Config {
	return &Config{
		G:        dynamo.DefaultG,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Workers:  1,
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads a YAML scenario. Keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !(c.G > 0) || math.IsInf(c.G, 0) {
		return fmt.Errorf("%w: g must be positive, got %v", ErrInvalidConfig, c.G)
	}
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidConfig, c.Duration)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// SimConfig returns the run parameters of the scenario.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		ValidateState: c.ValidateState,
	}
}

// BuildSystem validates the scenario and returns a system holding its bodies.
func (c *Config) BuildSystem() (*dynamo.System, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	sys := dynamo.NewSystem(dynamo.WithG(c.G), dynamo.WithWorkers(c.Workers))
	for i, b := range c.Bodies {
		err := sys.AddBody(b.ID, b.Mass, dynamo.FromTriple(b.Position), dynamo.FromTriple(b.Velocity))
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
	}
	return sys, nil
}
