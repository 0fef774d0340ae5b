package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/twobody"
)

const (
	DefaultIntegrator = "rk4"
	DefaultStep       = 0.001
	DefaultSteps      = 2000
	DefaultTolerance  = 1e-7
	DefaultMaxTime    = 100.0
	DefaultMaxRejects = 50
	DefaultG          = 0.1
)

type Config struct {
	Integrator string     `yaml:"integrator"`
	Step       float64    `yaml:"step"`
	Steps      int        `yaml:"steps"`
	Tolerance  float64    `yaml:"tolerance"`
	MaxTime    float64    `yaml:"max_time"`
	MaxRejects int        `yaml:"max_rejects"`
	G          float64    `yaml:"g"`
	Body1      BodyConfig `yaml:"body1"`
	Body2      BodyConfig `yaml:"body2"`
}

type BodyConfig struct {
	Mass     float64   `yaml:"mass"`
	Position []float64 `yaml:"position"`
	Velocity []float64 `yaml:"velocity"`
}

// DefaultConfig is two equal masses orbiting their common barycentre.
func DefaultConfig() *Config {
	return &Config{
		Integrator: DefaultIntegrator,
		Step:       DefaultStep,
		Steps:      DefaultSteps,
		Tolerance:  DefaultTolerance,
		MaxTime:    DefaultMaxTime,
		MaxRejects: DefaultMaxRejects,
		G:          DefaultG,
		Body1: BodyConfig{
			Mass:     5,
			Position: []float64{0, 0},
			Velocity: []float64{0.5, 0},
		},
		Body2: BodyConfig{
			Mass:     5,
			Position: []float64{1, 1},
			Velocity: []float64{-0.5, 0},
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads the file at path over a copy of base, so keys missing from
// the file keep the base values. A nil base starts from DefaultConfig.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if base == nil {
		base = DefaultConfig()
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
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

// Clone returns a deep copy so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Body1 = c.Body1.clone()
	out.Body2 = c.Body2.clone()
	return &out
}

func (b BodyConfig) clone() BodyConfig {
	return BodyConfig{
		Mass:     b.Mass,
		Position: append([]float64(nil), b.Position...),
		Velocity: append([]float64(nil), b.Velocity...),
	}
}

func (b BodyConfig) Body() twobody.Body {
	return twobody.Body{
		Mass:     b.Mass,
		Position: dynamo.FromArray(b.Position...),
		Velocity: dynamo.FromArray(b.Velocity...),
	}
}

// Validate checks run parameters. Body parameters are validated when the
// system is built.
func (c *Config) Validate() error {
	if c.Step == 0 {
		return errors.Wrap(dynamo.ErrParameterBounds, "step must be non-zero")
	}
	if c.Steps <= 0 {
		return errors.Wrapf(dynamo.ErrParameterBounds, "steps must be positive, got %d", c.Steps)
	}
	if c.Integrator == "rk45" {
		if c.Tolerance <= 0 {
			return errors.Wrapf(dynamo.ErrParameterBounds, "tolerance must be positive, got %g", c.Tolerance)
		}
		if c.MaxRejects < 0 {
			return errors.Wrapf(dynamo.ErrParameterBounds, "max_rejects must not be negative, got %d", c.MaxRejects)
		}
	}
	return nil
}

// System builds the two-body system described by the config.
func (c *Config) System() (*twobody.System, error) {
	return twobody.New(c.Body1.Body(), c.Body2.Body(), c.G)
}
