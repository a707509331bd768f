// Package config provides configuration loading and access for the collision harness.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sweep/collision"
	"github.com/pthm-cable/sweep/shape"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all harness configuration parameters.
type Config struct {
	Collision CollisionConfig `yaml:"collision"`
	Sim       SimConfig       `yaml:"sim"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Scenario  ScenarioConfig  `yaml:"scenario"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// CollisionConfig holds solver parameters.
type CollisionConfig struct {
	AxisFlip string `yaml:"axis_flip"` // "always" or "overlapping"
}

// SimConfig holds run-loop parameters.
type SimConfig struct {
	MaxTicks int `yaml:"max_ticks"` // 0 = unlimited
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // ticks per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"` // ticks averaged by the perf collector
}

// ScenarioConfig describes the shapes placed in the world at startup.
type ScenarioConfig struct {
	Name   string        `yaml:"name"`
	Shapes []ShapeConfig `yaml:"shapes"`
}

// Vec2 is a YAML-friendly 2-D vector.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Vec converts to the geometry vector type.
func (v Vec2) Vec() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

// BoxConfig is a width x height rectangle centered on the shape origin.
type BoxConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// RegularConfig is a regular polygon.
type RegularConfig struct {
	Sides  int     `yaml:"sides"`
	Radius float64 `yaml:"radius"`
}

// ShapeConfig describes one shape. Exactly one of Box, Regular or Vertices must be set.
type ShapeConfig struct {
	Name     string         `yaml:"name"`
	Box      *BoxConfig     `yaml:"box,omitempty"`
	Regular  *RegularConfig `yaml:"regular,omitempty"`
	Vertices []Vec2         `yaml:"vertices,omitempty"` // counter-clockwise, y-up
	Position Vec2           `yaml:"position"`
	Rotation float64        `yaml:"rotation"` // radians
	Scale    *Vec2          `yaml:"scale,omitempty"`
	Velocity Vec2           `yaml:"velocity"` // displacement per tick
	Spin     float64        `yaml:"spin"`     // radians per tick
}

// LocalVertices returns the shape's local-space polygon.
func (s ShapeConfig) LocalVertices() ([]r2.Vec, error) {
	set := 0
	if s.Box != nil {
		set++
	}
	if s.Regular != nil {
		set++
	}
	if len(s.Vertices) > 0 {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("shape %q: exactly one of box, regular or vertices is required", s.Name)
	}

	switch {
	case s.Box != nil:
		return shape.Box(s.Box.Width, s.Box.Height), nil
	case s.Regular != nil:
		return shape.Regular(s.Regular.Sides, s.Regular.Radius), nil
	}

	verts := make([]r2.Vec, len(s.Vertices))
	for i, v := range s.Vertices {
		verts[i] = v.Vec()
	}
	return verts, nil
}

// ScaleVec returns the configured scale, defaulting to (1,1).
func (s ShapeConfig) ScaleVec() r2.Vec {
	if s.Scale == nil {
		return r2.Vec{X: 1, Y: 1}
	}
	return s.Scale.Vec()
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Flip       collision.FlipPolicy // parsed Collision.AxisFlip
	ShapeCount int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Merge(cfg, data); err != nil {
			return nil, err
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge unmarshals data over cfg. Only fields present in data are overwritten;
// a scenario in data replaces the default scenario entirely.
func Merge(cfg *Config, data []byte) error {
	var probe struct {
		Scenario *yaml.Node `yaml:"scenario"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if probe.Scenario != nil {
		cfg.Scenario = ScenarioConfig{}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// computeDerived calculates and validates values derived from loaded config.
func (c *Config) computeDerived() error {
	flip, err := collision.ParseFlipPolicy(c.Collision.AxisFlip)
	if err != nil {
		return fmt.Errorf("collision.axis_flip: %w", err)
	}
	c.Derived.Flip = flip

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}
	if c.Telemetry.PerfCollectorWindow < 1 {
		c.Telemetry.PerfCollectorWindow = 60
	}

	for i, s := range c.Scenario.Shapes {
		if s.Name == "" {
			c.Scenario.Shapes[i].Name = fmt.Sprintf("shape%d", i)
		}
	}
	c.Derived.ShapeCount = len(c.Scenario.Shapes)
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
