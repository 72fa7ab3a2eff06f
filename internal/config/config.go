package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/grainsim/internal/logging"
)

const (
	DefaultLength       = 0.3302
	DefaultDensity      = 975.0
	DefaultA            = 0.0004
	DefaultN            = 0.37
	DefaultIsp          = 180.0
	DefaultOxidizerFlow = 1.279
	DefaultScale        = 1e-3
	DefaultFireTime     = 5.619
	DefaultIterations   = 10.0
	DefaultPortRadius   = 10.0
	DefaultOuterRadius  = 50.0
	DefaultSegments     = 128
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Name  string         `yaml:"name"`
	Grain GrainConfig    `yaml:"grain"`
	Ports []ShapeConfig  `yaml:"ports"`
	Outer ShapeConfig    `yaml:"outer"`
	Run   RunConfig      `yaml:"run"`
	Log   logging.Config `yaml:"log"`
}

type GrainConfig struct {
	Length       float64 `yaml:"length"`  // m
	Density      float64 `yaml:"density"` // kg/m³
	A            float64 `yaml:"a"`
	N            float64 `yaml:"n"`
	Isp          float64 `yaml:"isp"`           // s
	OxidizerFlow float64 `yaml:"oxidizer_flow"` // kg/s
	Scale        float64 `yaml:"scale"`         // m per drawing unit
}

// ShapeConfig describes one outline in drawing units. Shape is one of the
// names known to the experiment registry.
type ShapeConfig struct {
	Shape       string     `yaml:"shape"`
	Radius      float64    `yaml:"radius,omitempty"`
	InnerRadius float64    `yaml:"inner_radius,omitempty"`
	Segments    int        `yaml:"segments,omitempty"`
	Tips        int        `yaml:"tips,omitempty"`
	File        string     `yaml:"file,omitempty"`
	Center      [2]float64 `yaml:"center,flow"`
	Recenter    bool       `yaml:"recenter,omitempty"`
}

type RunConfig struct {
	FireTime            float64 `yaml:"fire_time"`
	IterationsPerSecond float64 `yaml:"iterations_per_second"`
	ArcStep             float64 `yaml:"arc_step,omitempty"` // rad, 0 for the default
	RecordOutlines      bool    `yaml:"record_outlines"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "baseline",
		Grain: GrainConfig{
			Length:       DefaultLength,
			Density:      DefaultDensity,
			A:            DefaultA,
			N:            DefaultN,
			Isp:          DefaultIsp,
			OxidizerFlow: DefaultOxidizerFlow,
			Scale:        DefaultScale,
		},
		Ports: []ShapeConfig{{Shape: "circle", Radius: DefaultPortRadius, Segments: DefaultSegments}},
		Outer: ShapeConfig{Shape: "circle", Radius: DefaultOuterRadius, Segments: DefaultSegments},
		Run: RunConfig{
			FireTime:            DefaultFireTime,
			IterationsPerSecond: DefaultIterations,
		},
		Log: logging.Config{Level: "info", Format: "console"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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
	g := c.Grain
	positive := []struct {
		key string
		v   float64
	}{
		{"grain.length", g.Length},
		{"grain.density", g.Density},
		{"grain.a", g.A},
		{"grain.isp", g.Isp},
		{"grain.scale", g.Scale},
		{"run.fire_time", c.Run.FireTime},
		{"run.iterations_per_second", c.Run.IterationsPerSecond},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, p.key, p.v)
		}
	}
	if g.OxidizerFlow < 0 {
		return fmt.Errorf("%w: grain.oxidizer_flow must not be negative, got %v", ErrInvalid, g.OxidizerFlow)
	}
	if c.Run.ArcStep < 0 {
		return fmt.Errorf("%w: run.arc_step must not be negative, got %v", ErrInvalid, c.Run.ArcStep)
	}
	if len(c.Ports) == 0 {
		return fmt.Errorf("%w: at least one port is required", ErrInvalid)
	}
	for i, p := range c.Ports {
		if p.Shape == "" {
			return fmt.Errorf("%w: ports[%d].shape is empty", ErrInvalid, i)
		}
	}
	if c.Outer.Shape == "" {
		return fmt.Errorf("%w: outer.shape is empty", ErrInvalid)
	}
	return nil
}

// Clone returns a copy that shares no slices with c.
func (c *Config) Clone() *Config {
	out := *c
	out.Ports = append([]ShapeConfig(nil), c.Ports...)
	return &out
}
