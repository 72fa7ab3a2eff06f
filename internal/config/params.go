package config

import (
	"fmt"
	"sort"
)

type param struct {
	get func(*Config) float64
	set func(*Config, float64)
}

// params maps the names accepted by sweeps and searches onto config fields.
// port_radius reads the first port and writes every port.
var params = map[string]param{
	"oxidizer_flow": {
		func(c *Config) float64 { return c.Grain.OxidizerFlow },
		func(c *Config, v float64) { c.Grain.OxidizerFlow = v },
	},
	"a": {
		func(c *Config) float64 { return c.Grain.A },
		func(c *Config, v float64) { c.Grain.A = v },
	},
	"n": {
		func(c *Config) float64 { return c.Grain.N },
		func(c *Config, v float64) { c.Grain.N = v },
	},
	"isp": {
		func(c *Config) float64 { return c.Grain.Isp },
		func(c *Config, v float64) { c.Grain.Isp = v },
	},
	"length": {
		func(c *Config) float64 { return c.Grain.Length },
		func(c *Config, v float64) { c.Grain.Length = v },
	},
	"density": {
		func(c *Config) float64 { return c.Grain.Density },
		func(c *Config, v float64) { c.Grain.Density = v },
	},
	"fire_time": {
		func(c *Config) float64 { return c.Run.FireTime },
		func(c *Config, v float64) { c.Run.FireTime = v },
	},
	"port_radius": {
		func(c *Config) float64 {
			if len(c.Ports) == 0 {
				return 0
			}
			return c.Ports[0].Radius
		},
		func(c *Config, v float64) {
			for i := range c.Ports {
				c.Ports[i].Radius = v
			}
		},
	},
	"outer_radius": {
		func(c *Config) float64 { return c.Outer.Radius },
		func(c *Config, v float64) { c.Outer.Radius = v },
	},
}

func lookup(name string) (param, error) {
	p, ok := params[name]
	if !ok {
		return param{}, fmt.Errorf("%w: unknown parameter %q (available: %v)", ErrInvalid, name, ParamNames())
	}
	return p, nil
}

// Param returns the current value of a named design parameter.
func (c *Config) Param(name string) (float64, error) {
	p, err := lookup(name)
	if err != nil {
		return 0, err
	}
	return p.get(c), nil
}

// SetParam sets a named design parameter on c.
func (c *Config) SetParam(name string, v float64) error {
	p, err := lookup(name)
	if err != nil {
		return err
	}
	p.set(c, v)
	return nil
}

// WithParams returns a copy of c with every parameter applied.
func (c *Config) WithParams(values map[string]float64) (*Config, error) {
	out := c.Clone()
	for name, v := range values {
		if err := out.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func ParamNames() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
