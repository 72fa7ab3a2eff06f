package config

import "sort"

func preset(name string, mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	mutate(cfg)
	return cfg
}

var Presets = map[string]*Config{
	"baseline": preset("baseline", func(*Config) {}),
	"burnout": preset("burnout", func(c *Config) {
		c.Outer.Radius = DefaultPortRadius
	}),
	"star": preset("star", func(c *Config) {
		c.Ports = []ShapeConfig{{Shape: "star", Tips: 6, Radius: 18, InnerRadius: 9}}
		c.Run.RecordOutlines = true
	}),
	"quad": preset("quad", func(c *Config) {
		c.Ports = []ShapeConfig{
			{Shape: "circle", Radius: 6, Segments: 64, Center: [2]float64{16, 0}},
			{Shape: "circle", Radius: 6, Segments: 64, Center: [2]float64{0, 16}},
			{Shape: "circle", Radius: 6, Segments: 64, Center: [2]float64{-16, 0}},
			{Shape: "circle", Radius: 6, Segments: 64, Center: [2]float64{0, -16}},
		}
		c.Run.RecordOutlines = true
	}),
	"slim": preset("slim", func(c *Config) {
		c.Outer.Radius = 42.8625
		c.Run.FireTime = 8
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
