package config

import "sort"

var Presets = map[string]*Config{
	"equal-masses": DefaultConfig(),
	"equal-masses-adaptive": {
		Integrator: "rk45", Step: 0.001, Steps: 20000, Tolerance: 1e-7, MaxTime: 100, MaxRejects: 50, G: 0.1,
		Body1: BodyConfig{Mass: 5, Position: []float64{0, 0}, Velocity: []float64{0.5, 0}},
		Body2: BodyConfig{Mass: 5, Position: []float64{1, 1}, Velocity: []float64{-0.5, 0}},
	},
	"circular": {
		Integrator: "rk4", Step: 0.01, Steps: 3000, G: 1,
		Body1: BodyConfig{Mass: 0.5, Position: []float64{-0.5, 0}, Velocity: []float64{0, -0.5}},
		Body2: BodyConfig{Mass: 0.5, Position: []float64{0.5, 0}, Velocity: []float64{0, 0.5}},
	},
	"star-planet": {
		Integrator: "verlet", Step: 0.001, Steps: 20000, G: 1,
		Body1: BodyConfig{Mass: 1, Position: []float64{0, 0}, Velocity: []float64{0, 0}},
		Body2: BodyConfig{Mass: 0.001, Position: []float64{1, 0}, Velocity: []float64{0, 1.2}},
	},
	"eccentric": {
		Integrator: "rk45", Step: 0.001, Steps: 50000, Tolerance: 1e-8, MaxTime: 30, MaxRejects: 50, G: 1,
		Body1: BodyConfig{Mass: 0.9, Position: []float64{0, 0}, Velocity: []float64{0, 0}},
		Body2: BodyConfig{Mass: 0.1, Position: []float64{0.2, 0}, Velocity: []float64{0, 2.9}},
	},
	"inclined": {
		Integrator: "rk4", Step: 0.002, Steps: 5000, G: 1,
		Body1: BodyConfig{Mass: 1, Position: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}},
		Body2: BodyConfig{Mass: 0.5, Position: []float64{1, 0.2, 0.3}, Velocity: []float64{-0.1, 1.1, 0.5}},
	},
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
