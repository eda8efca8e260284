package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

const (
	day  = 86400.0
	year = 365.25 * day
)

var Presets = map[string]*Config{
	"earth-moon": {
		G: dynamo.DefaultG, Dt: 60, Duration: 27.32 * day, Workers: 1,
		Bodies: []BodyConfig{
			{ID: "Earth", Mass: 5.972e24},
			{ID: "Moon", Mass: 7.348e22, Position: [3]float64{3.844e8, 0, 0}, Velocity: [3]float64{0, 1022, 0}},
		},
	},
	"sun-earth": {
		G: dynamo.DefaultG, Dt: 3600, Duration: year, Workers: 1,
		Bodies: []BodyConfig{
			{ID: "Sun", Mass: 1.989e30},
			{ID: "Earth", Mass: 5.972e24, Position: [3]float64{1.496e11, 0, 0}, Velocity: [3]float64{0, 29780, 0}},
		},
	},
	"binary": {
		G: 1, Dt: 0.001, Duration: 20, Workers: 1,
		Bodies: []BodyConfig{
			{ID: "A", Mass: 1, Position: [3]float64{-0.5, 0, 0}, Velocity: [3]float64{0, -0.7071067811865476, 0}},
			{ID: "B", Mass: 1, Position: [3]float64{0.5, 0, 0}, Velocity: [3]float64{0, 0.7071067811865476, 0}},
		},
	},
	"figure-eight": {
		G: 1, Dt: 0.0001, Duration: 6.3259, Workers: 1,
		Bodies: []BodyConfig{
			{ID: "1", Mass: 1, Position: [3]float64{0.97000436, -0.24308753, 0}, Velocity: [3]float64{0.466203685, 0.43236573, 0}},
			{ID: "2", Mass: 1, Position: [3]float64{-0.97000436, 0.24308753, 0}, Velocity: [3]float64{0.466203685, 0.43236573, 0}},
			{ID: "3", Mass: 1, Velocity: [3]float64{-0.93240737, -0.86473146, 0}},
		},
	},
}

// GetPreset returns a copy of the named preset with the defaults for the
// fields a preset does not set.
func GetPreset(name string) (*Config, error) {
	preset, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}

	cfg := *preset
	cfg.Bodies = append([]BodyConfig(nil), preset.Bodies...)
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return &cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
