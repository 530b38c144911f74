package sim

import "github.com/ridegrid/ridegrid/core/grid"

// Defaults for a fresh simulation.
const (
	DefaultGridWidth    = 20
	DefaultGridHeight   = 20
	DefaultDriverSpeed  = 1
	DefaultTickInterval = 1000
)

// Config holds the tunable simulation parameters. TickIntervalMS only paces
// external tick drivers (the auto-tick loop, a UI); the engine itself never
// reads it.
type Config struct {
	GridWidth      int `json:"grid_width"`
	GridHeight     int `json:"grid_height"`
	DriverSpeed    int `json:"driver_speed"`
	TickIntervalMS int `json:"tick_interval_ms"`
}

// DefaultConfig returns the 20x20 grid the simulation starts with.
func DefaultConfig() Config {
	return Config{
		GridWidth:      DefaultGridWidth,
		GridHeight:     DefaultGridHeight,
		DriverSpeed:    DefaultDriverSpeed,
		TickIntervalMS: DefaultTickInterval,
	}
}

// Validate checks that every field is positive.
func (c Config) Validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"grid_width", c.GridWidth},
		{"grid_height", c.GridHeight},
		{"driver_speed", c.DriverSpeed},
		{"tick_interval_ms", c.TickIntervalMS},
	} {
		if f.value <= 0 {
			return &InvalidConfigError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// Grid returns the bounded world described by the config.
func (c Config) Grid() grid.Grid {
	return grid.Grid{Width: c.GridWidth, Height: c.GridHeight}
}
