// Package config loads the process configuration from a YAML or JSON file
// with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	coremetrics "github.com/ridegrid/ridegrid/core/metrics"
	"github.com/ridegrid/ridegrid/core/sim"
	"github.com/ridegrid/ridegrid/infra/mqtt"
)

// APIConfig defines the HTTP boundary settings.
type APIConfig struct {
	Addr string `json:"addr"`
	// AutoTick makes the service advance the simulation by itself, paced by
	// the simulation tick interval. When false, ticks only happen through
	// POST /api/simulation/tick.
	AutoTick bool `json:"auto_tick"`
}

// Config is the full process configuration.
type Config struct {
	Simulation sim.Config         `json:"simulation"`
	API        APIConfig          `json:"api"`
	Metrics    coremetrics.Config `json:"metrics"`
	MQTT       mqtt.Config        `json:"mqtt"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Simulation: sim.DefaultConfig()}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults applies sane defaults to unset fields.
func (c *Config) SetDefaults() {
	if c.Simulation == (sim.Config{}) {
		c.Simulation = sim.DefaultConfig()
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8000"
	}
	if c.Metrics.PrometheusAddr == "" {
		c.Metrics.PrometheusAddr = ":9090"
	}
	c.MQTT.SetDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt enabled but no broker configured")
	}
	return nil
}

// Load reads the configuration file, applies RG_* environment overrides
// (RG_SIMULATION__GRID_WIDTH=30 sets simulation.grid_width), fills defaults
// and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("RG_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "rg_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
