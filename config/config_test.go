package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
simulation:
  grid_width: 30
  grid_height: 25
  driver_speed: 2
  tick_interval_ms: 500
api:
  addr: ":8080"
  auto_tick: true
metrics:
  prometheus_enabled: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Simulation.GridWidth != 30 || cfg.Simulation.GridHeight != 25 {
		t.Fatalf("grid not loaded: %+v", cfg.Simulation)
	}
	if cfg.Simulation.DriverSpeed != 2 || cfg.Simulation.TickIntervalMS != 500 {
		t.Fatalf("pacing not loaded: %+v", cfg.Simulation)
	}
	if cfg.API.Addr != ":8080" || !cfg.API.AutoTick {
		t.Fatalf("api not loaded: %+v", cfg.API)
	}
	if !cfg.Metrics.PrometheusEnabled || cfg.Metrics.PrometheusAddr != ":9090" {
		t.Fatalf("metrics defaults not applied: %+v", cfg.Metrics)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"simulation": {"grid_width": 10, "grid_height": 10, "driver_speed": 1, "tick_interval_ms": 1000}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Simulation.GridWidth != 10 {
		t.Fatalf("grid not loaded: %+v", cfg.Simulation)
	}
	if cfg.API.Addr != ":8000" {
		t.Fatalf("default api addr missing: %+v", cfg.API)
	}
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
simulation:
  grid_width: 20
  grid_height: 20
  driver_speed: 1
  tick_interval_ms: 1000
`)
	t.Setenv("RG_SIMULATION__GRID_WIDTH", "42")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Simulation.GridWidth != 42 {
		t.Fatalf("env override not applied: %+v", cfg.Simulation)
	}
}

func TestLoadRejectsInvalidSimulation(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
simulation:
  grid_width: -1
  grid_height: 20
  driver_speed: 1
  tick_interval_ms: 1000
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "simulation = {}")
	if _, err := Load(path); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestValidateMQTTNeedsBroker(t *testing.T) {
	cfg := Default()
	cfg.MQTT.Enabled = true
	cfg.MQTT.Broker = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected broker validation error")
	}
}
