package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eugenenazirov/bundle-optimizer/internal/catalog"
	"github.com/eugenenazirov/bundle-optimizer/internal/knapsack"
)

var envKeys = []string{
	"PORT", "DEFAULT_CAPACITY", "MAX_CAPACITY", "MAX_ITEMS", "SOLVER_MEMORY_MODE",
	"SOLVER_CELL_LIMIT", "SHUTDOWN_GRACE_PERIOD", "ENABLE_REQUEST_LOGGING",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.DefaultCapacity != catalog.DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", catalog.DefaultCapacity, cfg.DefaultCapacity)
	}
	if cfg.MemoryMode != knapsack.Auto || cfg.FullTableCellLimit != knapsack.DefaultCellLimit {
		t.Fatalf("unexpected solver defaults: %s / %d", cfg.MemoryMode, cfg.FullTableCellLimit)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if !cfg.EnableRequestLogging || cfg.RateLimitRPS != defaultRateLimitRPS {
		t.Fatalf("unexpected logging/rate limit defaults: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DEFAULT_CAPACITY", "75")
	t.Setenv("SOLVER_MEMORY_MODE", "rolling")
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("ENABLE_REQUEST_LOGGING", "false")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "3s")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.DefaultCapacity != 75 {
		t.Fatalf("expected capacity 75, got %d", cfg.DefaultCapacity)
	}
	if cfg.MemoryMode != knapsack.RollingRow {
		t.Fatalf("expected rolling mode, got %s", cfg.MemoryMode)
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected explicit zero to disable rate limiting, got %v", cfg.RateLimitRPS)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled")
	}
	if cfg.ShutdownGracePeriod != 3*time.Second {
		t.Fatalf("expected 3s grace period, got %s", cfg.ShutdownGracePeriod)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_ITEMS", "many")

	if _, err := Load(nil); err == nil {
		t.Fatalf("expected error for non-integer MAX_ITEMS")
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("DEFAULT_CAPACITY", "60")
	t.Setenv("LOG_LEVEL", "warn")

	path := writeYAML(t, `
port: "7100"
default_capacity: 80
write_timeout: 2s
enable_request_logging: false
solver:
  memory_mode: full
  full_table_cell_limit: 1000
rate_limit:
  rps: 5
telemetry:
  otlp_endpoint: http://collector:4318
`)

	port := "7200"
	cfg, err := Load(&CLIOverrides{ConfigFile: path, Port: &port})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7200" {
		t.Fatalf("expected CLI port to win, got %s", cfg.Port)
	}
	if cfg.DefaultCapacity != 80 {
		t.Fatalf("expected YAML capacity to beat env, got %d", cfg.DefaultCapacity)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env log level to survive, got %s", cfg.LogLevel)
	}
	if cfg.WriteTimeout != 2*time.Second || cfg.EnableRequestLogging {
		t.Fatalf("unexpected YAML server settings: %+v", cfg)
	}
	if cfg.MemoryMode != knapsack.FullTable || cfg.FullTableCellLimit != 1000 {
		t.Fatalf("unexpected solver settings: %s / %d", cfg.MemoryMode, cfg.FullTableCellLimit)
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("expected rps 5 with default burst, got %v / %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.OTLPEndpoint != "http://collector:4318" {
		t.Fatalf("unexpected OTLP endpoint %q", cfg.OTLPEndpoint)
	}

	opts := cfg.SolverOptions()
	if opts.MemoryMode != knapsack.FullTable || opts.CellLimit != 1000 {
		t.Fatalf("unexpected solver options %+v", opts)
	}
}

func TestLoadYAMLErrors(t *testing.T) {
	clearEnv(t)

	cases := map[string]string{
		"bad duration":    "idle_timeout: soon\n",
		"bad memory mode": "solver:\n  memory_mode: greedy\n",
		"bad syntax":      "port: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeYAML(t, content)
			if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}

	if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCLIOverrides(t *testing.T) {
	clearEnv(t)

	capacity := 120
	mode := "rolling"
	rps := 0.0
	level := "debug"
	cfg, err := Load(&CLIOverrides{DefaultCapacity: &capacity, MemoryMode: &mode, RateLimitRPS: &rps, LogLevel: &level})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DefaultCapacity != 120 || cfg.MemoryMode != knapsack.RollingRow || cfg.RateLimitRPS != 0 || cfg.LogLevel != "debug" {
		t.Fatalf("CLI overrides not applied: %+v", cfg)
	}

	bad := "fractional"
	if _, err := Load(&CLIOverrides{MemoryMode: &bad}); err == nil {
		t.Fatalf("expected error for unknown memory mode")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := map[string]func(*Config){
		"negative rps":           func(c *Config) { c.RateLimitRPS = -1 },
		"negative burst":         func(c *Config) { c.RateLimitBurst = -1 },
		"zero default capacity":  func(c *Config) { c.DefaultCapacity = 0 },
		"capacity above maximum": func(c *Config) { c.MaxCapacity = 10; c.DefaultCapacity = 20 },
		"negative max items":     func(c *Config) { c.MaxItems = -1 },
		"negative cell limit":    func(c *Config) { c.FullTableCellLimit = -1 },
		"unknown log level":      func(c *Config) { c.LogLevel = "chatty" },
	}

	if err := validateConfig(defaultConfig()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(&cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
