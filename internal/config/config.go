package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/bundle-optimizer/internal/catalog"
	"github.com/eugenenazirov/bundle-optimizer/internal/knapsack"
)

const (
	defaultPort           = "8080"
	defaultMaxCapacity    = 1_000_000
	defaultMaxItems       = 500
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	DefaultCapacity      int
	MaxCapacity          int
	MaxItems             int
	MemoryMode           knapsack.MemoryMode
	FullTableCellLimit   int
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	LogLevel             string
	OTLPEndpoint         string
}

// SolverOptions returns the knapsack options derived from the configuration.
func (c Config) SolverOptions() knapsack.Options {
	return knapsack.Options{
		MemoryMode: c.MemoryMode,
		CellLimit:  c.FullTableCellLimit,
	}
}

// yamlConfig represents the YAML configuration file structure.
// Pointer fields distinguish "absent" from an explicit zero.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	DefaultCapacity      int           `yaml:"default_capacity"`
	MaxCapacity          int           `yaml:"max_capacity"`
	MaxItems             int           `yaml:"max_items"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	LogLevel             string        `yaml:"log_level"`
	Solver               yamlSolver    `yaml:"solver"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	Telemetry            yamlTelemetry `yaml:"telemetry"`
}

// yamlSolver represents the solver section in YAML.
type yamlSolver struct {
	MemoryMode         string `yaml:"memory_mode"`
	FullTableCellLimit *int   `yaml:"full_table_cell_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// yamlTelemetry represents the telemetry section in YAML.
type yamlTelemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// envConfig lists the supported environment variables. Unset variables leave
// the pointers nil.
type envConfig struct {
	Port                 *string        `env:"PORT"`
	DefaultCapacity      *int           `env:"DEFAULT_CAPACITY"`
	MaxCapacity          *int           `env:"MAX_CAPACITY"`
	MaxItems             *int           `env:"MAX_ITEMS"`
	MemoryMode           *string        `env:"SOLVER_MEMORY_MODE"`
	FullTableCellLimit   *int           `env:"SOLVER_CELL_LIMIT"`
	ShutdownGracePeriod  *time.Duration `env:"SHUTDOWN_GRACE_PERIOD"`
	EnableRequestLogging *bool          `env:"ENABLE_REQUEST_LOGGING"`
	RateLimitRPS         *float64       `env:"RATE_LIMIT_RPS"`
	RateLimitBurst       *int           `env:"RATE_LIMIT_BURST"`
	LogLevel             *string        `env:"LOG_LEVEL"`
	OTLPEndpoint         *string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile      string
	Port            *string
	DefaultCapacity *int
	MaxCapacity     *int
	MemoryMode      *string
	RateLimitRPS    *float64
	RateLimitBurst  *int
	LogLevel        *string
	OTLPEndpoint    *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		DefaultCapacity:      catalog.DefaultCapacity,
		MaxCapacity:          defaultMaxCapacity,
		MaxItems:             defaultMaxItems,
		MemoryMode:           knapsack.Auto,
		FullTableCellLimit:   knapsack.DefaultCellLimit,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		LogLevel:             defaultLogLevel,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.DefaultCapacity != 0 {
		cfg.DefaultCapacity = yamlCfg.DefaultCapacity
	}
	if yamlCfg.MaxCapacity != 0 {
		cfg.MaxCapacity = yamlCfg.MaxCapacity
	}
	if yamlCfg.MaxItems != 0 {
		cfg.MaxItems = yamlCfg.MaxItems
	}

	durations := []struct {
		raw    string
		target *time.Duration
		name   string
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod, "shutdown_grace_period"},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout, "read_header_timeout"},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout, "write_timeout"},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout, "idle_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.Solver.MemoryMode != "" {
		mode, err := knapsack.ParseMemoryMode(yamlCfg.Solver.MemoryMode)
		if err != nil {
			return err
		}
		cfg.MemoryMode = mode
	}
	if yamlCfg.Solver.FullTableCellLimit != nil {
		cfg.FullTableCellLimit = *yamlCfg.Solver.FullTableCellLimit
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	if yamlCfg.Telemetry.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = yamlCfg.Telemetry.OTLPEndpoint
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if ec.Port != nil && *ec.Port != "" {
		cfg.Port = *ec.Port
	}
	if ec.DefaultCapacity != nil {
		cfg.DefaultCapacity = *ec.DefaultCapacity
	}
	if ec.MaxCapacity != nil {
		cfg.MaxCapacity = *ec.MaxCapacity
	}
	if ec.MaxItems != nil {
		cfg.MaxItems = *ec.MaxItems
	}
	if ec.MemoryMode != nil {
		mode, err := knapsack.ParseMemoryMode(*ec.MemoryMode)
		if err != nil {
			return fmt.Errorf("SOLVER_MEMORY_MODE: %w", err)
		}
		cfg.MemoryMode = mode
	}
	if ec.FullTableCellLimit != nil {
		cfg.FullTableCellLimit = *ec.FullTableCellLimit
	}
	if ec.ShutdownGracePeriod != nil {
		cfg.ShutdownGracePeriod = *ec.ShutdownGracePeriod
	}
	if ec.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *ec.EnableRequestLogging
	}
	if ec.RateLimitRPS != nil {
		cfg.RateLimitRPS = *ec.RateLimitRPS
	}
	if ec.RateLimitBurst != nil {
		cfg.RateLimitBurst = *ec.RateLimitBurst
	}
	if ec.LogLevel != nil && *ec.LogLevel != "" {
		cfg.LogLevel = *ec.LogLevel
	}
	if ec.OTLPEndpoint != nil {
		cfg.OTLPEndpoint = *ec.OTLPEndpoint
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.DefaultCapacity != nil && *overrides.DefaultCapacity > 0 {
		cfg.DefaultCapacity = *overrides.DefaultCapacity
	}

	if overrides.MaxCapacity != nil && *overrides.MaxCapacity > 0 {
		cfg.MaxCapacity = *overrides.MaxCapacity
	}

	if overrides.MemoryMode != nil && *overrides.MemoryMode != "" {
		mode, err := knapsack.ParseMemoryMode(*overrides.MemoryMode)
		if err != nil {
			return fmt.Errorf("parse memory mode: %w", err)
		}
		cfg.MemoryMode = mode
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.OTLPEndpoint != nil && *overrides.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = *overrides.OTLPEndpoint
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.DefaultCapacity <= 0 {
		return fmt.Errorf("default capacity must be positive, got %d", cfg.DefaultCapacity)
	}
	if cfg.MaxCapacity < 0 {
		return fmt.Errorf("max capacity must be >= 0, got %d", cfg.MaxCapacity)
	}
	if cfg.MaxCapacity > 0 && cfg.DefaultCapacity > cfg.MaxCapacity {
		return fmt.Errorf("default capacity %d exceeds max capacity %d", cfg.DefaultCapacity, cfg.MaxCapacity)
	}
	if cfg.MaxItems < 0 {
		return fmt.Errorf("max items must be >= 0, got %d", cfg.MaxItems)
	}
	if cfg.FullTableCellLimit < 0 {
		return fmt.Errorf("full table cell limit must be >= 0, got %d", cfg.FullTableCellLimit)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}
