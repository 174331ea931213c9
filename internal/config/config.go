package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/load-planner/internal/catalog"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                    string
	ShutdownGracePeriod     time.Duration
	ReadHeaderTimeout       time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	EnableRequestLogging    bool
	RateLimitRPS            float64
	RateLimitBurst          int
	LogLevel                string
	MetricsEnabled          bool
	ContainerMaxGrossWeight float64
	Containers              []catalog.ContainerPreset
	Trucks                  []catalog.TruckClass
}

// yamlConfig represents the YAML configuration file structure.
// Pointers distinguish "absent" from an explicit zero.
type yamlConfig struct {
	Port                    string                    `yaml:"port"`
	ShutdownGracePeriod     string                    `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout       string                    `yaml:"read_header_timeout"`
	WriteTimeout            string                    `yaml:"write_timeout"`
	IdleTimeout             string                    `yaml:"idle_timeout"`
	EnableRequestLogging    *bool                     `yaml:"enable_request_logging"`
	RateLimit               yamlRateLimit             `yaml:"rate_limit"`
	LogLevel                string                    `yaml:"log_level"`
	MetricsEnabled          *bool                     `yaml:"metrics_enabled"`
	ContainerMaxGrossWeight *float64                  `yaml:"container_max_gross_weight"`
	Containers              []catalog.ContainerPreset `yaml:"containers"`
	Trucks                  []catalog.TruckClass      `yaml:"trucks"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
	LogLevel       *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Apply environment variables (override defaults)
	applyEnvConfig(&cfg)

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                    defaultPort,
		ShutdownGracePeriod:     10 * time.Second,
		ReadHeaderTimeout:       5 * time.Second,
		WriteTimeout:            15 * time.Second,
		IdleTimeout:             60 * time.Second,
		EnableRequestLogging:    true,
		RateLimitRPS:            defaultRateLimitRPS,
		RateLimitBurst:          defaultRateLimitBurst,
		LogLevel:                defaultLogLevel,
		MetricsEnabled:          true,
		ContainerMaxGrossWeight: catalog.DefaultMaxGrossWeight,
		Containers:              catalog.DefaultContainers(),
		Trucks:                  catalog.DefaultTrucks(),
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

	durations := []struct {
		name  string
		raw   string
		field *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.field = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.MetricsEnabled != nil {
		cfg.MetricsEnabled = *yamlCfg.MetricsEnabled
	}
	if yamlCfg.ContainerMaxGrossWeight != nil {
		cfg.ContainerMaxGrossWeight = *yamlCfg.ContainerMaxGrossWeight
	}
	if len(yamlCfg.Containers) > 0 {
		cfg.Containers = yamlCfg.Containers
	}
	if len(yamlCfg.Trucks) > 0 {
		cfg.Trucks = yamlCfg.Trucks
	}
	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if enabled := strings.TrimSpace(os.Getenv("METRICS_ENABLED")); enabled != "" {
		if value, err := strconv.ParseBool(enabled); err == nil {
			cfg.MetricsEnabled = value
		}
	}

	if gross := strings.TrimSpace(os.Getenv("CONTAINER_MAX_GROSS_WEIGHT")); gross != "" {
		if value, err := strconv.ParseFloat(gross, 64); err == nil && value > 0 {
			cfg.ContainerMaxGrossWeight = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
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
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if !(cfg.ContainerMaxGrossWeight > 0) || math.IsInf(cfg.ContainerMaxGrossWeight, 1) {
		return fmt.Errorf("container max gross weight must be finite and positive")
	}
	if err := catalog.ValidateContainers(cfg.Containers); err != nil {
		return fmt.Errorf("containers: %w", err)
	}
	if err := catalog.ValidateTrucks(cfg.Trucks); err != nil {
		return fmt.Errorf("trucks: %w", err)
	}
	return nil
}
