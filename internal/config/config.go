package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/box-packer/internal/importer"
	"github.com/eugenenazirov/box-packer/internal/logging"
	"github.com/eugenenazirov/box-packer/internal/packing"
	"github.com/eugenenazirov/box-packer/internal/storage"
	"github.com/eugenenazirov/box-packer/internal/validation"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultPackTimeout    = 10 * time.Second
	defaultMaxItems       = 500
	defaultRunHistory     = 50
	defaultMaxGridCells   = 2_000_000
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string                  `yaml:"port"`
	ContainerTypes       []packing.ContainerType `yaml:"container_types"`
	CatalogFile          string                  `yaml:"catalog_file"`
	DefaultStrategy      packing.Strategy        `yaml:"default_strategy"`
	GridStep             float64                 `yaml:"grid_step"`
	PackTimeout          time.Duration           `yaml:"pack_timeout"`
	MaxItems             int                     `yaml:"max_items"`
	MaxGridCells         int64                   `yaml:"max_grid_cells"`
	MaxConcurrentRuns    int                     `yaml:"max_concurrent_runs"`
	RunHistory           int                     `yaml:"run_history"`
	LogLevel             string                  `yaml:"log_level"`
	ShutdownGracePeriod  time.Duration           `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    time.Duration           `yaml:"read_header_timeout"`
	WriteTimeout         time.Duration           `yaml:"write_timeout"`
	IdleTimeout          time.Duration           `yaml:"idle_timeout"`
	EnableRequestLogging bool                    `yaml:"enable_request_logging"`
	RateLimitRPS         float64                 `yaml:"-"`
	RateLimitBurst       int                     `yaml:"-"`
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string                  `yaml:"port"`
	ContainerTypes       []packing.ContainerType `yaml:"container_types"`
	CatalogFile          string                  `yaml:"catalog_file"`
	DefaultStrategy      string                  `yaml:"default_strategy"`
	GridStep             float64                 `yaml:"grid_step"`
	PackTimeout          string                  `yaml:"pack_timeout"`
	MaxItems             int                     `yaml:"max_items"`
	MaxGridCells         int64                   `yaml:"max_grid_cells"`
	MaxConcurrentRuns    int                     `yaml:"max_concurrent_runs"`
	RunHistory           int                     `yaml:"run_history"`
	LogLevel             string                  `yaml:"log_level"`
	ShutdownGracePeriod  string                  `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string                  `yaml:"read_header_timeout"`
	WriteTimeout         string                  `yaml:"write_timeout"`
	IdleTimeout          string                  `yaml:"idle_timeout"`
	EnableRequestLogging *bool                   `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit           `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile      string
	Port            *string
	CatalogFile     *string
	DefaultStrategy *string
	GridStep        *float64
	PackTimeout     *time.Duration
	LogLevel        *string
	RateLimitRPS    *float64
	RateLimitBurst  *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment variables sit below the YAML file, so apply them first.
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

	if cfg.CatalogFile != "" {
		types, err := loadCatalog(cfg.CatalogFile)
		if err != nil {
			return Config{}, err
		}
		cfg.ContainerTypes = types
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
		ContainerTypes:       storage.DefaultContainerTypes(),
		DefaultStrategy:      packing.StrategyAuto,
		GridStep:             packing.DefaultGridStep,
		PackTimeout:          defaultPackTimeout,
		MaxItems:             defaultMaxItems,
		MaxGridCells:         defaultMaxGridCells,
		MaxConcurrentRuns:    runtime.NumCPU(),
		RunHistory:           defaultRunHistory,
		LogLevel:             "info",
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
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

// loadCatalog imports the container catalog referenced by the configuration.
func loadCatalog(path string) ([]packing.ContainerType, error) {
	result := importer.ImportContainerTypes(path)
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("import catalog %s: %w", path, err)
	}
	return result.ContainerTypes, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if len(yamlCfg.ContainerTypes) > 0 {
		cfg.ContainerTypes = yamlCfg.ContainerTypes
	}

	if yamlCfg.CatalogFile != "" {
		cfg.CatalogFile = yamlCfg.CatalogFile
	}

	if yamlCfg.DefaultStrategy != "" {
		strategy, err := packing.ParseStrategy(yamlCfg.DefaultStrategy)
		if err != nil {
			return err
		}
		cfg.DefaultStrategy = strategy
	}

	if yamlCfg.GridStep != 0 {
		cfg.GridStep = yamlCfg.GridStep
	}

	if yamlCfg.MaxItems != 0 {
		cfg.MaxItems = yamlCfg.MaxItems
	}

	if yamlCfg.MaxGridCells != 0 {
		cfg.MaxGridCells = yamlCfg.MaxGridCells
	}

	if yamlCfg.MaxConcurrentRuns != 0 {
		cfg.MaxConcurrentRuns = yamlCfg.MaxConcurrentRuns
	}

	if yamlCfg.RunHistory != 0 {
		cfg.RunHistory = yamlCfg.RunHistory
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"pack_timeout", yamlCfg.PackTimeout, &cfg.PackTimeout},
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
			return fmt.Errorf("%s %q: %w", d.key, d.raw, err)
		}
		*d.dst = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil && *yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil && *yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration. Malformed numbers
// are ignored; an unknown strategy name is an error.
func applyEnvConfig(cfg *Config) error {
	if port := env("PORT"); port != "" {
		cfg.Port = port
	}

	if catalog := env("CATALOG_FILE"); catalog != "" {
		cfg.CatalogFile = catalog
	}

	if raw := env("DEFAULT_STRATEGY"); raw != "" {
		strategy, err := packing.ParseStrategy(raw)
		if err != nil {
			return fmt.Errorf("DEFAULT_STRATEGY: %w", err)
		}
		cfg.DefaultStrategy = strategy
	}

	if raw := env("GRID_STEP"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.GridStep = value
		}
	}

	if raw := env("PACK_TIMEOUT"); raw != "" {
		if value, err := time.ParseDuration(raw); err == nil {
			cfg.PackTimeout = value
		}
	}

	if raw := env("MAX_ITEMS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.MaxItems = value
		}
	}

	if raw := env("MAX_GRID_CELLS"); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.MaxGridCells = value
		}
	}

	if raw := env("MAX_CONCURRENT_RUNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.MaxConcurrentRuns = value
		}
	}

	if level := env("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if rps := env("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := env("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.CatalogFile != nil && *overrides.CatalogFile != "" {
		cfg.CatalogFile = *overrides.CatalogFile
	}

	if overrides.DefaultStrategy != nil && *overrides.DefaultStrategy != "" {
		strategy, err := packing.ParseStrategy(*overrides.DefaultStrategy)
		if err != nil {
			return fmt.Errorf("parse strategy: %w", err)
		}
		cfg.DefaultStrategy = strategy
	}

	if overrides.GridStep != nil && *overrides.GridStep != 0 {
		cfg.GridStep = *overrides.GridStep
	}

	if overrides.PackTimeout != nil && *overrides.PackTimeout != 0 {
		cfg.PackTimeout = *overrides.PackTimeout
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
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
	if cfg.GridStep <= 0 {
		return fmt.Errorf("grid step %v: %w", cfg.GridStep, packing.ErrInvalidGridStep)
	}
	if cfg.PackTimeout <= 0 {
		return fmt.Errorf("pack timeout must be positive, got %s", cfg.PackTimeout)
	}
	if cfg.MaxItems <= 0 {
		return fmt.Errorf("max items must be positive, got %d", cfg.MaxItems)
	}
	if cfg.MaxGridCells <= 0 {
		return fmt.Errorf("max grid cells must be positive, got %d", cfg.MaxGridCells)
	}
	if cfg.MaxConcurrentRuns <= 0 {
		return fmt.Errorf("max concurrent runs must be positive, got %d", cfg.MaxConcurrentRuns)
	}
	if cfg.RunHistory <= 0 {
		return fmt.Errorf("run history must be positive, got %d", cfg.RunHistory)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if err := validation.ContainerTypes(cfg.ContainerTypes); err != nil {
		return fmt.Errorf("container types: %w", err)
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
