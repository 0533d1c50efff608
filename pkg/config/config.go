package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/emberhaus/hotswap/pkg/observability"
)

// Config holds all engine configuration
type Config struct {
	Graph         GraphConfig         `yaml:"graph"`
	Registry      RegistryConfig      `yaml:"registry"`
	Rollback      RollbackConfig      `yaml:"rollback"`
	Migration     MigrationConfig     `yaml:"migration"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GraphConfig holds dependency graph tunables
type GraphConfig struct {
	// NodeCapacity is the fixed node budget.
	NodeCapacity int `yaml:"node_capacity"`

	// MaxTraversalDepth guards cycle detection against pathological inputs.
	MaxTraversalDepth int `yaml:"max_traversal_depth"`

	// ReloadOrderCap bounds cascade reload computations.
	ReloadOrderCap int `yaml:"reload_order_cap"`
}

// RegistryConfig holds version registry tunables
type RegistryConfig struct {
	HistoryLimit    int           `yaml:"history_limit"`
	CompatCacheSize int           `yaml:"compat_cache_size"`
	CompatCacheTTL  time.Duration `yaml:"compat_cache_ttl"`
}

// RollbackConfig holds rollback pool tunables
type RollbackConfig struct {
	PoolCapacity int `yaml:"pool_capacity"`
}

// MigrationConfig holds migration engine tunables
type MigrationConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel `yaml:"-"`
	LogLevelName   string                 `yaml:"log_level"`
	MetricsEnabled bool                   `yaml:"metrics_enabled"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Graph: GraphConfig{
			NodeCapacity:      getEnvInt("HOTSWAP_NODE_CAPACITY", 1024),
			MaxTraversalDepth: getEnvInt("HOTSWAP_MAX_TRAVERSAL_DEPTH", 256),
			ReloadOrderCap:    getEnvInt("HOTSWAP_RELOAD_ORDER_CAP", 256),
		},
		Registry: RegistryConfig{
			HistoryLimit:    getEnvInt("HOTSWAP_HISTORY_LIMIT", 128),
			CompatCacheSize: getEnvInt("HOTSWAP_COMPAT_CACHE_SIZE", 256),
			CompatCacheTTL:  getEnvDuration("HOTSWAP_COMPAT_CACHE_TTL", time.Minute),
		},
		Rollback: RollbackConfig{
			PoolCapacity: getEnvInt("HOTSWAP_ROLLBACK_CAPACITY", 32),
		},
		Migration: MigrationConfig{
			Timeout:    getEnvDuration("HOTSWAP_MIGRATION_TIMEOUT", 30*time.Second),
			RetryCount: getEnvInt("HOTSWAP_MIGRATION_RETRIES", 0),
		},
		Observability: ObservabilityConfig{
			LogLevelName:   getEnv("HOTSWAP_LOG_LEVEL", "info"),
			MetricsEnabled: getEnvBool("HOTSWAP_METRICS_ENABLED", true),
		},
	}

	cfg.Observability.LogLevel = parseLogLevel(cfg.Observability.LogLevelName)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile overlays YAML file settings onto an already-loaded config
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if cfg.Observability.LogLevelName != "" {
		cfg.Observability.LogLevel = parseLogLevel(cfg.Observability.LogLevelName)
	}
	return cfg.Validate()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Graph.NodeCapacity <= 0 {
		return fmt.Errorf("graph node capacity must be positive")
	}
	if c.Graph.MaxTraversalDepth <= 0 {
		return fmt.Errorf("graph max traversal depth must be positive")
	}
	if c.Graph.ReloadOrderCap <= 0 {
		return fmt.Errorf("reload order cap must be positive")
	}
	if c.Registry.HistoryLimit <= 0 {
		return fmt.Errorf("registry history limit must be positive")
	}
	if c.Rollback.PoolCapacity <= 0 {
		return fmt.Errorf("rollback pool capacity must be positive")
	}
	if c.Migration.Timeout <= 0 {
		return fmt.Errorf("migration timeout must be positive")
	}
	if c.Migration.RetryCount < 0 {
		return fmt.Errorf("migration retry count must not be negative")
	}
	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
