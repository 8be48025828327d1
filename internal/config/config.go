// Package config loads larder settings from a YAML file, a .env file and
// the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/larder/internal/logger"
)

// Environment variables that override the file.
const (
	EnvStore       = "LARDER_STORE"
	EnvDSN         = "LARDER_DSN"
	EnvRedisAddr   = "LARDER_REDIS_ADDR"
	EnvWarningDays = "LARDER_WARNING_DAYS"
	EnvLogLevel    = "LARDER_LOG_LEVEL"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// DefaultPath is where the CLI looks for its config file.
const DefaultPath = ".larder/config.yaml"

// Config holds all larder settings.
type Config struct {
	WarningDays int           `yaml:"warning_days"`
	ColdChain   []string      `yaml:"cold_chain"`
	Weights     WeightsConfig `yaml:"weights"`
	Store       StoreConfig   `yaml:"store"`
	Alerts      AlertsConfig  `yaml:"alerts"`
	Logging     LoggingConfig `yaml:"logging"`
}

// WeightsConfig tunes recipe priority scoring.
type WeightsConfig struct {
	Expired     float64 `yaml:"expired"`
	Soon        float64 `yaml:"soon"`
	Consumption float64 `yaml:"consumption"`
}

// StoreConfig selects where the pantry document is persisted. Path is
// used by the file and sqlite backends, DSN by postgres, Redis* by redis.
type StoreConfig struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	DSN           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// AlertsConfig drives the expiry watcher.
type AlertsConfig struct {
	Interval string `yaml:"interval"`
	Cooldown string `yaml:"cooldown"`
}

// LoggingConfig configures the leveled logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		WarningDays: 3,
		ColdChain:   []string{"Dairy", "Frozen", "Meat", "Fish"},
		Weights: WeightsConfig{
			Expired:     100,
			Soon:        10,
			Consumption: 5,
		},
		Store: StoreConfig{
			Backend:   BackendSQLite,
			Path:      ".larder/larder.db",
			RedisAddr: "localhost:6379",
		},
		Alerts: AlertsConfig{
			Interval: "1h",
			Cooldown: "12h",
		},
		Logging: LoggingConfig{
			Level: "normal",
			File:  ".larder/larder.log",
		},
	}
}

// LoadEnv reads .env files into the process environment. Missing files
// are ignored; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads a YAML config file. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvStore); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Store.RedisAddr = v
	}
	if v := os.Getenv(EnvWarningDays); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWarningDays, err)
		}
		c.WarningDays = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate rejects settings the rest of the program cannot run with.
func (c *Config) Validate() error {
	if c.WarningDays < 0 {
		return fmt.Errorf("warning_days must be >= 0, got %d", c.WarningDays)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store backend %q needs a dsn", c.Store.Backend)
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store backend %q needs redis_addr", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() logger.Level {
	l, _ := logger.ParseLevel(c.Logging.Level)
	return l
}

// AlertInterval returns how often the watcher checks expiry dates.
func (c *Config) AlertInterval() time.Duration {
	return durationOr(c.Alerts.Interval, time.Hour)
}

// AlertCooldown returns how long the watcher stays quiet about an
// ingredient it already reported.
func (c *Config) AlertCooldown() time.Duration {
	return durationOr(c.Alerts.Cooldown, 12*time.Hour)
}

func durationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
