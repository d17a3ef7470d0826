// Package config handles configuration loading for resellerdash.
// It supports YAML config files with .env and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "RESELLERDASH"

// Config represents the complete application configuration.
type Config struct {
	Sheet   SheetConfig   `mapstructure:"sheet"   yaml:"sheet"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SheetConfig holds the upstream spreadsheet endpoint settings.
type SheetConfig struct {
	URL          string        `mapstructure:"url"           yaml:"url"           validate:"omitempty,url"`
	TimeoutSec   int           `mapstructure:"timeout_sec"   yaml:"timeout_sec"   validate:"gte=1"`
	CacheEnabled bool          `mapstructure:"cache_enabled" yaml:"cache_enabled"`
	CacheTTL     int           `mapstructure:"cache_ttl"     yaml:"cache_ttl"     validate:"gte=0"` // seconds
	Breaker      BreakerConfig `mapstructure:"breaker"       yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the sheet endpoint.
type BreakerConfig struct {
	Enabled          bool `mapstructure:"enabled"           yaml:"enabled"`
	FailureThreshold int  `mapstructure:"failure_threshold" yaml:"failure_threshold" validate:"gte=1"`
	OpenTimeoutSec   int  `mapstructure:"open_timeout_sec"  yaml:"open_timeout_sec"  validate:"gte=1"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         validate:"min=1,max=65535"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"    validate:"required,startswith=/"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// Timeout returns the per-request upstream timeout.
func (c SheetConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CacheDuration returns the cache window.
func (c SheetConfig) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Addr returns the API listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.resellerdash/config.yaml (home directory)
//  3. /etc/resellerdash/config.yaml (system)
//
// A .env file in the working directory is loaded first and never overrides
// variables already set. Environment variables override config file values.
// Format: RESELLERDASH_<SECTION>_<KEY>, e.g., RESELLERDASH_SHEET_URL
func Load() (*Config, error) {
	loadDotEnv()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".resellerdash"))
	v.AddConfigPath("/etc/resellerdash")
	bindEnv(v)

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns a configuration populated only from defaults.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadDotEnv loads ./.env if present.
func loadDotEnv() {
	_ = godotenv.Load()
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Sheet defaults
	v.SetDefault("sheet.url", "")
	v.SetDefault("sheet.timeout_sec", 30)
	v.SetDefault("sheet.cache_enabled", true)
	v.SetDefault("sheet.cache_ttl", 300) // 5 minutes
	v.SetDefault("sheet.breaker.enabled", true)
	v.SetDefault("sheet.breaker.failure_threshold", 5)
	v.SetDefault("sheet.breaker.open_timeout_sec", 30)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:5173"})

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if url := os.Getenv(EnvSheetURL); url != "" {
		cfg.Sheet.URL = url
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
