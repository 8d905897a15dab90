package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	TMDB     TMDBConfig     `mapstructure:"tmdb"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// TMDBConfig holds TMDB API client configuration.
type TMDBConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds

	// RequestsPerSecond throttles outgoing API calls. TMDB allows roughly
	// 40 requests per second per key.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`

	// RetryAttempts bounds retries for rate-limited or 5xx responses.
	RetryAttempts int `mapstructure:"retry_attempts"`
	// RetryInitialDelayMS is the first retry delay; doubles per attempt.
	RetryInitialDelayMS int `mapstructure:"retry_initial_delay_ms"`
}

// ResolverConfig holds tunables for the lookup resolution pipeline.
// The defaults are load-bearing: the decision thresholds below are what the
// resolver's accept/reject behavior is calibrated (and tested) against.
type ResolverConfig struct {
	// RuntimeEnrichmentLimit caps how many ambiguous candidates get a full
	// details fetch per resolution.
	RuntimeEnrichmentLimit int `mapstructure:"runtime_enrichment_limit"`

	// SingleflightWaitTimeoutSeconds bounds how long a concurrent caller
	// waits for an in-flight identical lookup before taking over ownership.
	SingleflightWaitTimeoutSeconds int `mapstructure:"singleflight_wait_timeout_seconds"`

	// PopularityRatio and PopularityDelta must both be exceeded for a
	// popularity-based disambiguation between quality-tied candidates.
	PopularityRatio float64 `mapstructure:"popularity_ratio"`
	PopularityDelta float64 `mapstructure:"popularity_delta"`

	// EnrichmentConcurrency bounds parallel details fetches.
	EnrichmentConcurrency int `mapstructure:"enrichment_concurrency"`
}

// DatabaseConfig holds the persistent lookup cache location.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "console" or "json"
	Path       string `mapstructure:"path"`   // directory for log files, empty disables
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// SingleflightWaitTimeout returns the wait timeout as a duration.
func (c *ResolverConfig) SingleflightWaitTimeout() time.Duration {
	return time.Duration(c.SingleflightWaitTimeoutSeconds) * time.Second
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.filmatch")
	}

	v.SetEnvPrefix("FILMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// These tunables predate the FILMATCH_ prefix and keep their documented
	// environment names.
	_ = v.BindEnv("resolver.runtime_enrichment_limit", "TMDB_MATCH_RUNTIME_ENRICHMENT_LIMIT")
	_ = v.BindEnv("resolver.singleflight_wait_timeout_seconds", "TMDB_SINGLEFLIGHT_WAIT_TIMEOUT_SECONDS")
	_ = v.BindEnv("tmdb.api_key", "TMDB_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.timeout", 15)
	v.SetDefault("tmdb.requests_per_second", 35.0)
	v.SetDefault("tmdb.retry_attempts", 3)
	v.SetDefault("tmdb.retry_initial_delay_ms", 500)

	v.SetDefault("resolver.runtime_enrichment_limit", 10)
	v.SetDefault("resolver.singleflight_wait_timeout_seconds", 45)
	v.SetDefault("resolver.popularity_ratio", 1.8)
	v.SetDefault("resolver.popularity_delta", 10.0)
	v.SetDefault("resolver.enrichment_concurrency", 4)

	v.SetDefault("database.path", "./data/filmatch.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)
}
