// Package config provides configuration management for the Matchcast service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App             AppConfig             `mapstructure:"app" validate:"required"`
	Database        DatabaseConfig        `mapstructure:"database" validate:"required"`
	SportsData      SportsDataConfig      `mapstructure:"sports_data" validate:"required"`
	RemoteGenerator RemoteGeneratorConfig `mapstructure:"remote_generator"`
	LocalGenerator  LocalGeneratorConfig  `mapstructure:"local_generator"`
	Prediction      PredictionConfig      `mapstructure:"prediction" validate:"required"`
	Server          ServerConfig          `mapstructure:"server" validate:"required"`
	Metrics         MetricsConfig         `mapstructure:"metrics" validate:"required"`
	Scheduler       SchedulerConfig       `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// SportsDataConfig represents the sports-data provider configuration used for
// history backfill.
type SportsDataConfig struct {
	FootballURL     string  `mapstructure:"football_url" validate:"required,url"`
	BasketballURL   string  `mapstructure:"basketball_url" validate:"required,url"`
	APIKey          string  `mapstructure:"api_key"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries      int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSec float64 `mapstructure:"rate_limit_per_sec" validate:"required,gt=0"`
	DefaultBackfill int     `mapstructure:"default_backfill" validate:"required,gt=0"`
}

// RemoteGeneratorConfig represents the remote free-form text generator. An
// empty URL leaves the remote tier unconfigured, which is not an error.
type RemoteGeneratorConfig struct {
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}

// LocalGeneratorConfig represents the local generation service. An empty
// model name leaves the local tier unconfigured.
type LocalGeneratorConfig struct {
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}

// PredictionConfig tunes the prediction pipeline.
type PredictionConfig struct {
	FeatureCacheTTLSeconds int `mapstructure:"feature_cache_ttl_seconds" validate:"required,gt=0"`
	RecentMatchesCap       int `mapstructure:"recent_matches_cap" validate:"required,gt=0"`
	HeadToHeadCap          int `mapstructure:"head_to_head_cap" validate:"required,gt=0"`
	BackfillThreshold      int `mapstructure:"backfill_threshold" validate:"required,gt=0"`
}

// ServerConfig represents the prediction API server configuration.
type ServerConfig struct {
	Port                int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents the feature refresh scheduling.
type SchedulerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	FeatureRefreshCron string `mapstructure:"feature_refresh_cron"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// RemoteConfigured reports whether the remote generator tier should run.
func (c *Config) RemoteConfigured() bool {
	return c.RemoteGenerator.URL != ""
}

// LocalConfigured reports whether the local generator tier should run.
func (c *Config) LocalConfigured() bool {
	return c.LocalGenerator.Model != ""
}

// RemoteTimeout returns the remote generator call timeout.
func (c *Config) RemoteTimeout() time.Duration {
	if c.RemoteGenerator.TimeoutSeconds > 0 {
		return time.Duration(c.RemoteGenerator.TimeoutSeconds) * time.Second
	}
	return 20 * time.Second
}

// LocalTimeout returns the local generator call timeout.
func (c *Config) LocalTimeout() time.Duration {
	if c.LocalGenerator.TimeoutSeconds > 0 {
		return time.Duration(c.LocalGenerator.TimeoutSeconds) * time.Second
	}
	return 30 * time.Second
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
