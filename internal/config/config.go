// Package config provides configuration management for the Bracket Oracle application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Rating     RatingConfig     `mapstructure:"rating" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Ingestion  IngestionConfig  `mapstructure:"ingestion" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
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

// RatingConfig represents ELO estimation configuration
type RatingConfig struct {
	KFactor       float64 `mapstructure:"k_factor" validate:"required,ne=0"`
	InitialRating float64 `mapstructure:"initial_rating" validate:"required,gt=0"`
	UseMapScores  bool    `mapstructure:"use_map_scores"`
	StrictRecords bool    `mapstructure:"strict_records"`
}

// SimulationConfig represents Monte Carlo simulation defaults
type SimulationConfig struct {
	BestOf           int     `mapstructure:"best_of" validate:"required,gt=0,bestof"`
	TrialCount       int     `mapstructure:"trial_count" validate:"required,gt=0"`
	PerformanceSigma float64 `mapstructure:"performance_sigma" validate:"gte=0"`
	Workers          int     `mapstructure:"workers" validate:"gte=0"`
	MaxBracketSize   int     `mapstructure:"max_bracket_size" validate:"required,gte=2"`
}

// IngestionConfig represents match-data ingestion configuration
type IngestionConfig struct {
	RankingsURL         string  `mapstructure:"rankings_url" validate:"omitempty,url"`
	MatchesURL          string  `mapstructure:"matches_url" validate:"omitempty,url"`
	CorpusPath          string  `mapstructure:"corpus_path"`
	Schedule            string  `mapstructure:"schedule" validate:"required"`
	RateLimitPerSecond  float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	MaxRetries          int     `mapstructure:"max_retries" validate:"gte=0"`
	RequestTimeoutSecs  int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	CircuitBreakerLimit int     `mapstructure:"circuit_breaker_limit" validate:"required,gt=0"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Port            int `mapstructure:"port" validate:"required,min=1,max=65535"`
	HealthPort      int `mapstructure:"health_port" validate:"required,min=1,max=65535"`
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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
