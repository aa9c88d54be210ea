package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{Name: "bracket-oracle", Environment: "development", LogLevel: "info"},
		Database: DatabaseConfig{
			Host: "localhost", Port: 5432, Name: "oracle", User: "oracle",
			Password: "secret", SSLMode: "disable", MaxConnections: 10,
		},
		Rating:     RatingConfig{KFactor: 32, InitialRating: 1500, UseMapScores: true},
		Simulation: SimulationConfig{BestOf: 3, TrialCount: 10000, MaxBracketSize: 16},
		Ingestion: IngestionConfig{
			Schedule: "0 3 * * *", RateLimitPerSecond: 2, MaxRetries: 3,
			RequestTimeoutSecs: 30, CircuitBreakerLimit: 5,
		},
		Server:  ServerConfig{Port: 8000, HealthPort: 8080, CacheTTLSeconds: 300},
		Metrics: MetricsConfig{Enabled: true, Port: 9090, Path: "/metrics"},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidateRejectsEvenBestOf(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.BestOf = 2
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.App.LogLevel = "verbose"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsNonPowerOfTwoBracket(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.MaxBracketSize = 12
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsPortClash(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Port = cfg.Server.Port
	assert.Error(t, Validate(cfg))
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "hunter2")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  name: bracket-oracle
  environment: development
  log_level: info
database:
  host: localhost
  port: 5432
  name: oracle
  user: oracle
  password: ${TEST_DB_PASSWORD}
  ssl_mode: disable
  max_connections: 10
rating:
  k_factor: 32
  initial_rating: 1500
  use_map_scores: true
simulation:
  best_of: 3
  trial_count: 10000
  max_bracket_size: 16
ingestion:
  schedule: "0 3 * * *"
  rate_limit_per_second: 2
  max_retries: 3
  request_timeout_seconds: 30
  circuit_breaker_limit: 5
server:
  port: 8000
  health_port: 8080
  cache_ttl_seconds: 300
metrics:
  enabled: true
  port: 9090
  path: /metrics
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Database.Password)
	require.NoError(t, Validate(cfg))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Simulation.BestOf)
	assert.Equal(t, 10000, cfg.Simulation.TrialCount)
	assert.Equal(t, 32.0, cfg.Rating.KFactor)
}
