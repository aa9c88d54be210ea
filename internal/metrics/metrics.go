// Package metrics provides the centralized Prometheus metrics registry.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SimulationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_oracle",
		Name:      "simulation_runs_total",
		Help:      "Total number of tournament simulations by status",
	}, []string{"status"})
	SimulationTrialsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bracket_oracle",
		Name:      "simulation_trials_total",
		Help:      "Total number of Monte Carlo trials executed",
	})
	MatchesIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_oracle",
		Name:      "matches_ingested_total",
		Help:      "Total number of match records ingested by source",
	}, []string{"source"})
	IngestionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_oracle",
		Name:      "ingestion_errors_total",
		Help:      "Total number of ingestion failures by source",
	}, []string{"source"})
	RatingUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bracket_oracle",
		Name:      "rating_updates_total",
		Help:      "Total number of rating table rebuilds",
	})
	ValidationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_oracle",
		Name:      "validation_runs_total",
		Help:      "Total number of historical validation runs by outcome",
	}, []string{"outcome"})
)

// Gauge metrics
var (
	RatedTeams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bracket_oracle",
		Name:      "rated_teams",
		Help:      "Number of teams with a current rating",
	})
	StoredMatches = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bracket_oracle",
		Name:      "stored_matches",
		Help:      "Number of match records in the corpus",
	})
	LastIngestionTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bracket_oracle",
		Name:      "last_ingestion_timestamp_seconds",
		Help:      "Unix timestamp of the last successful ingestion by source",
	}, []string{"source"})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bracket_oracle",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of tournament simulation runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
	IngestionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bracket_oracle",
		Name:      "ingestion_duration_seconds",
		Help:      "Duration of ingestion runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(SimulationRunsTotal)
		registry.MustRegister(SimulationTrialsTotal)
		registry.MustRegister(MatchesIngestedTotal)
		registry.MustRegister(IngestionErrorsTotal)
		registry.MustRegister(RatingUpdatesTotal)
		registry.MustRegister(ValidationRunsTotal)

		// Register gauge metrics
		registry.MustRegister(RatedTeams)
		registry.MustRegister(StoredMatches)
		registry.MustRegister(LastIngestionTimestamp)

		// Register histogram metrics
		registry.MustRegister(SimulationDuration)
		registry.MustRegister(IngestionDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSimulationRun records a completed simulation.
// status should be one of: "success", "failure"
func RecordSimulationRun(status string, trials int, durationSeconds float64) {
	SimulationRunsTotal.WithLabelValues(status).Inc()
	SimulationTrialsTotal.Add(float64(trials))
	SimulationDuration.Observe(durationSeconds)
}

// RecordIngestion records a completed ingestion run.
func RecordIngestion(source string, matches int, durationSeconds float64) {
	MatchesIngestedTotal.WithLabelValues(source).Add(float64(matches))
	IngestionDuration.Observe(durationSeconds)
}

// RecordIngestionError records an ingestion failure.
func RecordIngestionError(source string) {
	IngestionErrorsTotal.WithLabelValues(source).Inc()
}

// RecordRatingUpdate records a rating table rebuild.
func RecordRatingUpdate(ratedTeams int) {
	RatingUpdatesTotal.Inc()
	RatedTeams.Set(float64(ratedTeams))
}

// RecordValidationRun records a historical validation run.
// outcome should be one of: "correct", "incorrect", "skipped"
func RecordValidationRun(outcome string) {
	ValidationRunsTotal.WithLabelValues(outcome).Inc()
}

// UpdateStoredMatches updates the stored match corpus gauge.
func UpdateStoredMatches(count int) {
	StoredMatches.Set(float64(count))
}
