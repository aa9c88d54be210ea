package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SimulationStatus tracks the lifecycle of a persisted simulation run
type SimulationStatus string

const (
	SimulationStatusPending   SimulationStatus = "pending"
	SimulationStatusRunning   SimulationStatus = "running"
	SimulationStatusCompleted SimulationStatus = "completed"
	SimulationStatusFailed    SimulationStatus = "failed"
)

// Simulation represents a stored tournament simulation run
type Simulation struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	Status           SimulationStatus `db:"status" json:"status"`
	TournamentFormat string           `db:"tournament_format" json:"tournament_format"`
	TeamCount        int              `db:"team_count" json:"team_count"`
	TrialCount       int              `db:"trial_count" json:"trial_count"`
	BestOf           int              `db:"best_of" json:"best_of"`
	PerformanceSigma *float64         `db:"performance_sigma" json:"performance_sigma,omitempty"`
	Results          json.RawMessage  `db:"results" json:"results,omitempty"`
	Error            *string          `db:"error" json:"error,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	StartedAt        *time.Time       `db:"started_at" json:"started_at,omitempty"`
	CompletedAt      *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// IsFinished reports whether the run reached a terminal status
func (s *Simulation) IsFinished() bool {
	return s.Status == SimulationStatusCompleted || s.Status == SimulationStatusFailed
}

// ValidationRun represents a stored historical validation result
type ValidationRun struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	TournamentName  string          `db:"tournament_name" json:"tournament_name"`
	ActualWinner    string          `db:"actual_winner" json:"actual_winner"`
	PredictedWinner *string         `db:"predicted_winner" json:"predicted_winner,omitempty"`
	Correct         bool            `db:"correct" json:"correct"`
	Report          json.RawMessage `db:"report" json:"report,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
