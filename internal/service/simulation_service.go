package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/bracket"
	"github.com/yourusername/bracket-oracle/internal/metrics"
	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/repository"
)

// SimulationRequest describes a tournament simulation to run
type SimulationRequest struct {
	TeamCount        int                 `json:"team_count" validate:"required,min=2"`
	TrialCount       int                 `json:"trial_count" validate:"required,min=1"`
	BestOf           int                 `json:"best_of" validate:"required,bestof"`
	PerformanceSigma float64             `json:"performance_sigma" validate:"gte=0"`
	Seed             int64               `json:"seed"`
	Teams            []models.TeamRating `json:"teams,omitempty"`
}

// ProgressUpdate reports partial completion of a running simulation
type ProgressUpdate struct {
	SimulationID uuid.UUID `json:"simulation_id"`
	Completed    int       `json:"completed"`
	Total        int       `json:"total"`
}

// ProgressFunc receives progress updates while a simulation runs.
// It is called from the simulation goroutine and must not block for long.
type ProgressFunc func(ProgressUpdate)

// SimulationService runs tournament simulations and persists their results
type SimulationService struct {
	simRepo   repository.SimulationRepository
	teamRepo  repository.TeamRepository
	chunkSize int
	logger    *logrus.Logger
}

// NewSimulationService creates a new simulation service
func NewSimulationService(
	simRepo repository.SimulationRepository,
	teamRepo repository.TeamRepository,
	logger *logrus.Logger,
) *SimulationService {
	return &SimulationService{
		simRepo:   simRepo,
		teamRepo:  teamRepo,
		chunkSize: 500,
		logger:    logger,
	}
}

// RunSimulation executes a simulation, persisting its lifecycle and
// reporting progress after each chunk of trials. Blocks until done.
func (s *SimulationService) RunSimulation(ctx context.Context, req SimulationRequest, progress ProgressFunc) (*models.Simulation, error) {
	teams := req.Teams
	if len(teams) == 0 {
		loaded, err := s.loadTopTeams(ctx, req.TeamCount)
		if err != nil {
			return nil, err
		}
		teams = loaded
	}

	seeded, err := bracket.SelectBracket(teams, req.TeamCount)
	if err != nil {
		return nil, fmt.Errorf("failed to seed bracket: %w", err)
	}

	sim := &models.Simulation{
		ID:               uuid.New(),
		Status:           models.SimulationStatusPending,
		TournamentFormat: "single_elimination",
		TeamCount:        req.TeamCount,
		TrialCount:       req.TrialCount,
		BestOf:           req.BestOf,
	}
	if req.PerformanceSigma > 0 {
		sigma := req.PerformanceSigma
		sim.PerformanceSigma = &sigma
	}

	if err := s.simRepo.Create(ctx, sim); err != nil {
		return nil, err
	}

	now := time.Now()
	sim.Status = models.SimulationStatusRunning
	sim.StartedAt = &now
	if err := s.simRepo.UpdateStatus(ctx, sim); err != nil {
		return nil, err
	}

	startTime := time.Now()
	results, err := s.runTrials(ctx, sim, seeded, req, progress)
	duration := time.Since(startTime)

	completedAt := time.Now()
	sim.CompletedAt = &completedAt

	if err != nil {
		msg := err.Error()
		sim.Status = models.SimulationStatusFailed
		sim.Error = &msg
		metrics.RecordSimulationRun("failure", 0, duration.Seconds())
		if updErr := s.simRepo.UpdateStatus(ctx, sim); updErr != nil {
			s.logger.WithField("error", updErr).Error("Failed to record simulation failure")
		}
		return sim, err
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return sim, fmt.Errorf("failed to encode results: %w", err)
	}
	sim.Status = models.SimulationStatusCompleted
	sim.Results = payload
	metrics.RecordSimulationRun("success", req.TrialCount, duration.Seconds())

	if err := s.simRepo.UpdateStatus(ctx, sim); err != nil {
		return sim, err
	}

	s.logger.WithFields(logrus.Fields{
		"simulation_id": sim.ID,
		"teams":         req.TeamCount,
		"trials":        req.TrialCount,
		"duration":      duration,
	}).Info("Simulation completed")

	return sim, nil
}

// runTrials executes the Monte Carlo trials in chunks so callers can
// observe progress between chunks and cancel via the context.
func (s *SimulationService) runTrials(ctx context.Context, sim *models.Simulation, seeded []bracket.SeededTeam, req SimulationRequest, progress ProgressFunc) ([]bracket.TeamResult, error) {
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var sigma float64
	if sim.PerformanceSigma != nil {
		sigma = *sim.PerformanceSigma
	}
	engine := bracket.NewEngine(req.BestOf, sigma, rng)
	acc := bracket.NewAccumulator()

	completed := 0
	for completed < req.TrialCount {
		chunk := s.chunkSize
		if remaining := req.TrialCount - completed; remaining < chunk {
			chunk = remaining
		}

		for i := 0; i < chunk; i++ {
			if _, err := engine.SimulateTournament(seeded, acc); err != nil {
				return nil, err
			}
		}
		completed += chunk

		if progress != nil {
			progress(ProgressUpdate{
				SimulationID: sim.ID,
				Completed:    completed,
				Total:        req.TrialCount,
			})
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	return acc.Results(seeded), nil
}

// loadTopTeams pulls the highest rated teams from the stored snapshot
func (s *SimulationService) loadTopTeams(ctx context.Context, count int) ([]models.TeamRating, error) {
	stored, err := s.teamRepo.GetTopByRating(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	if len(stored) < count {
		return nil, fmt.Errorf("only %d rated teams available, need %d", len(stored), count)
	}

	teams := make([]models.TeamRating, 0, len(stored))
	for _, team := range stored {
		teams = append(teams, models.TeamRating{Name: team.Name, Rating: team.Rating})
	}
	return teams, nil
}

// GetSimulation returns a stored simulation by ID
func (s *SimulationService) GetSimulation(ctx context.Context, id uuid.UUID) (*models.Simulation, error) {
	return s.simRepo.GetByID(ctx, id)
}

// ListRecent returns the most recent simulations
func (s *SimulationService) ListRecent(ctx context.Context, limit int) ([]*models.Simulation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.simRepo.GetRecent(ctx, limit)
}

// DeleteSimulation removes a stored simulation
func (s *SimulationService) DeleteSimulation(ctx context.Context, id uuid.UUID) error {
	return s.simRepo.Delete(ctx, id)
}
