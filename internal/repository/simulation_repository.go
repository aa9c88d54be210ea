package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/bracket-oracle/internal/database"
	"github.com/yourusername/bracket-oracle/internal/models"
)

// PostgresSimulationRepository implements SimulationRepository for PostgreSQL
type PostgresSimulationRepository struct {
	db *database.DB
}

// NewPostgresSimulationRepository creates a new simulation repository
func NewPostgresSimulationRepository(db *database.DB) SimulationRepository {
	return &PostgresSimulationRepository{db: db}
}

// Create inserts a new simulation record
func (r *PostgresSimulationRepository) Create(ctx context.Context, sim *models.Simulation) error {
	if sim.ID == uuid.Nil {
		sim.ID = uuid.New()
	}
	query := `
		INSERT INTO simulations
			(id, status, tournament_format, team_count, trial_count, best_of, performance_sigma, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		sim.ID, sim.Status, sim.TournamentFormat, sim.TeamCount,
		sim.TrialCount, sim.BestOf, sim.PerformanceSigma,
	)
	if err != nil {
		return fmt.Errorf("failed to create simulation: %w", err)
	}
	return nil
}

// UpdateStatus persists status transitions and results
func (r *PostgresSimulationRepository) UpdateStatus(ctx context.Context, sim *models.Simulation) error {
	query := `
		UPDATE simulations SET
			status = $2, results = $3, error = $4, started_at = $5, completed_at = $6
		WHERE id = $1
	`
	tag, err := r.db.GetPool().Exec(ctx, query,
		sim.ID, sim.Status, sim.Results, sim.Error, sim.StartedAt, sim.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update simulation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetByID retrieves a simulation by ID
func (r *PostgresSimulationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Simulation, error) {
	query := `
		SELECT id, status, tournament_format, team_count, trial_count, best_of,
			performance_sigma, results, error, created_at, started_at, completed_at
		FROM simulations WHERE id = $1
	`

	sim := &models.Simulation{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&sim.ID, &sim.Status, &sim.TournamentFormat, &sim.TeamCount,
		&sim.TrialCount, &sim.BestOf, &sim.PerformanceSigma,
		&sim.Results, &sim.Error, &sim.CreatedAt, &sim.StartedAt, &sim.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get simulation: %w", err)
	}
	return sim, nil
}

// GetRecent retrieves the most recent simulations
func (r *PostgresSimulationRepository) GetRecent(ctx context.Context, limit int) ([]*models.Simulation, error) {
	query := `
		SELECT id, status, tournament_format, team_count, trial_count, best_of,
			performance_sigma, results, error, created_at, started_at, completed_at
		FROM simulations ORDER BY created_at DESC LIMIT $1
	`
	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulations: %w", err)
	}
	defer rows.Close()

	var sims []*models.Simulation
	for rows.Next() {
		sim := &models.Simulation{}
		err := rows.Scan(
			&sim.ID, &sim.Status, &sim.TournamentFormat, &sim.TeamCount,
			&sim.TrialCount, &sim.BestOf, &sim.PerformanceSigma,
			&sim.Results, &sim.Error, &sim.CreatedAt, &sim.StartedAt, &sim.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan simulation: %w", err)
		}
		sims = append(sims, sim)
	}
	return sims, rows.Err()
}

// Delete removes a simulation record
func (r *PostgresSimulationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM simulations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete simulation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
