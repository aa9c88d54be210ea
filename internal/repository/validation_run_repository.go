package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/bracket-oracle/internal/database"
	"github.com/yourusername/bracket-oracle/internal/models"
)

// PostgresValidationRunRepository implements ValidationRunRepository for PostgreSQL
type PostgresValidationRunRepository struct {
	db *database.DB
}

// NewPostgresValidationRunRepository creates a new validation run repository
func NewPostgresValidationRunRepository(db *database.DB) ValidationRunRepository {
	return &PostgresValidationRunRepository{db: db}
}

// Create inserts a new validation run record
func (r *PostgresValidationRunRepository) Create(ctx context.Context, run *models.ValidationRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	query := `
		INSERT INTO validation_runs
			(id, tournament_name, actual_winner, predicted_winner, correct, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.TournamentName, run.ActualWinner,
		run.PredictedWinner, run.Correct, run.Report,
	)
	if err != nil {
		return fmt.Errorf("failed to create validation run: %w", err)
	}
	return nil
}

// GetRecent retrieves the most recent validation runs
func (r *PostgresValidationRunRepository) GetRecent(ctx context.Context, limit int) ([]*models.ValidationRun, error) {
	query := `
		SELECT id, tournament_name, actual_winner, predicted_winner, correct, report, created_at
		FROM validation_runs ORDER BY created_at DESC LIMIT $1
	`
	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ValidationRun
	for rows.Next() {
		run := &models.ValidationRun{}
		err := rows.Scan(
			&run.ID, &run.TournamentName, &run.ActualWinner,
			&run.PredictedWinner, &run.Correct, &run.Report, &run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan validation run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
