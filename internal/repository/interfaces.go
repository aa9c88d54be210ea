// Package repository provides PostgreSQL persistence for teams, match
// records, simulations and validation runs.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/bracket-oracle/internal/models"
)

// TeamRepository manages stored teams and their rating snapshots
type TeamRepository interface {
	Upsert(ctx context.Context, team *models.Team) error
	GetByName(ctx context.Context, name string) (*models.Team, error)
	GetAll(ctx context.Context) ([]*models.Team, error)
	GetTopByRating(ctx context.Context, limit int) ([]*models.Team, error)
	ReplaceRatings(ctx context.Context, entries []*models.Team) error
}

// MatchRepository manages the historical match corpus
type MatchRepository interface {
	InsertBatch(ctx context.Context, matches []models.MatchRecord) (int, error)
	GetAllChronological(ctx context.Context) ([]models.MatchRecord, error)
	GetByEvent(ctx context.Context, event string) ([]models.MatchRecord, error)
	CountByEvent(ctx context.Context) (map[string]int, error)
}

// SimulationRepository manages stored simulation runs
type SimulationRepository interface {
	Create(ctx context.Context, sim *models.Simulation) error
	UpdateStatus(ctx context.Context, sim *models.Simulation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Simulation, error)
	GetRecent(ctx context.Context, limit int) ([]*models.Simulation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ValidationRunRepository manages stored validation results
type ValidationRunRepository interface {
	Create(ctx context.Context, run *models.ValidationRun) error
	GetRecent(ctx context.Context, limit int) ([]*models.ValidationRun, error)
}
