package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/bracket-oracle/internal/database"
	"github.com/yourusername/bracket-oracle/internal/models"
)

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Upsert inserts a team or updates its rating by name
func (r *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	if team.Name == "" {
		return models.ErrTeamNameRequired
	}
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}

	query := `
		INSERT INTO teams (id, name, rating, matches_played, region, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			rating = EXCLUDED.rating,
			matches_played = EXCLUDED.matches_played,
			region = COALESCE(EXCLUDED.region, teams.region),
			updated_at = NOW()
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		team.ID, team.Name, team.Rating, team.MatchesPlayed, team.Region,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}
	return nil
}

// GetByName retrieves a team by name
func (r *PostgresTeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	query := `
		SELECT id, name, rating, matches_played, region, created_at, updated_at
		FROM teams WHERE name = $1
	`

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, name).Scan(
		&team.ID, &team.Name, &team.Rating, &team.MatchesPlayed,
		&team.Region, &team.CreatedAt, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// GetAll retrieves all teams ordered by rating descending
func (r *PostgresTeamRepository) GetAll(ctx context.Context) ([]*models.Team, error) {
	return r.queryTeams(ctx, `
		SELECT id, name, rating, matches_played, region, created_at, updated_at
		FROM teams ORDER BY rating DESC, name ASC
	`)
}

// GetTopByRating retrieves the highest-rated teams
func (r *PostgresTeamRepository) GetTopByRating(ctx context.Context, limit int) ([]*models.Team, error) {
	return r.queryTeams(ctx, `
		SELECT id, name, rating, matches_played, region, created_at, updated_at
		FROM teams ORDER BY rating DESC, name ASC LIMIT $1
	`, limit)
}

// ReplaceRatings overwrites stored ratings with a fresh estimation snapshot
// in a single transaction
func (r *PostgresTeamRepository) ReplaceRatings(ctx context.Context, entries []*models.Team) error {
	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	for _, team := range entries {
		if team.Name == "" {
			return models.ErrTeamNameRequired
		}
		id := team.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO teams (id, name, rating, matches_played, region, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			ON CONFLICT (name) DO UPDATE SET
				rating = EXCLUDED.rating,
				matches_played = EXCLUDED.matches_played,
				updated_at = EXCLUDED.updated_at
		`, id, team.Name, team.Rating, team.MatchesPlayed, team.Region, now)
		if err != nil {
			return fmt.Errorf("failed to replace rating for %s: %w", team.Name, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresTeamRepository) queryTeams(ctx context.Context, query string, args ...any) ([]*models.Team, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(
			&team.ID, &team.Name, &team.Rating, &team.MatchesPlayed,
			&team.Region, &team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}
