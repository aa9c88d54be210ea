package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/bracket-oracle/internal/database"
	"github.com/yourusername/bracket-oracle/internal/models"
)

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

// InsertBatch inserts match records, skipping exact duplicates, and returns
// the number inserted
func (r *PostgresMatchRepository) InsertBatch(ctx context.Context, matches []models.MatchRecord) (int, error) {
	inserted := 0
	for _, match := range matches {
		tag, err := r.db.GetPool().Exec(ctx, `
			INSERT INTO match_records (team_a, team_b, maps_won_a, maps_won_b, event, round, played_at)
			SELECT $1, $2, $3, $4, $5, $6, $7
			WHERE NOT EXISTS (
				SELECT 1 FROM match_records
				WHERE team_a = $1 AND team_b = $2 AND maps_won_a = $3 AND maps_won_b = $4
					AND event IS NOT DISTINCT FROM $5 AND round IS NOT DISTINCT FROM $6
			)
		`, match.TeamA, match.TeamB, match.MapsWonA, match.MapsWonB,
			nullable(match.Event), nullable(match.Round), match.PlayedAt)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert match %s vs %s: %w", match.TeamA, match.TeamB, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// GetAllChronological retrieves the full corpus in insertion order, which is
// the chronological order the estimator requires
func (r *PostgresMatchRepository) GetAllChronological(ctx context.Context) ([]models.MatchRecord, error) {
	return r.queryMatches(ctx, `
		SELECT team_a, team_b, maps_won_a, maps_won_b, COALESCE(event, ''), COALESCE(round, ''), played_at
		FROM match_records ORDER BY id ASC
	`)
}

// GetByEvent retrieves an event's matches in chronological order
func (r *PostgresMatchRepository) GetByEvent(ctx context.Context, event string) ([]models.MatchRecord, error) {
	return r.queryMatches(ctx, `
		SELECT team_a, team_b, maps_won_a, maps_won_b, COALESCE(event, ''), COALESCE(round, ''), played_at
		FROM match_records WHERE event = $1 ORDER BY id ASC
	`, event)
}

// CountByEvent returns the number of stored matches per event
func (r *PostgresMatchRepository) CountByEvent(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.GetPool().Query(ctx, `
		SELECT COALESCE(event, ''), COUNT(*) FROM match_records GROUP BY event
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var event string
		var count int
		if err := rows.Scan(&event, &count); err != nil {
			return nil, fmt.Errorf("failed to scan match count: %w", err)
		}
		counts[event] = count
	}
	return counts, rows.Err()
}

func (r *PostgresMatchRepository) queryMatches(ctx context.Context, query string, args ...any) ([]models.MatchRecord, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []models.MatchRecord
	for rows.Next() {
		var match models.MatchRecord
		err := rows.Scan(
			&match.TeamA, &match.TeamB, &match.MapsWonA, &match.MapsWonB,
			&match.Event, &match.Round, &match.PlayedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
