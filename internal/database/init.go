package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the tables the repositories depend on. Kept as
// plain DDL so a fresh development database works without a migration tool.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		rating DOUBLE PRECISION NOT NULL DEFAULT 1500,
		matches_played INTEGER NOT NULL DEFAULT 0,
		region TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS match_records (
		id BIGSERIAL PRIMARY KEY,
		team_a TEXT NOT NULL,
		team_b TEXT NOT NULL,
		maps_won_a INTEGER NOT NULL CHECK (maps_won_a >= 0),
		maps_won_b INTEGER NOT NULL CHECK (maps_won_b >= 0),
		event TEXT,
		round TEXT,
		played_at TIMESTAMPTZ,
		ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_match_records_event ON match_records (event)`,
	`CREATE TABLE IF NOT EXISTS simulations (
		id UUID PRIMARY KEY,
		status TEXT NOT NULL,
		tournament_format TEXT NOT NULL,
		team_count INTEGER NOT NULL,
		trial_count INTEGER NOT NULL,
		best_of INTEGER NOT NULL,
		performance_sigma DOUBLE PRECISION,
		results JSONB,
		error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS validation_runs (
		id UUID PRIMARY KEY,
		tournament_name TEXT NOT NULL,
		actual_winner TEXT NOT NULL,
		predicted_winner TEXT,
		correct BOOLEAN NOT NULL DEFAULT FALSE,
		report JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// InitSchema creates the schema if it does not already exist
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
