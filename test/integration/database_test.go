//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bracket-oracle/internal/config"
	"github.com/yourusername/bracket-oracle/internal/database"
	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/repository"
)

func setupTestDB(t *testing.T) (*database.DB, *repository.Repositories) {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Host:           envOr("TEST_DB_HOST", "localhost"),
		Port:           envIntOr("TEST_DB_PORT", 5432),
		Name:           envOr("TEST_DB_NAME", "bracket_oracle_test"),
		User:           envOr("TEST_DB_USER", "test"),
		Password:       envOr("TEST_DB_PASSWORD", "test"),
		SSLMode:        "disable",
		MaxConnections: 4,
	}

	ctx := context.Background()
	db, err := database.NewDB(ctx, cfg)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, db.InitSchema(ctx), "failed to initialize schema")

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		for _, table := range []string{"validation_runs", "simulations", "match_records", "teams"} {
			db.GetPool().Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		}
		db.Close()
	})

	return db, repos
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	_, repos := setupTestDB(t)

	t.Run("TeamRepository", func(t *testing.T) {
		region := "EMEA"
		team := &models.Team{Name: "Fnatic", Rating: 1650.5, MatchesPlayed: 12, Region: &region}
		require.NoError(t, repos.Team.Upsert(ctx, team))

		retrieved, err := repos.Team.GetByName(ctx, "Fnatic")
		require.NoError(t, err)
		assert.Equal(t, 1650.5, retrieved.Rating)
		require.NotNil(t, retrieved.Region)
		assert.Equal(t, "EMEA", *retrieved.Region)

		// Upsert with the same name updates in place
		team.Rating = 1660
		require.NoError(t, repos.Team.Upsert(ctx, team))
		retrieved, err = repos.Team.GetByName(ctx, "Fnatic")
		require.NoError(t, err)
		assert.Equal(t, 1660.0, retrieved.Rating)

		_, err = repos.Team.GetByName(ctx, "Nobody")
		assert.ErrorIs(t, err, models.ErrNotFound)

		require.NoError(t, repos.Team.ReplaceRatings(ctx, []*models.Team{
			{Name: "Sentinels", Rating: 1700},
			{Name: "Gen.G", Rating: 1620},
		}))
		top, err := repos.Team.GetTopByRating(ctx, 1)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, "Sentinels", top[0].Name)
	})

	t.Run("MatchRepository", func(t *testing.T) {
		playedAt := time.Date(2024, 3, 22, 18, 0, 0, 0, time.UTC)
		matches := []models.MatchRecord{
			{TeamA: "Sentinels", TeamB: "Gen.G", MapsWonA: 3, MapsWonB: 1, Event: "Masters Madrid", Round: "Grand Final", PlayedAt: &playedAt},
			{TeamA: "Gen.G", TeamB: "Paper Rex", MapsWonA: 2, MapsWonB: 0, Event: "Masters Madrid", Round: "Semifinal"},
		}

		inserted, err := repos.Match.InsertBatch(ctx, matches)
		require.NoError(t, err)
		assert.Equal(t, 2, inserted)

		// Re-inserting the same batch is a no-op
		inserted, err = repos.Match.InsertBatch(ctx, matches)
		require.NoError(t, err)
		assert.Equal(t, 0, inserted)

		all, err := repos.Match.GetAllChronological(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Sentinels", all[0].TeamA)

		byEvent, err := repos.Match.GetByEvent(ctx, "Masters Madrid")
		require.NoError(t, err)
		assert.Len(t, byEvent, 2)

		counts, err := repos.Match.CountByEvent(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, counts["Masters Madrid"])
	})

	t.Run("SimulationRepository", func(t *testing.T) {
		sim := &models.Simulation{
			Status:           models.SimulationStatusPending,
			TournamentFormat: "single_elimination",
			TeamCount:        8,
			TrialCount:       10000,
			BestOf:           3,
		}
		require.NoError(t, repos.Simulation.Create(ctx, sim))
		require.NotEqual(t, uuid.Nil, sim.ID)

		now := time.Now()
		sim.Status = models.SimulationStatusCompleted
		sim.Results = json.RawMessage(`[{"name":"Sentinels","championship_prob":41.2}]`)
		sim.StartedAt = &now
		sim.CompletedAt = &now
		require.NoError(t, repos.Simulation.UpdateStatus(ctx, sim))

		retrieved, err := repos.Simulation.GetByID(ctx, sim.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SimulationStatusCompleted, retrieved.Status)
		assert.JSONEq(t, string(sim.Results), string(retrieved.Results))

		recent, err := repos.Simulation.GetRecent(ctx, 10)
		require.NoError(t, err)
		assert.NotEmpty(t, recent)

		require.NoError(t, repos.Simulation.Delete(ctx, sim.ID))
		_, err = repos.Simulation.GetByID(ctx, sim.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("ValidationRunRepository", func(t *testing.T) {
		predicted := "Sentinels"
		run := &models.ValidationRun{
			TournamentName:  "Masters Madrid",
			ActualWinner:    "Sentinels",
			PredictedWinner: &predicted,
			Correct:         true,
			Report:          json.RawMessage(`{"tournament":"Masters Madrid"}`),
		}
		require.NoError(t, repos.ValidationRun.Create(ctx, run))

		recent, err := repos.ValidationRun.GetRecent(ctx, 5)
		require.NoError(t, err)
		require.NotEmpty(t, recent)
		assert.Equal(t, "Masters Madrid", recent[0].TournamentName)
		assert.True(t, recent[0].Correct)
	})
}
