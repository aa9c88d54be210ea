// Package main provides the entry point for the tournament simulation CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/bracket"
	"github.com/yourusername/bracket-oracle/internal/config"
	"github.com/yourusername/bracket-oracle/internal/database"
	"github.com/yourusername/bracket-oracle/internal/datasource"
	"github.com/yourusername/bracket-oracle/internal/logger"
	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/rating"
	"github.com/yourusername/bracket-oracle/internal/repository"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		corpusPath = flag.String("corpus", "", "JSON corpus file (skips the database when set)")
		teamCount  = flag.Int("teams", 8, "Bracket size (power of two)")
		trials     = flag.Int("trials", 0, "Number of Monte Carlo trials (0 uses config)")
		bestOf     = flag.Int("best-of", 0, "Series length (0 uses config)")
		sigma      = flag.Float64("sigma", -1, "Performance noise sigma (-1 uses config)")
		seed       = flag.Int64("seed", 0, "RNG seed (0 uses the clock)")
		workers    = flag.Int("workers", 0, "Parallel workers (0 uses config)")
		output     = flag.String("output", "", "Optional JSON output path")
		chart      = flag.String("chart", "", "Optional HTML chart output path")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.App.LogLevel)

	simCfg := bracket.Config{
		BestOf:           cfg.Simulation.BestOf,
		PerformanceSigma: cfg.Simulation.PerformanceSigma,
		TrialCount:       cfg.Simulation.TrialCount,
		Seed:             *seed,
		Workers:          cfg.Simulation.Workers,
	}
	if *trials > 0 {
		simCfg.TrialCount = *trials
	}
	if *bestOf > 0 {
		simCfg.BestOf = *bestOf
	}
	if *sigma >= 0 {
		simCfg.PerformanceSigma = *sigma
	}
	if *workers > 0 {
		simCfg.Workers = *workers
	}
	if err := simCfg.Validate(); err != nil {
		log.Fatalf("Invalid simulation settings: %v", err)
	}

	teams, err := loadTeams(ctx, cfg, *corpusPath, *teamCount, log)
	if err != nil {
		log.Fatalf("Failed to load teams: %v", err)
	}

	seeded, err := bracket.SelectBracket(teams, *teamCount)
	if err != nil {
		log.Fatalf("Failed to seed bracket: %v", err)
	}

	log.WithFields(logrus.Fields{
		"teams":  *teamCount,
		"trials": simCfg.TrialCount,
		"best_of": simCfg.BestOf,
	}).Info("Starting simulation")

	results, err := bracket.RunSimulation(seeded, simCfg)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	fmt.Print(bracket.GenerateConsoleReport(results, simCfg.TrialCount))

	if *output != "" {
		if err := bracket.ExportToJSON(results, simCfg.TrialCount, *output); err != nil {
			log.Fatalf("Failed to export results: %v", err)
		}
		log.WithField("path", *output).Info("Results exported")
	}

	if *chart != "" {
		if err := bracket.ExportChart(results, simCfg.TrialCount, *chart); err != nil {
			log.Fatalf("Failed to export chart: %v", err)
		}
		log.WithField("path", *chart).Info("Chart exported")
	}
}

// loadTeams pulls rated teams either from a corpus file, replaying its
// matches through the estimator, or from the stored rating snapshot.
func loadTeams(ctx context.Context, cfg *config.Config, corpusPath string, count int, log *logrus.Logger) ([]models.TeamRating, error) {
	if corpusPath != "" {
		return teamsFromCorpus(ctx, cfg, corpusPath, count)
	}

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return nil, err
	}

	stored, err := repos.Team.GetTopByRating(ctx, count)
	if err != nil {
		return nil, err
	}
	if len(stored) < count {
		return nil, fmt.Errorf("only %d rated teams stored, need %d", len(stored), count)
	}

	teams := make([]models.TeamRating, 0, len(stored))
	for _, team := range stored {
		teams = append(teams, models.TeamRating{Name: team.Name, Rating: team.Rating})
	}
	log.WithField("teams", len(teams)).Info("Loaded rating snapshot from database")
	return teams, nil
}

func teamsFromCorpus(ctx context.Context, cfg *config.Config, corpusPath string, count int) ([]models.TeamRating, error) {
	source := datasource.NewFileSource(corpusPath)
	matches, err := source.FetchMatches(ctx)
	if err != nil {
		return nil, err
	}

	estimator := rating.NewEstimator()
	estimator.KFactor = cfg.Rating.KFactor
	estimator.InitialRating = cfg.Rating.InitialRating
	estimator.UseMapScores = cfg.Rating.UseMapScores

	result, err := estimator.Process(matches)
	if err != nil {
		return nil, err
	}

	entries := result.Table.Snapshot(0)
	if len(entries) < count {
		return nil, fmt.Errorf("corpus yields %d rated teams, need %d", len(entries), count)
	}

	teams := make([]models.TeamRating, 0, len(entries))
	for _, entry := range entries {
		teams = append(teams, models.TeamRating{Name: entry.Name, Rating: entry.Rating})
	}
	return teams, nil
}
