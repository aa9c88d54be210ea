// Package main provides the entry point for the rating table CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/config"
	"github.com/yourusername/bracket-oracle/internal/database"
	"github.com/yourusername/bracket-oracle/internal/datasource"
	"github.com/yourusername/bracket-oracle/internal/logger"
	"github.com/yourusername/bracket-oracle/internal/rating"
	"github.com/yourusername/bracket-oracle/internal/repository"
	"github.com/yourusername/bracket-oracle/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		corpusPath = flag.String("corpus", "", "JSON corpus file (skips the database when set)")
		minMatches = flag.Int("min-matches", 0, "Hide teams with fewer matches")
		top        = flag.Int("top", 0, "Limit output to the top N teams (0 shows all)")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.App.LogLevel)

	estimator := rating.NewEstimator()
	estimator.KFactor = cfg.Rating.KFactor
	estimator.InitialRating = cfg.Rating.InitialRating
	estimator.UseMapScores = cfg.Rating.UseMapScores
	estimator.Strict = cfg.Rating.StrictRecords

	var entries []rating.Entry
	if *corpusPath != "" {
		entries, err = ratingsFromCorpus(ctx, estimator, *corpusPath, *minMatches)
	} else {
		entries, err = rebuildStoredRatings(ctx, cfg, estimator, *minMatches, log)
	}
	if err != nil {
		log.Fatalf("Failed to build ratings: %v", err)
	}

	printTable(entries, *top)
}

func ratingsFromCorpus(ctx context.Context, estimator *rating.Estimator, corpusPath string, minMatches int) ([]rating.Entry, error) {
	source := datasource.NewFileSource(corpusPath)
	matches, err := source.FetchMatches(ctx)
	if err != nil {
		return nil, err
	}

	result, err := estimator.Process(matches)
	if err != nil {
		return nil, err
	}
	return result.Table.Snapshot(minMatches), nil
}

// rebuildStoredRatings replays the stored corpus and persists the
// refreshed snapshot before returning it.
func rebuildStoredRatings(ctx context.Context, cfg *config.Config, estimator *rating.Estimator, minMatches int, log *logrus.Logger) ([]rating.Entry, error) {
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return nil, err
	}

	teamSvc := service.NewTeamService(repos.Team, repos.Match, estimator, minMatches, log)
	return teamSvc.RebuildRatings(ctx)
}

func printTable(entries []rating.Entry, top int) {
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}

	fmt.Printf("%-4s %-24s %9s %8s\n", "#", "Team", "Rating", "Matches")
	fmt.Println(strings.Repeat("-", 48))
	for i, entry := range entries {
		fmt.Printf("%-4d %-24s %9.1f %8d\n", i+1, entry.Name, entry.Rating, entry.MatchesPlayed)
	}
}
