// Package main provides the entry point for the historical validation CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/bracket-oracle/internal/config"
	"github.com/yourusername/bracket-oracle/internal/database"
	"github.com/yourusername/bracket-oracle/internal/datasource"
	"github.com/yourusername/bracket-oracle/internal/logger"
	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/rating"
	"github.com/yourusername/bracket-oracle/internal/repository"
	"github.com/yourusername/bracket-oracle/internal/service"
	"github.com/yourusername/bracket-oracle/internal/validation"
)

var (
	configFile  string
	eventsFile  string
	corpusFile  string
	trialCount  int
	bestOf      int
	bracketSize int
	seed        int64
	storeRuns   bool

	appLogger *logrus.Logger
	cfg       *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&eventsFile, "events", "e", "", "JSON file listing tournaments with known outcomes")
	rootCmd.Flags().StringVar(&corpusFile, "corpus", "", "JSON corpus file (skips the database when set)")
	rootCmd.Flags().IntVar(&trialCount, "trials", 0, "Trials per tournament (0 uses the default)")
	rootCmd.Flags().IntVar(&bestOf, "best-of", 0, "Series length (0 uses the default)")
	rootCmd.Flags().IntVar(&bracketSize, "bracket-size", 0, "Bracket size (0 uses the default)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (0 uses the clock)")
	rootCmd.Flags().BoolVar(&storeRuns, "store", false, "Persist scored runs to the database")
	rootCmd.MarkFlagRequired("events")
}

var rootCmd = &cobra.Command{
	Use:   "validate",
	Short: "Score tournament predictions against known outcomes",
	Long: `Replays matches played before each listed tournament through the rating
estimator, simulates the tournament bracket, and scores the prediction
against the actual result.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		appLogger = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidation(cmd.Context())
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runValidation(ctx context.Context) error {
	events, err := loadEvents(eventsFile)
	if err != nil {
		return err
	}

	estimator := rating.NewEstimator()
	estimator.KFactor = cfg.Rating.KFactor
	estimator.InitialRating = cfg.Rating.InitialRating
	estimator.UseMapScores = cfg.Rating.UseMapScores

	valCfg := validation.DefaultConfig()
	if trialCount > 0 {
		valCfg.TrialCount = trialCount
	}
	if bestOf > 0 {
		valCfg.BestOf = bestOf
	}
	if bracketSize > 0 {
		valCfg.BracketSize = bracketSize
	}
	valCfg.Seed = seed

	orchestrator := validation.NewOrchestrator(estimator, valCfg, appLogger)

	var batch *validation.BatchResult
	if corpusFile != "" {
		corpus, err := loadCorpus(ctx, corpusFile)
		if err != nil {
			return err
		}
		batch, err = orchestrator.ValidateAll(corpus, events)
		if err != nil {
			return err
		}
	} else {
		batch, err = validateFromDatabase(ctx, orchestrator, events)
		if err != nil {
			return err
		}
	}

	printBatch(batch)
	return nil
}

func validateFromDatabase(ctx context.Context, orchestrator *validation.Orchestrator, events []validation.Event) (*validation.BatchResult, error) {
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return nil, err
	}

	var runRepo repository.ValidationRunRepository
	if storeRuns {
		runRepo = repos.ValidationRun
	}
	svc := service.NewValidationService(repos.Match, runRepo, orchestrator, appLogger)
	return svc.ValidateEvents(ctx, events)
}

func loadEvents(path string) ([]validation.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	var events []validation.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events file: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("events file lists no tournaments")
	}
	return events, nil
}

func loadCorpus(ctx context.Context, path string) ([]models.MatchRecord, error) {
	return datasource.NewFileSource(path).FetchMatches(ctx)
}

func printBatch(batch *validation.BatchResult) {
	fmt.Printf("\n%-28s %-18s %-18s %8s %7s\n", "Tournament", "Predicted", "Actual", "Prob", "Rank")
	fmt.Println(strings.Repeat("-", 84))

	for _, report := range batch.Reports {
		rank := "-"
		if report.ActualWinnerRank != nil {
			rank = fmt.Sprintf("%d", *report.ActualWinnerRank)
		}
		marker := " "
		if report.Correct {
			marker = "*"
		}
		fmt.Printf("%-28s %-18s %-18s %7.1f%% %7s %s\n",
			report.Tournament, report.PredictedWinner, report.ActualWinner,
			report.PredictedProbability, rank, marker)
	}

	fmt.Println(strings.Repeat("-", 84))
	fmt.Printf("Tournaments scored: %d (skipped %d)\n", len(batch.Reports), batch.Skipped)
	if len(batch.Reports) == 0 {
		return
	}
	fmt.Printf("Exact accuracy:     %.1f%%\n", batch.ExactAccuracy*100)
	fmt.Printf("Top-3 accuracy:     %.1f%%\n", batch.TopThreeRate*100)
	fmt.Printf("Top-5 accuracy:     %.1f%%\n", batch.TopFiveRate*100)
	fmt.Printf("Avg winner prob:    %.1f%%\n", batch.AvgWinnerProb)
	if batch.AvgWinnerRank != nil {
		fmt.Printf("Avg winner rank:    %.2f\n", *batch.AvgWinnerRank)
	}
}
