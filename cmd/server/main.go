// Package main provides the entry point for the Bracket Oracle service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/api"
	"github.com/yourusername/bracket-oracle/internal/config"
	"github.com/yourusername/bracket-oracle/internal/database"
	"github.com/yourusername/bracket-oracle/internal/datasource"
	"github.com/yourusername/bracket-oracle/internal/health"
	"github.com/yourusername/bracket-oracle/internal/logger"
	"github.com/yourusername/bracket-oracle/internal/metrics"
	"github.com/yourusername/bracket-oracle/internal/rating"
	"github.com/yourusername/bracket-oracle/internal/repository"
	"github.com/yourusername/bracket-oracle/internal/scheduler"
	"github.com/yourusername/bracket-oracle/internal/service"
	"github.com/yourusername/bracket-oracle/internal/validation"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to config file")
	flag.Parse()

	cfg := loadConfig(*configPath)
	log := logger.NewLogger(cfg.App.LogLevel)

	log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Bracket Oracle starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	estimator := rating.NewEstimator()
	estimator.KFactor = cfg.Rating.KFactor
	estimator.InitialRating = cfg.Rating.InitialRating
	estimator.UseMapScores = cfg.Rating.UseMapScores
	estimator.Strict = cfg.Rating.StrictRecords

	sources := buildSources(cfg, log)
	ingestionSvc := service.NewIngestionService(sources, repos.Team, repos.Match, log)
	teamSvc := service.NewTeamService(repos.Team, repos.Match, estimator, 0, log)
	simSvc := service.NewSimulationService(repos.Simulation, repos.Team, log)

	orchestrator := validation.NewOrchestrator(estimator, validation.Config{
		TrialCount:  cfg.Simulation.TrialCount,
		BestOf:      cfg.Simulation.BestOf,
		BracketSize: cfg.Simulation.MaxBracketSize,
	}, log)
	validationSvc := service.NewValidationService(repos.Match, repos.ValidationRun, orchestrator, log)

	// Health endpoints come up first so orchestration sees the process
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Server.HealthPort,
		Logger:      log,
		DB:          db,
	})
	if err := healthServer.Start(ctx); err != nil {
		log.Fatalf("Failed to start health server: %v", err)
	}

	var sched *scheduler.Scheduler
	if len(sources) > 0 && cfg.Ingestion.Schedule != "" {
		sched = scheduler.NewScheduler(ingestionSvc, teamSvc, log)
		if err := sched.ScheduleIngestion(cfg.Ingestion.Schedule, sources[0].Name()); err != nil {
			log.Fatalf("Failed to schedule ingestion: %v", err)
		}
		if err := sched.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		healthServer.RegisterCheck("scheduler", func(ctx context.Context) error {
			if !sched.IsRunning() {
				return fmt.Errorf("scheduler stopped")
			}
			return nil
		})
	} else {
		log.Warn("No ingestion sources configured, scheduler disabled")
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg, log)
	}

	apiServer := api.NewServer(
		cfg.Server.Port,
		teamSvc,
		simSvc,
		validationSvc,
		time.Duration(cfg.Server.CacheTTLSeconds)*time.Second,
		log,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()
	healthServer.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.WithField("error", err).Error("API server failed")
		}
	}

	healthServer.SetReady(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.WithField("error", err).Warn("Scheduler shutdown error")
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithField("error", err).Warn("Metrics server shutdown error")
		}
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err).Warn("API server shutdown error")
	}

	log.Info("Bracket Oracle stopped")
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			fmt.Fprintln(os.Stderr, "AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
			os.Exit(1)
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load secrets: %v\n", err)
			os.Exit(1)
		}
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func buildSources(cfg *config.Config, log *logrus.Logger) []datasource.DataSource {
	factory := datasource.NewFactory(&cfg.Ingestion, log)
	var sources []datasource.DataSource

	if cfg.Ingestion.RankingsURL != "" && cfg.Ingestion.MatchesURL != "" {
		httpClient := factory.NewHTTPClient()
		source, err := factory.Create(datasource.VLRSourceType, httpClient)
		if err != nil {
			log.Fatalf("Failed to create vlr source: %v", err)
		}
		sources = append(sources, source)
	}
	if cfg.Ingestion.CorpusPath != "" {
		source, err := factory.Create(datasource.FileSourceType, nil)
		if err != nil {
			log.Fatalf("Failed to create file source: %v", err)
		}
		sources = append(sources, source)
	}
	return sources
}

func startMetricsServer(cfg *config.Config, log *logrus.Logger) *http.Server {
	metrics.InitRegistry()

	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err).Error("Metrics server error")
		}
	}()
	return server
}
