package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/metrics"
	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/repository"
	"github.com/yourusername/bracket-oracle/internal/validation"
)

// ValidationService runs historical validations against the stored corpus
// and persists the scored results.
type ValidationService struct {
	matchRepo    repository.MatchRepository
	runRepo      repository.ValidationRunRepository
	orchestrator *validation.Orchestrator
	logger       *logrus.Logger
}

// NewValidationService creates a new validation service
func NewValidationService(
	matchRepo repository.MatchRepository,
	runRepo repository.ValidationRunRepository,
	orchestrator *validation.Orchestrator,
	logger *logrus.Logger,
) *ValidationService {
	if orchestrator == nil {
		orchestrator = validation.NewOrchestrator(nil, validation.DefaultConfig(), logger)
	}
	return &ValidationService{
		matchRepo:    matchRepo,
		runRepo:      runRepo,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// ValidateEvents validates predictions for the given events against the
// stored corpus and records each scored report.
func (s *ValidationService) ValidateEvents(ctx context.Context, events []validation.Event) (*validation.BatchResult, error) {
	corpus, err := s.matchRepo.GetAllChronological(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load match corpus: %w", err)
	}
	if len(corpus) == 0 {
		return nil, fmt.Errorf("match corpus is empty")
	}

	batch, err := s.orchestrator.ValidateAll(corpus, events)
	if err != nil {
		return nil, err
	}

	for i := 0; i < batch.Skipped; i++ {
		metrics.RecordValidationRun("skipped")
	}

	for _, report := range batch.Reports {
		outcome := "incorrect"
		if report.Correct {
			outcome = "correct"
		}
		metrics.RecordValidationRun(outcome)

		if s.runRepo == nil {
			continue
		}
		if err := s.storeRun(ctx, report); err != nil {
			s.logger.WithFields(logrus.Fields{
				"tournament": report.Tournament,
				"error":      err,
			}).Warn("Failed to store validation run")
		}
	}

	return batch, nil
}

func (s *ValidationService) storeRun(ctx context.Context, report *validation.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	run := &models.ValidationRun{
		TournamentName: report.Tournament,
		ActualWinner:   report.ActualWinner,
		Correct:        report.Correct,
		Report:         payload,
	}
	if report.PredictedWinner != "" {
		predicted := report.PredictedWinner
		run.PredictedWinner = &predicted
	}
	return s.runRepo.Create(ctx, run)
}

// RecentRuns returns the most recent stored validation runs
func (s *ValidationService) RecentRuns(ctx context.Context, limit int) ([]*models.ValidationRun, error) {
	if s.runRepo == nil {
		return nil, fmt.Errorf("validation run storage not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.runRepo.GetRecent(ctx, limit)
}
