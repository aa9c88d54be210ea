// Package service coordinates ingestion, rating rebuilds and simulation
// runs on top of the repositories and data sources.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/datasource"
	"github.com/yourusername/bracket-oracle/internal/metrics"
	"github.com/yourusername/bracket-oracle/internal/repository"
)

// IngestionService handles the data ingestion workflow
type IngestionService struct {
	sources   []datasource.DataSource
	teamRepo  repository.TeamRepository
	matchRepo repository.MatchRepository
	stats     *IngestionStats
	logger    *logrus.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	sources []datasource.DataSource,
	teamRepo repository.TeamRepository,
	matchRepo repository.MatchRepository,
	logger *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		sources:   sources,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		stats:     NewIngestionStats(),
		logger:    logger,
	}
}

// IngestMatches fetches match results from a source and persists new records
func (s *IngestionService) IngestMatches(ctx context.Context, sourceName string) (*IngestionStats, error) {
	s.stats.Reset()
	startTime := time.Now()

	source, err := s.findSource(sourceName)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("source", sourceName).Info("Starting match ingestion")

	matches, err := source.FetchMatches(ctx)
	if err != nil {
		s.stats.RecordError()
		metrics.RecordIngestionError(sourceName)
		return s.stats, fmt.Errorf("failed to fetch matches: %w", err)
	}
	s.stats.TotalMatches = len(matches)

	inserted, err := s.matchRepo.InsertBatch(ctx, matches)
	if err != nil {
		s.stats.RecordError()
		metrics.RecordIngestionError(sourceName)
		return s.stats, fmt.Errorf("failed to store matches: %w", err)
	}
	s.stats.Inserted = inserted
	s.stats.Duplicates = len(matches) - inserted

	s.stats.Duration = time.Since(startTime)
	metrics.RecordIngestion(sourceName, inserted, s.stats.Duration.Seconds())

	s.logger.WithFields(logrus.Fields{
		"source":     sourceName,
		"fetched":    s.stats.TotalMatches,
		"inserted":   s.stats.Inserted,
		"duplicates": s.stats.Duplicates,
		"duration":   s.stats.Duration,
	}).Info("Match ingestion complete")

	return s.stats, nil
}

// IngestRankings fetches the current rankings from a source and upserts teams
func (s *IngestionService) IngestRankings(ctx context.Context, sourceName string) (*IngestionStats, error) {
	s.stats.Reset()
	startTime := time.Now()

	source, err := s.findSource(sourceName)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("source", sourceName).Info("Starting rankings ingestion")

	teams, err := source.FetchRankings(ctx)
	if err != nil {
		s.stats.RecordError()
		metrics.RecordIngestionError(sourceName)
		return s.stats, fmt.Errorf("failed to fetch rankings: %w", err)
	}

	for i := range teams {
		if err := s.teamRepo.Upsert(ctx, &teams[i]); err != nil {
			s.stats.RecordError()
			s.logger.WithFields(logrus.Fields{
				"team":  teams[i].Name,
				"error": err,
			}).Warn("Failed to upsert team")
			continue
		}
		s.stats.TeamsUpserted++
	}

	s.stats.Duration = time.Since(startTime)
	s.logger.WithFields(logrus.Fields{
		"source":   sourceName,
		"teams":    s.stats.TeamsUpserted,
		"errors":   s.stats.Errors,
		"duration": s.stats.Duration,
	}).Info("Rankings ingestion complete")

	return s.stats, nil
}

func (s *IngestionService) findSource(sourceName string) (datasource.DataSource, error) {
	for _, src := range s.sources {
		if src.Name() == sourceName {
			if !src.IsEnabled() {
				return nil, fmt.Errorf("data source disabled: %s", sourceName)
			}
			return src, nil
		}
	}
	return nil, fmt.Errorf("data source not found: %s", sourceName)
}

// GetStats returns current ingestion statistics
func (s *IngestionService) GetStats() *IngestionStats {
	return s.stats
}
