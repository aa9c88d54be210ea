package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/metrics"
	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/rating"
	"github.com/yourusername/bracket-oracle/internal/repository"
)

// TeamService rebuilds team ratings from the stored match corpus
type TeamService struct {
	teamRepo   repository.TeamRepository
	matchRepo  repository.MatchRepository
	estimator  *rating.Estimator
	minMatches int
	logger     *logrus.Logger
}

// NewTeamService creates a new team service
func NewTeamService(
	teamRepo repository.TeamRepository,
	matchRepo repository.MatchRepository,
	estimator *rating.Estimator,
	minMatches int,
	logger *logrus.Logger,
) *TeamService {
	if estimator == nil {
		estimator = rating.NewEstimator()
	}
	return &TeamService{
		teamRepo:   teamRepo,
		matchRepo:  matchRepo,
		estimator:  estimator,
		minMatches: minMatches,
		logger:     logger,
	}
}

// RebuildRatings replays the full match corpus through the rating estimator
// and replaces the stored rating snapshot with the result.
func (s *TeamService) RebuildRatings(ctx context.Context) ([]rating.Entry, error) {
	matches, err := s.matchRepo.GetAllChronological(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load match corpus: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("match corpus is empty")
	}

	result, err := s.estimator.Process(matches)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate ratings: %w", err)
	}

	entries := result.Table.Snapshot(s.minMatches)

	teams := make([]*models.Team, 0, len(entries))
	for _, entry := range entries {
		teams = append(teams, &models.Team{
			Name:          entry.Name,
			Rating:        entry.Rating,
			MatchesPlayed: entry.MatchesPlayed,
		})
	}

	if err := s.teamRepo.ReplaceRatings(ctx, teams); err != nil {
		return nil, fmt.Errorf("failed to store ratings: %w", err)
	}

	metrics.RecordRatingUpdate(len(entries))
	metrics.UpdateStoredMatches(len(matches))

	s.logger.WithFields(logrus.Fields{
		"matches":   result.Processed,
		"skipped":   result.Skipped,
		"teams":     len(entries),
		"min_games": s.minMatches,
	}).Info("Rating table rebuilt")

	return entries, nil
}

// TopTeams returns the highest rated teams from the stored snapshot
func (s *TeamService) TopTeams(ctx context.Context, limit int) ([]*models.Team, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	return s.teamRepo.GetTopByRating(ctx, limit)
}

// GetTeam returns a single team by name
func (s *TeamService) GetTeam(ctx context.Context, name string) (*models.Team, error) {
	if name == "" {
		return nil, models.ErrTeamNameRequired
	}
	return s.teamRepo.GetByName(ctx, name)
}
