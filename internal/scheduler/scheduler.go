// Package scheduler manages the recurring ingestion and rating rebuild jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/service"
)

// Scheduler manages scheduled ingestion and rating jobs
type Scheduler struct {
	cron         *cron.Cron
	ingestionSvc *service.IngestionService
	teamSvc      *service.TeamService
	logger       *logrus.Logger
	mu           sync.RWMutex
	isRunning    bool
	jobIDs       []cron.EntryID
	jobTimeout   time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(ingestionSvc *service.IngestionService, teamSvc *service.TeamService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc: ingestionSvc,
		teamSvc:      teamSvc,
		logger:       logger,
		jobIDs:       make([]cron.EntryID, 0),
		jobTimeout:   30 * time.Minute,
	}
}

// ScheduleIngestion schedules a recurring fetch of rankings and match
// results from the named source, followed by a rating rebuild.
func (s *Scheduler) ScheduleIngestion(cronExpression string, sourceName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		s.logger.WithField("source", sourceName).Info("Starting scheduled ingestion")

		if _, err := s.ingestionSvc.IngestRankings(ctx, sourceName); err != nil {
			s.logger.WithFields(logrus.Fields{
				"source": sourceName,
				"error":  err,
			}).Error("Scheduled rankings ingestion failed")
		}

		stats, err := s.ingestionSvc.IngestMatches(ctx, sourceName)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"source": sourceName,
				"error":  err,
			}).Error("Scheduled match ingestion failed")
			return
		}
		s.logger.WithField("stats", stats.String()).Info("Scheduled ingestion completed")

		// Only rebuild when the corpus changed
		if stats.Inserted == 0 || s.teamSvc == nil {
			return
		}
		if _, err := s.teamSvc.RebuildRatings(ctx); err != nil {
			s.logger.WithField("error", err).Error("Scheduled rating rebuild failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"schedule": cronExpression,
		"source":   sourceName,
	}).Info("Scheduled ingestion job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
