package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionStats tracks statistics about a data ingestion run
type IngestionStats struct {
	mu            sync.RWMutex
	StartTime     time.Time
	Duration      time.Duration
	TotalMatches  int
	Inserted      int
	Duplicates    int
	TeamsUpserted int
	Errors        int
}

// NewIngestionStats creates a new statistics tracker
func NewIngestionStats() *IngestionStats {
	return &IngestionStats{
		StartTime: time.Now(),
	}
}

// Reset resets all statistics
func (m *IngestionStats) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalMatches = 0
	m.Inserted = 0
	m.Duplicates = 0
	m.TeamsUpserted = 0
	m.Errors = 0
}

// RecordError increments the error count
func (m *IngestionStats) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// String returns a formatted representation of the statistics
func (m *IngestionStats) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"IngestionStats{Fetched=%d, Inserted=%d, Duplicates=%d, Teams=%d, Errors=%d, Duration=%v}",
		m.TotalMatches,
		m.Inserted,
		m.Duplicates,
		m.TeamsUpserted,
		m.Errors,
		m.Duration,
	)
}
