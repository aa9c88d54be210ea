package repository

import (
	"fmt"

	"github.com/yourusername/bracket-oracle/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Team          TeamRepository
	Match         MatchRepository
	Simulation    SimulationRepository
	ValidationRun ValidationRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Team:          NewPostgresTeamRepository(db),
		Match:         NewPostgresMatchRepository(db),
		Simulation:    NewPostgresSimulationRepository(db),
		ValidationRun: NewPostgresValidationRunRepository(db),
	}, nil
}
