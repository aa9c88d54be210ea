package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a competitive team tracked by the system
type Team struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name" validate:"required"`
	Rating        float64   `db:"rating" json:"rating"`
	MatchesPlayed int       `db:"matches_played" json:"matches_played"`
	Region        *string   `db:"region" json:"region,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// TeamRating is the minimal team shape consumed by the simulation core.
// It carries no seed; seeding produces new SeededTeam values and never
// mutates caller-supplied records.
type TeamRating struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// HasRating reports whether the team has played at least one rated match
func (t *Team) HasRating() bool {
	return t.MatchesPlayed > 0
}
