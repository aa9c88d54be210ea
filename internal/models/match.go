package models

import (
	"fmt"
	"time"
)

// MatchRecord represents a single historical match result used for rating
// estimation. Map counts decide the actual score; Event and Round are
// grouping tags only and never influence the estimator.
type MatchRecord struct {
	TeamA    string     `db:"team_a" json:"team_a" validate:"required"`
	TeamB    string     `db:"team_b" json:"team_b" validate:"required"`
	MapsWonA int        `db:"maps_won_a" json:"score_a" validate:"gte=0"`
	MapsWonB int        `db:"maps_won_b" json:"score_b" validate:"gte=0"`
	Event    string     `db:"event" json:"event,omitempty"`
	Round    string     `db:"round" json:"round,omitempty"`
	PlayedAt *time.Time `db:"played_at" json:"played_at,omitempty"`
}

// Score returns the map score in "2-1" form
func (m MatchRecord) Score() string {
	return fmt.Sprintf("%d-%d", m.MapsWonA, m.MapsWonB)
}

// Winner returns the winning team name, or "" for a drawn scoreline
func (m MatchRecord) Winner() string {
	switch {
	case m.MapsWonA > m.MapsWonB:
		return m.TeamA
	case m.MapsWonB > m.MapsWonA:
		return m.TeamB
	default:
		return ""
	}
}

// Involves reports whether the named team played in this match
func (m MatchRecord) Involves(team string) bool {
	return m.TeamA == team || m.TeamB == team
}

// MatchCorpus is the JSON shape of a historical match file
type MatchCorpus struct {
	Matches []MatchRecord `json:"matches"`
}
