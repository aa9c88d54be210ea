package rating

import (
	"fmt"

	"github.com/yourusername/bracket-oracle/internal/models"
)

// InvalidMatchRecordError reports non-physical match data such as negative
// map counts
type InvalidMatchRecordError struct {
	Match  models.MatchRecord
	Reason string
}

func (e *InvalidMatchRecordError) Error() string {
	return fmt.Sprintf("invalid match record %s vs %s (%s): %s",
		e.Match.TeamA, e.Match.TeamB, e.Match.Score(), e.Reason)
}

// HistoryPoint is one step of a team's chronological rating trace
type HistoryPoint struct {
	MatchIndex int     `json:"match_index"`
	Rating     float64 `json:"rating"`
}

// Estimator applies sequential ELO updates over an ordered match corpus.
// Matches must be supplied in chronological order; the estimator performs
// no reordering, so ratings are path-dependent by design.
type Estimator struct {
	KFactor       float64
	InitialRating float64
	// UseMapScores scores a match fractionally by maps won (2-1 -> 0.67)
	// instead of the binary 1/0 outcome.
	UseMapScores bool
	// Strict aborts processing on the first invalid record instead of
	// skipping it.
	Strict bool
}

// NewEstimator returns an estimator with the standard esports parameters
// (K=32, initial 1500, fractional map scoring)
func NewEstimator() *Estimator {
	return &Estimator{
		KFactor:       DefaultKFactor,
		InitialRating: DefaultInitialRating,
		UseMapScores:  true,
	}
}

// Result is the outcome of a Process run
type Result struct {
	Table     *Table
	Processed int
	Skipped   int
	// History holds per-team chronological rating traces, keyed by team
	// name. Index 0 is the initial rating.
	History map[string][]HistoryPoint
}

// ActualScore converts a map scoreline into the match score used by the
// ELO update. A 0-0 scoreline scores as a draw rather than an error: it
// cannot occur in valid data but must not crash.
func (e *Estimator) ActualScore(mapsWon, mapsLost int) float64 {
	if !e.UseMapScores {
		if mapsWon > mapsLost {
			return 1.0
		}
		return 0.0
	}
	total := mapsWon + mapsLost
	if total == 0 {
		return 0.5
	}
	return float64(mapsWon) / float64(total)
}

// Update applies a single match result to the table and returns the new
// ratings for both teams. The update is zero-sum: newA+newB == oldA+oldB
// up to floating point, for any K.
func (e *Estimator) Update(table *Table, match models.MatchRecord) (newA, newB float64, err error) {
	if match.MapsWonA < 0 || match.MapsWonB < 0 {
		return 0, 0, &InvalidMatchRecordError{Match: match, Reason: "negative map count"}
	}

	ratingA := table.GetOrInsert(match.TeamA)
	ratingB := table.GetOrInsert(match.TeamB)

	expectedA := ExpectedScore(ratingA, ratingB)
	expectedB := ExpectedScore(ratingB, ratingA)

	actualA := e.ActualScore(match.MapsWonA, match.MapsWonB)
	actualB := e.ActualScore(match.MapsWonB, match.MapsWonA)

	newA = ratingA + e.KFactor*(actualA-expectedA)
	newB = ratingB + e.KFactor*(actualB-expectedB)

	table.set(match.TeamA, newA)
	table.set(match.TeamB, newB)
	table.recordMatch(match.TeamA)
	table.recordMatch(match.TeamB)

	return newA, newB, nil
}

// Process applies Update sequentially over the corpus and returns the final
// table plus per-team rating traces. Invalid records are skipped and counted
// unless Strict is set, in which case the first one aborts the run.
func (e *Estimator) Process(matches []models.MatchRecord) (*Result, error) {
	table := NewTable(e.InitialRating)
	result := &Result{
		Table:   table,
		History: make(map[string][]HistoryPoint),
	}

	for i, match := range matches {
		newA, newB, err := e.Update(table, match)
		if err != nil {
			if e.Strict {
				return nil, fmt.Errorf("match %d: %w", i, err)
			}
			result.Skipped++
			continue
		}
		result.Processed++
		e.trace(result, match.TeamA, i, newA)
		e.trace(result, match.TeamB, i, newB)
	}

	return result, nil
}

func (e *Estimator) trace(result *Result, team string, matchIndex int, newRating float64) {
	if _, ok := result.History[team]; !ok {
		result.History[team] = []HistoryPoint{{MatchIndex: -1, Rating: e.InitialRating}}
	}
	result.History[team] = append(result.History[team], HistoryPoint{
		MatchIndex: matchIndex,
		Rating:     newRating,
	})
}
