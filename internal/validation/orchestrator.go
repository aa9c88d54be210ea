// Package validation scores historical tournament predictions against known
// outcomes using time-based train/test splits.
package validation

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/bracket"
	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/rating"
)

// InsufficientDataError reports that too few event participants carry
// ratings to simulate a bracket
type InsufficientDataError struct {
	Tournament string
	Rated      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient rating data for %s: %d rated participants, need at least 2",
		e.Tournament, e.Rated)
}

// Event describes one tournament to validate against
type Event struct {
	Name          string   `json:"name"`
	ActualWinner  string   `json:"actual_winner"`
	ActualTopFour []string `json:"actual_top_four,omitempty"`
}

// Config configures a validation run
type Config struct {
	TrialCount  int
	BestOf      int
	BracketSize int
	Seed        int64
}

// DefaultConfig returns the standard validation parameters: top-8 bracket,
// best-of-3, 5000 trials
func DefaultConfig() Config {
	return Config{TrialCount: 5000, BestOf: 3, BracketSize: 8}
}

// Orchestrator composes the rating estimator and the Monte Carlo simulator
// into a train/test harness
type Orchestrator struct {
	estimator *rating.Estimator
	config    Config
	logger    *logrus.Logger
}

// NewOrchestrator creates an orchestrator; a nil logger gets a default one
func NewOrchestrator(estimator *rating.Estimator, cfg Config, logger *logrus.Logger) *Orchestrator {
	if estimator == nil {
		estimator = rating.NewEstimator()
	}
	if cfg.TrialCount <= 0 {
		cfg.TrialCount = DefaultConfig().TrialCount
	}
	if cfg.BestOf <= 0 {
		cfg.BestOf = DefaultConfig().BestOf
	}
	if cfg.BracketSize <= 0 {
		cfg.BracketSize = DefaultConfig().BracketSize
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Orchestrator{estimator: estimator, config: cfg, logger: logger}
}

// SplitByEvent groups a corpus by event tag, preserving match order within
// each group. Showmatches carry no competitive signal and are dropped.
func SplitByEvent(matches []models.MatchRecord) map[string][]models.MatchRecord {
	byEvent := make(map[string][]models.MatchRecord)
	for _, match := range matches {
		if strings.Contains(match.Round, "Showmatch") {
			continue
		}
		event := match.Event
		if event == "" {
			event = "Unknown"
		}
		byEvent[event] = append(byEvent[event], match)
	}
	return byEvent
}

// SplitForEvent returns the training corpus (matches strictly before the
// event's first match, excluding the event's own) and the event's matches.
// The event's matches reveal only who participated, never their outcomes.
func SplitForEvent(corpus []models.MatchRecord, eventName string) (training, eventMatches []models.MatchRecord) {
	firstIdx := -1
	for i, match := range corpus {
		if match.Event == eventName {
			firstIdx = i
			break
		}
	}

	for i, match := range corpus {
		if strings.Contains(match.Round, "Showmatch") {
			continue
		}
		if match.Event == eventName {
			eventMatches = append(eventMatches, match)
			continue
		}
		if firstIdx == -1 || i < firstIdx {
			training = append(training, match)
		}
	}
	return training, eventMatches
}

// Participants extracts the unique team names from an event's matches
func Participants(matches []models.MatchRecord) []string {
	seen := make(map[string]bool)
	var teams []string
	for _, match := range matches {
		for _, name := range []string{match.TeamA, match.TeamB} {
			if name != "" && !seen[name] {
				seen[name] = true
				teams = append(teams, name)
			}
		}
	}
	return teams
}

// ValidateEvent trains on the given corpus, simulates the event's bracket
// restricted to rated participants and scores the prediction against the
// actual outcome. An *InsufficientDataError is returned when fewer than 2
// participants carry ratings.
func (o *Orchestrator) ValidateEvent(training []models.MatchRecord, eventMatches []models.MatchRecord, event Event) (*Report, error) {
	estimation, err := o.estimator.Process(training)
	if err != nil {
		return nil, fmt.Errorf("rating estimation failed: %w", err)
	}

	participants := Participants(eventMatches)
	rated := make([]models.TeamRating, 0, len(participants))
	for _, name := range participants {
		if r, known := estimation.Table.Get(name); known {
			rated = append(rated, models.TeamRating{Name: name, Rating: r})
		}
	}

	bracketSize := o.config.BracketSize
	if largest := bracket.LargestBracketSize(len(rated)); largest < bracketSize {
		bracketSize = largest
	}
	if bracketSize < 2 {
		return nil, &InsufficientDataError{Tournament: event.Name, Rated: len(rated)}
	}

	seeded, err := bracket.SelectBracket(rated, bracketSize)
	if err != nil {
		return nil, err
	}

	o.logger.WithFields(logrus.Fields{
		"tournament":   event.Name,
		"training":     len(training),
		"participants": len(participants),
		"rated":        len(rated),
		"bracket_size": bracketSize,
	}).Info("Validating tournament")

	results, err := bracket.RunSimulation(seeded, bracket.Config{
		BestOf:     o.config.BestOf,
		TrialCount: o.config.TrialCount,
		Seed:       o.config.Seed,
	})
	if err != nil {
		return nil, err
	}

	return scoreReport(event, len(training), len(participants), len(rated), results), nil
}
