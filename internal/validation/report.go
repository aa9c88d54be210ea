package validation

import (
	"errors"

	"github.com/yourusername/bracket-oracle/internal/bracket"
	"github.com/yourusername/bracket-oracle/internal/models"
)

// Report is the scored prediction for a single tournament
type Report struct {
	Tournament           string               `json:"tournament"`
	TrainingMatches      int                  `json:"training_matches"`
	ParticipantCount     int                  `json:"participant_count"`
	RatedParticipants    int                  `json:"rated_participants"`
	PredictedWinner      string               `json:"predicted_winner"`
	PredictedProbability float64              `json:"predicted_prob"`
	ActualWinner         string               `json:"actual_winner"`
	ActualWinnerProb     float64              `json:"actual_winner_prob"`
	// ActualWinnerRank is 1-based; nil when the winner was absent from the
	// simulated bracket.
	ActualWinnerRank *int                 `json:"actual_winner_rank,omitempty"`
	Correct          bool                 `json:"correct_prediction"`
	TopThree         bool                 `json:"top_3"`
	TopFive          bool                 `json:"top_5"`
	TopFourOverlap   int                  `json:"top_4_overlap"`
	TopPredictions   []bracket.TeamResult `json:"top_predictions"`
}

func scoreReport(event Event, trainingMatches, participants, rated int, results []bracket.TeamResult) *Report {
	report := &Report{
		Tournament:        event.Name,
		TrainingMatches:   trainingMatches,
		ParticipantCount:  participants,
		RatedParticipants: rated,
		ActualWinner:      event.ActualWinner,
	}

	if len(results) > 0 {
		report.PredictedWinner = results[0].Name
		report.PredictedProbability = results[0].ChampionshipPct
	}

	for i, result := range results {
		if result.Name == event.ActualWinner {
			rank := i + 1
			report.ActualWinnerRank = &rank
			report.ActualWinnerProb = result.ChampionshipPct
			break
		}
	}

	report.Correct = report.PredictedWinner == event.ActualWinner
	if report.ActualWinnerRank != nil {
		report.TopThree = *report.ActualWinnerRank <= 3
		report.TopFive = *report.ActualWinnerRank <= 5
	}

	if len(event.ActualTopFour) > 0 {
		actual := make(map[string]bool, len(event.ActualTopFour))
		for _, name := range event.ActualTopFour {
			actual[name] = true
		}
		limit := 4
		if len(results) < limit {
			limit = len(results)
		}
		for _, result := range results[:limit] {
			if actual[result.Name] {
				report.TopFourOverlap++
			}
		}
	}

	limit := 5
	if len(results) < limit {
		limit = len(results)
	}
	report.TopPredictions = results[:limit]

	return report
}

// BatchResult aggregates validation reports across tournaments. Skipped
// counts events that failed with insufficient data; they are visible, never
// silently swallowed.
type BatchResult struct {
	Reports       []*Report `json:"validation_results"`
	Skipped       int       `json:"skipped"`
	ExactAccuracy float64   `json:"exact_accuracy"`
	TopThreeRate  float64   `json:"top_3_accuracy"`
	TopFiveRate   float64   `json:"top_5_accuracy"`
	AvgWinnerProb float64   `json:"avg_winner_probability"`
	// AvgWinnerRank averages only ranked winners; nil when none ranked.
	AvgWinnerRank *float64 `json:"avg_winner_rank,omitempty"`
}

// ValidateAll runs every event against the corpus, continuing past
// insufficient-data failures and counting them
func (o *Orchestrator) ValidateAll(corpus []models.MatchRecord, events []Event) (*BatchResult, error) {
	batch := &BatchResult{}

	for _, event := range events {
		training, eventMatches := SplitForEvent(corpus, event.Name)
		report, err := o.ValidateEvent(training, eventMatches, event)
		if err != nil {
			var insufficient *InsufficientDataError
			if errors.As(err, &insufficient) {
				o.logger.WithField("tournament", event.Name).Warn(insufficient.Error())
				batch.Skipped++
				continue
			}
			return nil, err
		}
		batch.Reports = append(batch.Reports, report)
	}

	batch.aggregate()
	return batch, nil
}

func (b *BatchResult) aggregate() {
	total := len(b.Reports)
	if total == 0 {
		return
	}

	correct, topThree, topFive := 0, 0, 0
	probSum := 0.0
	rankSum, ranked := 0, 0
	for _, report := range b.Reports {
		if report.Correct {
			correct++
		}
		if report.TopThree {
			topThree++
		}
		if report.TopFive {
			topFive++
		}
		probSum += report.ActualWinnerProb
		if report.ActualWinnerRank != nil {
			rankSum += *report.ActualWinnerRank
			ranked++
		}
	}

	b.ExactAccuracy = float64(correct) / float64(total)
	b.TopThreeRate = float64(topThree) / float64(total)
	b.TopFiveRate = float64(topFive) / float64(total)
	b.AvgWinnerProb = probSum / float64(total)
	if ranked > 0 {
		avg := float64(rankSum) / float64(ranked)
		b.AvgWinnerRank = &avg
	}
}
