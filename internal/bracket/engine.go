package bracket

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/rating"
)

// InvalidBracketSizeError reports a bracket request the engine cannot
// honour: not a power of two, fewer than 2 teams, or more teams than are
// available.
type InvalidBracketSizeError struct {
	Requested int
	Available int
	Reason    string
}

func (e *InvalidBracketSizeError) Error() string {
	return fmt.Sprintf("invalid bracket size %d (available %d): %s",
		e.Requested, e.Available, e.Reason)
}

// SeededTeam is a team placed into a bracket. Seeding produces fresh values;
// caller-supplied team records are never mutated.
type SeededTeam struct {
	Name   string  `json:"name"`
	Seed   int     `json:"seed"`
	Rating float64 `json:"elo_rating"`
}

// SelectBracket picks the top size teams by rating and assigns seeds 1..size.
// The sort is stable, so equally rated teams keep their input order. size
// must be a power of two between 2 and len(teams).
func SelectBracket(teams []models.TeamRating, size int) ([]SeededTeam, error) {
	if err := checkBracketSize(size, len(teams)); err != nil {
		return nil, err
	}

	ordered := make([]models.TeamRating, len(teams))
	copy(ordered, teams)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rating > ordered[j].Rating
	})

	seeded := make([]SeededTeam, size)
	for i := 0; i < size; i++ {
		seeded[i] = SeededTeam{Name: ordered[i].Name, Seed: i + 1, Rating: ordered[i].Rating}
	}
	return seeded, nil
}

// LargestBracketSize returns the largest power of two <= n, or 0 when no
// bracket fits
func LargestBracketSize(n int) int {
	if n < 2 {
		return 0
	}
	size := 2
	for size*2 <= n {
		size *= 2
	}
	return size
}

func checkBracketSize(requested, available int) error {
	if requested < 2 {
		return &InvalidBracketSizeError{Requested: requested, Available: available, Reason: "need at least 2 teams"}
	}
	if requested&(requested-1) != 0 {
		return &InvalidBracketSizeError{Requested: requested, Available: available, Reason: "not a power of two"}
	}
	if requested > available {
		return &InvalidBracketSizeError{Requested: requested, Available: available, Reason: "not enough teams available"}
	}
	return nil
}

// RoundName labels a round by the number of teams entering it
func RoundName(teamsRemaining int) string {
	switch teamsRemaining {
	case 2:
		return "Finals"
	case 4:
		return "Semifinals"
	case 8:
		return "Quarterfinals"
	default:
		return fmt.Sprintf("Round of %d", teamsRemaining)
	}
}

// Engine simulates single-elimination tournaments. It owns no global state:
// the caller supplies the random source, so fixed seeds give reproducible
// brackets.
type Engine struct {
	BestOf int
	// PerformanceSigma, when positive, draws per-team Gaussian rating noise
	// for every match, modelling day-to-day form.
	PerformanceSigma float64

	rng *rand.Rand
}

// NewEngine creates an engine drawing randomness from rng
func NewEngine(bestOf int, performanceSigma float64, rng *rand.Rand) *Engine {
	return &Engine{BestOf: bestOf, PerformanceSigma: performanceSigma, rng: rng}
}

// simulateMatch plays one series and returns the winner
func (e *Engine) simulateMatch(teamA, teamB SeededTeam) SeededTeam {
	ra := teamA.Rating
	rb := teamB.Rating
	if e.PerformanceSigma > 0 {
		ra += e.rng.NormFloat64() * e.PerformanceSigma
		rb += e.rng.NormFloat64() * e.PerformanceSigma
	}

	mapProbA := rating.ExpectedScore(ra, rb)
	seriesProbA := SeriesWinProbability(mapProbA, e.BestOf)

	if e.rng.Float64() < seriesProbA {
		return teamA
	}
	return teamB
}

// SimulateTournament replays one full bracket and returns the champion,
// recording round-reach milestones and the championship into acc. Milestones
// are recorded before each round's eliminations, labeled by the team count
// entering the round, so teams get credit for the round they are entering.
func (e *Engine) SimulateTournament(teams []SeededTeam, acc *Accumulator) (SeededTeam, error) {
	if err := checkBracketSize(len(teams), len(teams)); err != nil {
		return SeededTeam{}, err
	}

	remaining := make([]SeededTeam, len(teams))
	copy(remaining, teams)

	for len(remaining) > 1 {
		acc.recordReach(RoundName(len(remaining)), remaining)

		next := make([]SeededTeam, 0, len(remaining)/2)
		for i := 0; i < len(remaining); i += 2 {
			next = append(next, e.simulateMatch(remaining[i], remaining[i+1]))
		}
		remaining = next
	}

	champion := remaining[0]
	acc.recordChampionship(champion.Name)
	acc.trials++
	return champion, nil
}
