package bracket

import "sort"

// roundTally holds per-team counters with a fixed field per known round
// label; brackets larger than 8 spill into the Other bucket.
type roundTally struct {
	Championships int
	Finals        int
	Semifinals    int
	Quarterfinals int
	Other         map[string]int
}

func (t *roundTally) add(round string) {
	switch round {
	case "Finals":
		t.Finals++
	case "Semifinals":
		t.Semifinals++
	case "Quarterfinals":
		t.Quarterfinals++
	default:
		if t.Other == nil {
			t.Other = make(map[string]int)
		}
		t.Other[round]++
	}
}

// Accumulator collects round-reach and championship counts across trials.
// It is not safe for concurrent use: parallel workers keep private
// accumulators and Merge them once all trials finish.
type Accumulator struct {
	trials  int
	tallies map[string]*roundTally
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{tallies: make(map[string]*roundTally)}
}

// Trials returns the number of completed trials recorded
func (a *Accumulator) Trials() int {
	return a.trials
}

func (a *Accumulator) tally(team string) *roundTally {
	t, ok := a.tallies[team]
	if !ok {
		t = &roundTally{}
		a.tallies[team] = t
	}
	return t
}

func (a *Accumulator) recordReach(round string, teams []SeededTeam) {
	for _, team := range teams {
		a.tally(team.Name).add(round)
	}
}

func (a *Accumulator) recordChampionship(team string) {
	a.tally(team).Championships++
}

// Merge sums another accumulator's counters into this one
func (a *Accumulator) Merge(other *Accumulator) {
	a.trials += other.trials
	for name, t := range other.tallies {
		dst := a.tally(name)
		dst.Championships += t.Championships
		dst.Finals += t.Finals
		dst.Semifinals += t.Semifinals
		dst.Quarterfinals += t.Quarterfinals
		for round, n := range t.Other {
			if dst.Other == nil {
				dst.Other = make(map[string]int)
			}
			dst.Other[round] += n
		}
	}
}

// TeamResult is the per-team aggregate of a Monte Carlo run. Probabilities
// are percentages in [0,100].
type TeamResult struct {
	Name             string             `json:"name"`
	Seed             int                `json:"seed"`
	Rating           float64            `json:"elo_rating"`
	ChampionshipPct  float64            `json:"championship_prob"`
	FinalsPct        float64            `json:"finals_prob"`
	SemifinalsPct    float64            `json:"semifinals_prob"`
	QuarterfinalsPct float64            `json:"quarterfinals_prob"`
	OtherRounds      map[string]float64 `json:"other_rounds,omitempty"`
}

// RoundProbabilities returns the round-label -> percentage mapping for the
// rounds this team's bracket actually has
func (r TeamResult) RoundProbabilities(bracketSize int) map[string]float64 {
	probs := make(map[string]float64)
	if bracketSize >= 2 {
		probs["Finals"] = r.FinalsPct
	}
	if bracketSize >= 4 {
		probs["Semifinals"] = r.SemifinalsPct
	}
	if bracketSize >= 8 {
		probs["Quarterfinals"] = r.QuarterfinalsPct
	}
	for round, pct := range r.OtherRounds {
		probs[round] = pct
	}
	return probs
}

// Results converts counters into per-team percentages. The list is sorted by
// championship probability descending; the sort is stable over seed order,
// which is the canonical tie-break.
func (a *Accumulator) Results(teams []SeededTeam) []TeamResult {
	results := make([]TeamResult, 0, len(teams))
	total := float64(a.trials)

	for _, team := range teams {
		t := a.tally(team.Name)
		result := TeamResult{
			Name:   team.Name,
			Seed:   team.Seed,
			Rating: team.Rating,
		}
		if total > 0 {
			result.ChampionshipPct = float64(t.Championships) / total * 100
			result.FinalsPct = float64(t.Finals) / total * 100
			result.SemifinalsPct = float64(t.Semifinals) / total * 100
			result.QuarterfinalsPct = float64(t.Quarterfinals) / total * 100
			for round, n := range t.Other {
				if result.OtherRounds == nil {
					result.OtherRounds = make(map[string]float64)
				}
				result.OtherRounds[round] = float64(n) / total * 100
			}
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ChampionshipPct > results[j].ChampionshipPct
	})
	return results
}
