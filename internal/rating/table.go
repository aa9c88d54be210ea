package rating

import "sort"

// Table maps team names to their current rating. Unseen teams are inserted
// at the configured initial rating via GetOrInsert; the table never creates
// entries on plain reads.
type Table struct {
	initialRating float64
	ratings       map[string]float64
	matchCounts   map[string]int
}

// NewTable creates an empty rating table with the given initial rating
func NewTable(initialRating float64) *Table {
	return &Table{
		initialRating: initialRating,
		ratings:       make(map[string]float64),
		matchCounts:   make(map[string]int),
	}
}

// GetOrInsert returns the team's rating, inserting the initial rating if the
// team has never been seen
func (t *Table) GetOrInsert(team string) float64 {
	if r, ok := t.ratings[team]; ok {
		return r
	}
	t.ratings[team] = t.initialRating
	return t.initialRating
}

// Get returns the team's rating without inserting; unseen teams report the
// initial rating and ok=false
func (t *Table) Get(team string) (float64, bool) {
	if r, ok := t.ratings[team]; ok {
		return r, true
	}
	return t.initialRating, false
}

func (t *Table) set(team string, r float64) {
	t.ratings[team] = r
}

func (t *Table) recordMatch(team string) {
	t.matchCounts[team]++
}

// MatchesPlayed returns the number of rated matches recorded for a team
func (t *Table) MatchesPlayed(team string) int {
	return t.matchCounts[team]
}

// Len returns the number of rated teams
func (t *Table) Len() int {
	return len(t.ratings)
}

// Entry is one row of a table snapshot
type Entry struct {
	Name          string  `json:"name"`
	Rating        float64 `json:"elo_rating"`
	MatchesPlayed int     `json:"matches_played"`
}

// Snapshot returns table entries for teams with at least minMatches rated
// matches, sorted by rating descending
func (t *Table) Snapshot(minMatches int) []Entry {
	entries := make([]Entry, 0, len(t.ratings))
	for name, r := range t.ratings {
		if t.matchCounts[name] < minMatches {
			continue
		}
		entries = append(entries, Entry{Name: name, Rating: r, MatchesPlayed: t.matchCounts[name]})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
