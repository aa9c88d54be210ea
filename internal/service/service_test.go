package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bracket-oracle/internal/bracket"
	"github.com/yourusername/bracket-oracle/internal/datasource"
	"github.com/yourusername/bracket-oracle/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeSource is an in-memory DataSource
type fakeSource struct {
	name    string
	enabled bool
	teams   []models.Team
	matches []models.MatchRecord
	err     error
}

func (f *fakeSource) FetchRankings(ctx context.Context) ([]models.Team, error) {
	return f.teams, f.err
}

func (f *fakeSource) FetchMatches(ctx context.Context) ([]models.MatchRecord, error) {
	return f.matches, f.err
}

func (f *fakeSource) Name() string    { return f.name }
func (f *fakeSource) IsEnabled() bool { return f.enabled }

// fakeTeamRepo is an in-memory TeamRepository
type fakeTeamRepo struct {
	teams map[string]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*models.Team)}
}

func (r *fakeTeamRepo) Upsert(ctx context.Context, team *models.Team) error {
	if team.Name == "" {
		return models.ErrTeamNameRequired
	}
	copied := *team
	r.teams[team.Name] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByName(ctx context.Context, name string) (*models.Team, error) {
	team, ok := r.teams[name]
	if !ok {
		return nil, models.ErrNotFound
	}
	return team, nil
}

func (r *fakeTeamRepo) GetAll(ctx context.Context) ([]*models.Team, error) {
	var all []*models.Team
	for _, team := range r.teams {
		all = append(all, team)
	}
	return all, nil
}

func (r *fakeTeamRepo) GetTopByRating(ctx context.Context, limit int) ([]*models.Team, error) {
	all, _ := r.GetAll(ctx)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j].Rating > all[i].Rating {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeTeamRepo) ReplaceRatings(ctx context.Context, entries []*models.Team) error {
	r.teams = make(map[string]*models.Team)
	for _, entry := range entries {
		copied := *entry
		r.teams[entry.Name] = &copied
	}
	return nil
}

// fakeMatchRepo is an in-memory MatchRepository
type fakeMatchRepo struct {
	matches []models.MatchRecord
}

func matchKey(m models.MatchRecord) string {
	return fmt.Sprintf("%s|%s|%d|%d|%s", m.TeamA, m.TeamB, m.MapsWonA, m.MapsWonB, m.Event)
}

func (r *fakeMatchRepo) InsertBatch(ctx context.Context, matches []models.MatchRecord) (int, error) {
	existing := make(map[string]bool)
	for _, m := range r.matches {
		existing[matchKey(m)] = true
	}
	inserted := 0
	for _, m := range matches {
		if existing[matchKey(m)] {
			continue
		}
		existing[matchKey(m)] = true
		r.matches = append(r.matches, m)
		inserted++
	}
	return inserted, nil
}

func (r *fakeMatchRepo) GetAllChronological(ctx context.Context) ([]models.MatchRecord, error) {
	return r.matches, nil
}

func (r *fakeMatchRepo) GetByEvent(ctx context.Context, event string) ([]models.MatchRecord, error) {
	var out []models.MatchRecord
	for _, m := range r.matches {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) CountByEvent(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, m := range r.matches {
		counts[m.Event]++
	}
	return counts, nil
}

// fakeSimRepo is an in-memory SimulationRepository
type fakeSimRepo struct {
	sims map[uuid.UUID]*models.Simulation
}

func newFakeSimRepo() *fakeSimRepo {
	return &fakeSimRepo{sims: make(map[uuid.UUID]*models.Simulation)}
}

func (r *fakeSimRepo) Create(ctx context.Context, sim *models.Simulation) error {
	copied := *sim
	r.sims[sim.ID] = &copied
	return nil
}

func (r *fakeSimRepo) UpdateStatus(ctx context.Context, sim *models.Simulation) error {
	if _, ok := r.sims[sim.ID]; !ok {
		return models.ErrNotFound
	}
	copied := *sim
	r.sims[sim.ID] = &copied
	return nil
}

func (r *fakeSimRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Simulation, error) {
	sim, ok := r.sims[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return sim, nil
}

func (r *fakeSimRepo) GetRecent(ctx context.Context, limit int) ([]*models.Simulation, error) {
	var out []*models.Simulation
	for _, sim := range r.sims {
		out = append(out, sim)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSimRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.sims[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.sims, id)
	return nil
}

func TestIngestMatchesStoresNewRecords(t *testing.T) {
	source := &fakeSource{
		name:    "vlr",
		enabled: true,
		matches: []models.MatchRecord{
			{TeamA: "Sentinels", TeamB: "Fnatic", MapsWonA: 2, MapsWonB: 1, Event: "Masters"},
			{TeamA: "Fnatic", TeamB: "Gen.G", MapsWonA: 2, MapsWonB: 0, Event: "Masters"},
		},
	}
	matchRepo := &fakeMatchRepo{}
	svc := NewIngestionService([]datasource.DataSource{source}, newFakeTeamRepo(), matchRepo, testLogger())

	stats, err := svc.IngestMatches(context.Background(), "vlr")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalMatches)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 0, stats.Duplicates)

	// Second run finds everything already stored
	stats, err = svc.IngestMatches(context.Background(), "vlr")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Inserted)
	assert.Equal(t, 2, stats.Duplicates)
}

func TestIngestMatchesUnknownSource(t *testing.T) {
	svc := NewIngestionService(nil, newFakeTeamRepo(), &fakeMatchRepo{}, testLogger())

	_, err := svc.IngestMatches(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestIngestMatchesDisabledSource(t *testing.T) {
	source := &fakeSource{name: "vlr", enabled: false}
	svc := NewIngestionService([]datasource.DataSource{source}, newFakeTeamRepo(), &fakeMatchRepo{}, testLogger())

	_, err := svc.IngestMatches(context.Background(), "vlr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestIngestRankingsUpsertsTeams(t *testing.T) {
	region := "EMEA"
	source := &fakeSource{
		name:    "vlr",
		enabled: true,
		teams: []models.Team{
			{Name: "Fnatic", Rating: 1650, Region: &region},
			{Name: "Team Liquid", Rating: 1580},
		},
	}
	teamRepo := newFakeTeamRepo()
	svc := NewIngestionService([]datasource.DataSource{source}, teamRepo, &fakeMatchRepo{}, testLogger())

	stats, err := svc.IngestRankings(context.Background(), "vlr")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TeamsUpserted)

	stored, err := teamRepo.GetByName(context.Background(), "Fnatic")
	require.NoError(t, err)
	assert.Equal(t, 1650.0, stored.Rating)
}

func TestRebuildRatings(t *testing.T) {
	matchRepo := &fakeMatchRepo{
		matches: []models.MatchRecord{
			{TeamA: "Alpha", TeamB: "Beta", MapsWonA: 2, MapsWonB: 0},
			{TeamA: "Alpha", TeamB: "Gamma", MapsWonA: 2, MapsWonB: 1},
			{TeamA: "Beta", TeamB: "Gamma", MapsWonA: 2, MapsWonB: 1},
		},
	}
	teamRepo := newFakeTeamRepo()
	svc := NewTeamService(teamRepo, matchRepo, nil, 0, testLogger())

	entries, err := svc.RebuildRatings(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Alpha won both matches and leads the snapshot
	assert.Equal(t, "Alpha", entries[0].Name)
	assert.Greater(t, entries[0].Rating, entries[1].Rating)

	stored, err := teamRepo.GetByName(context.Background(), "Alpha")
	require.NoError(t, err)
	assert.Equal(t, entries[0].Rating, stored.Rating)
}

func TestRebuildRatingsEmptyCorpus(t *testing.T) {
	svc := NewTeamService(newFakeTeamRepo(), &fakeMatchRepo{}, nil, 0, testLogger())

	_, err := svc.RebuildRatings(context.Background())
	require.Error(t, err)
}

func TestRunSimulationCompletes(t *testing.T) {
	simRepo := newFakeSimRepo()
	svc := NewSimulationService(simRepo, newFakeTeamRepo(), testLogger())

	req := SimulationRequest{
		TeamCount:  4,
		TrialCount: 1000,
		BestOf:     3,
		Seed:       42,
		Teams: []models.TeamRating{
			{Name: "Alpha", Rating: 1700},
			{Name: "Beta", Rating: 1600},
			{Name: "Gamma", Rating: 1550},
			{Name: "Delta", Rating: 1500},
		},
	}

	var updates []ProgressUpdate
	sim, err := svc.RunSimulation(context.Background(), req, func(u ProgressUpdate) {
		updates = append(updates, u)
	})
	require.NoError(t, err)
	assert.Equal(t, models.SimulationStatusCompleted, sim.Status)
	require.NotNil(t, sim.StartedAt)
	require.NotNil(t, sim.CompletedAt)

	require.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	assert.Equal(t, 1000, last.Completed)
	assert.Equal(t, 1000, last.Total)
	for i := 1; i < len(updates); i++ {
		assert.Greater(t, updates[i].Completed, updates[i-1].Completed)
	}

	var results []bracket.TeamResult
	require.NoError(t, json.Unmarshal(sim.Results, &results))
	require.Len(t, results, 4)
	assert.Equal(t, "Alpha", results[0].Name)

	stored, err := simRepo.GetByID(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SimulationStatusCompleted, stored.Status)
}

func TestRunSimulationNotEnoughTeams(t *testing.T) {
	teamRepo := newFakeTeamRepo()
	require.NoError(t, teamRepo.Upsert(context.Background(), &models.Team{Name: "Alpha", Rating: 1600}))

	svc := NewSimulationService(newFakeSimRepo(), teamRepo, testLogger())

	_, err := svc.RunSimulation(context.Background(), SimulationRequest{
		TeamCount:  4,
		TrialCount: 100,
		BestOf:     3,
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rated teams available")
}

func TestSimulationRequestValidate(t *testing.T) {
	valid := SimulationRequest{TeamCount: 8, TrialCount: 1000, BestOf: 3, Seed: 7}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		req   SimulationRequest
		field string
	}{
		{name: "one team", req: SimulationRequest{TeamCount: 1, TrialCount: 100, BestOf: 3}, field: "team_count"},
		{name: "zero trials", req: SimulationRequest{TeamCount: 4, BestOf: 3}, field: "trial_count"},
		{name: "even best_of", req: SimulationRequest{TeamCount: 4, TrialCount: 100, BestOf: 2}, field: "best_of"},
		{name: "zero best_of", req: SimulationRequest{TeamCount: 4, TrialCount: 100}, field: "best_of"},
		{name: "negative sigma", req: SimulationRequest{TeamCount: 4, TrialCount: 100, BestOf: 3, PerformanceSigma: -0.5}, field: "performance_sigma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
