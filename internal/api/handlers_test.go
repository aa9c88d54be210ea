package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/rating"
	"github.com/yourusername/bracket-oracle/internal/service"
	"github.com/yourusername/bracket-oracle/internal/validation"
)

type fakeTeamProvider struct {
	teams map[string]*models.Team
}

func (f *fakeTeamProvider) TopTeams(ctx context.Context, limit int) ([]*models.Team, error) {
	var out []*models.Team
	for _, team := range f.teams {
		out = append(out, team)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTeamProvider) GetTeam(ctx context.Context, name string) (*models.Team, error) {
	team, ok := f.teams[name]
	if !ok {
		return nil, models.ErrNotFound
	}
	return team, nil
}

func (f *fakeTeamProvider) RebuildRatings(ctx context.Context) ([]rating.Entry, error) {
	var entries []rating.Entry
	for _, team := range f.teams {
		entries = append(entries, rating.Entry{Name: team.Name, Rating: team.Rating})
	}
	return entries, nil
}

type fakeSimRunner struct {
	sims     map[uuid.UUID]*models.Simulation
	runCalls int
}

func newFakeSimRunner() *fakeSimRunner {
	return &fakeSimRunner{sims: make(map[uuid.UUID]*models.Simulation)}
}

func (f *fakeSimRunner) RunSimulation(ctx context.Context, req service.SimulationRequest, progress service.ProgressFunc) (*models.Simulation, error) {
	f.runCalls++
	sim := &models.Simulation{
		ID:         uuid.New(),
		Status:     models.SimulationStatusCompleted,
		TeamCount:  req.TeamCount,
		TrialCount: req.TrialCount,
		BestOf:     req.BestOf,
		Results:    json.RawMessage(`[]`),
	}
	if progress != nil {
		half := req.TrialCount / 2
		progress(service.ProgressUpdate{SimulationID: sim.ID, Completed: half, Total: req.TrialCount})
		progress(service.ProgressUpdate{SimulationID: sim.ID, Completed: req.TrialCount, Total: req.TrialCount})
	}
	f.sims[sim.ID] = sim
	return sim, nil
}

func (f *fakeSimRunner) GetSimulation(ctx context.Context, id uuid.UUID) (*models.Simulation, error) {
	sim, ok := f.sims[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return sim, nil
}

func (f *fakeSimRunner) ListRecent(ctx context.Context, limit int) ([]*models.Simulation, error) {
	var out []*models.Simulation
	for _, sim := range f.sims {
		out = append(out, sim)
	}
	return out, nil
}

func (f *fakeSimRunner) DeleteSimulation(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.sims[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.sims, id)
	return nil
}

type fakeValidationRunner struct{}

func (f *fakeValidationRunner) ValidateEvents(ctx context.Context, events []validation.Event) (*validation.BatchResult, error) {
	return &validation.BatchResult{Skipped: len(events)}, nil
}

func newTestServer(sims *fakeSimRunner) *Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	teams := &fakeTeamProvider{teams: map[string]*models.Team{
		"Sentinels": {Name: "Sentinels", Rating: 1700},
		"Fnatic":    {Name: "Fnatic", Rating: 1650},
	}}
	return NewServer(0, teams, sims, &fakeValidationRunner{}, time.Minute, logger)
}

func TestListTeams(t *testing.T) {
	server := newTestServer(newFakeSimRunner())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teams", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var teams []models.Team
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &teams))
	assert.Len(t, teams, 2)
}

func TestGetTeamNotFound(t *testing.T) {
	server := newTestServer(newFakeSimRunner())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teams/Nobody", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunSimulation(t *testing.T) {
	sims := newFakeSimRunner()
	server := newTestServer(sims)

	body := `{"team_count":4,"trial_count":100,"best_of":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var sim models.Simulation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sim))
	assert.Equal(t, models.SimulationStatusCompleted, sim.Status)
	assert.Equal(t, 4, sim.TeamCount)
}

func TestRunSimulationRejectsBadRequest(t *testing.T) {
	server := newTestServer(newFakeSimRunner())

	tests := []struct {
		name string
		body string
	}{
		{name: "even best_of", body: `{"team_count":4,"trial_count":100,"best_of":2}`},
		{name: "zero trials", body: `{"team_count":4,"trial_count":0,"best_of":3}`},
		{name: "one team", body: `{"team_count":1,"trial_count":100,"best_of":3}`},
		{name: "negative sigma", body: `{"team_count":4,"trial_count":100,"best_of":3,"performance_sigma":-1}`},
		{name: "malformed json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			server.Router().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSeededSimulationServedFromCache(t *testing.T) {
	sims := newFakeSimRunner()
	server := newTestServer(sims)

	body := `{"team_count":4,"trial_count":100,"best_of":3,"seed":42}`

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", strings.NewReader(body))
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)
		require.Contains(t, []int{http.StatusOK, http.StatusCreated}, rec.Code)
	}

	assert.Equal(t, 1, sims.runCalls)
}

func TestGetAndDeleteSimulation(t *testing.T) {
	sims := newFakeSimRunner()
	server := newTestServer(sims)

	sim, err := sims.RunSimulation(context.Background(), service.SimulationRequest{TeamCount: 4, TrialCount: 10, BestOf: 3}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/simulations/"+sim.ID.String(), nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/simulations/"+sim.ID.String(), nil)
	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/simulations/"+sim.ID.String(), nil)
	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSimulationInvalidID(t *testing.T) {
	server := newTestServer(newFakeSimRunner())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/simulations/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunValidationRequiresEvents(t *testing.T) {
	server := newTestServer(newFakeSimRunner())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validations", bytes.NewReader([]byte(`{"events":[]}`)))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"events":[{"name":"Masters","actual_winner":"Sentinels"}]}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/validations", strings.NewReader(body))
	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSimulationStream(t *testing.T) {
	server := newTestServer(newFakeSimRunner())
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/simulate"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(service.SimulationRequest{
		TeamCount:  4,
		TrialCount: 100,
		BestOf:     3,
	}))

	var progressFrames int
	for {
		var msg streamMessage
		require.NoError(t, conn.ReadJSON(&msg))

		switch msg.Type {
		case "progress":
			progressFrames++
			require.NotNil(t, msg.Progress)
			assert.Equal(t, 100, msg.Progress.Total)
		case "result":
			assert.GreaterOrEqual(t, progressFrames, 1)
			require.NotNil(t, msg.Result)
			return
		case "error":
			t.Fatalf("unexpected error frame: %s", msg.Error)
		}
	}
}

func TestSimulationStreamRejectsInvalidRequest(t *testing.T) {
	server := newTestServer(newFakeSimRunner())
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/simulate"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(service.SimulationRequest{
		TeamCount:  4,
		TrialCount: 100,
		BestOf:     2,
	}))

	var msg streamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "best_of")
}
