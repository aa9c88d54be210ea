package datasource

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bracket-oracle/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testHTTPClient(t *testing.T) *RateLimitedHTTPClient {
	t.Helper()
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = time.Millisecond
	return NewRateLimitedHTTPClient(cfg, testLogger())
}

const rankingsHTML = `
<html><body><table>
<tr class="rank-item">
  <td class="rank-item-team">Sentinels</td>
  <td class="rank-item-region">Americas</td>
  <td class="rank-item-rating">1702</td>
</tr>
<tr class="rank-item">
  <td class="rank-item-team">Fnatic</td>
  <td class="rank-item-region">EMEA</td>
  <td class="rank-item-rating">1688</td>
</tr>
<tr class="rank-item">
  <td class="rank-item-team">Paper Rex</td>
  <td class="rank-item-region">Pacific</td>
  <td class="rank-item-rating">n/a</td>
</tr>
</table></body></html>`

const matchesHTML = `
<html><body><table>
<tr class="match-item">
  <td class="match-date">2024-03-22</td>
  <td class="match-event">Masters Madrid</td>
  <td class="match-round">Grand Final</td>
  <td class="match-team-a">Sentinels</td>
  <td class="match-score">3:1</td>
  <td class="match-team-b">Gen.G</td>
</tr>
<tr class="match-item">
  <td class="match-date">2024-03-21</td>
  <td class="match-event">Masters Madrid</td>
  <td class="match-round">Semifinal</td>
  <td class="match-team-a">Gen.G</td>
  <td class="match-score">2:0</td>
  <td class="match-team-b">Paper Rex</td>
</tr>
<tr class="match-item">
  <td class="match-date">2024-03-20</td>
  <td class="match-event">Masters Madrid</td>
  <td class="match-round">Semifinal</td>
  <td class="match-team-a">Sentinels</td>
  <td class="match-score">forfeit</td>
  <td class="match-team-b">Fnatic</td>
</tr>
</table></body></html>`

func TestVLRClientFetchRankings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rankingsHTML))
	}))
	defer server.Close()

	client := NewVLRClient(testHTTPClient(t), server.URL, server.URL, true, testLogger())

	teams, err := client.FetchRankings(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 3)

	assert.Equal(t, "Sentinels", teams[0].Name)
	assert.Equal(t, 1702.0, teams[0].Rating)
	require.NotNil(t, teams[0].Region)
	assert.Equal(t, "Americas", *teams[0].Region)

	// Unparseable rating keeps the team but leaves the rating zero
	assert.Equal(t, "Paper Rex", teams[2].Name)
	assert.Equal(t, 0.0, teams[2].Rating)
}

func TestVLRClientFetchMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(matchesHTML))
	}))
	defer server.Close()

	client := NewVLRClient(testHTTPClient(t), server.URL, server.URL, true, testLogger())

	matches, err := client.FetchMatches(context.Background())
	require.NoError(t, err)

	// The forfeit row has no parseable score and is dropped
	require.Len(t, matches, 2)

	first := matches[0]
	assert.Equal(t, "Sentinels", first.TeamA)
	assert.Equal(t, "Gen.G", first.TeamB)
	assert.Equal(t, 3, first.MapsWonA)
	assert.Equal(t, 1, first.MapsWonB)
	assert.Equal(t, "Masters Madrid", first.Event)
	assert.Equal(t, "Grand Final", first.Round)
	require.NotNil(t, first.PlayedAt)
	assert.Equal(t, 2024, first.PlayedAt.Year())
}

func TestVLRClientEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer server.Close()

	client := NewVLRClient(testHTTPClient(t), server.URL, server.URL, true, testLogger())

	_, err := client.FetchRankings(context.Background())
	require.Error(t, err)

	var dsErr DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, ErrCodeInvalidData, dsErr.Code)
}

func TestVLRClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewVLRClient(testHTTPClient(t), server.URL, server.URL, true, testLogger())

	_, err := client.FetchRankings(context.Background())
	require.Error(t, err)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		input   string
		a, b    int
		wantErr bool
	}{
		{"2:1", 2, 1, false},
		{"3:0", 3, 0, false},
		{" 2 : 1 ", 2, 1, false},
		{"0:0", 0, 0, false},
		{"forfeit", 0, 0, true},
		{"2:1:0", 0, 0, true},
		{"-1:2", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		a, b, err := parseScore(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.a, a)
		assert.Equal(t, tt.b, b)
	}
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = time.Millisecond
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, testLogger())

	ctx := context.Background()
	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	_, err = client.Get(ctx, server.URL)
	require.Error(t, err)

	// Breaker is now open and refuses requests without touching the server
	_, err = client.Get(ctx, server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")

	region := "EMEA"
	doc := corpusDocument{
		Teams: []models.Team{
			{Name: "Fnatic", Rating: 1650, Region: &region},
		},
		Matches: []models.MatchRecord{
			{TeamA: "Fnatic", TeamB: "Team Liquid", MapsWonA: 2, MapsWonB: 1, Event: "Champions"},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	source := NewFileSource(path)
	assert.Equal(t, "file", source.Name())
	assert.True(t, source.IsEnabled())

	teams, err := source.FetchRankings(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Fnatic", teams[0].Name)

	matches, err := source.FetchMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].MapsWonA)
}

func TestFileSourceMissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "nope.json"))

	_, err := source.FetchMatches(context.Background())
	require.Error(t, err)

	var dsErr DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, ErrCodeNotFound, dsErr.Code)
}
