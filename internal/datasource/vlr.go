package datasource

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/models"
)

// VLRClient scrapes team rankings and match results from ranking pages
// shaped like vlr.gg. Selectors target the table layout those pages use.
type VLRClient struct {
	httpClient  *RateLimitedHTTPClient
	rankingsURL string
	matchesURL  string
	enabled     bool
	logger      *logrus.Logger
}

const vlrSourceName = "vlr"

// NewVLRClient creates a new ranking page client
func NewVLRClient(httpClient *RateLimitedHTTPClient, rankingsURL, matchesURL string, enabled bool, logger *logrus.Logger) *VLRClient {
	return &VLRClient{
		httpClient:  httpClient,
		rankingsURL: rankingsURL,
		matchesURL:  matchesURL,
		enabled:     enabled,
		logger:      logger,
	}
}

// Name returns the data source name
func (c *VLRClient) Name() string {
	return vlrSourceName
}

// IsEnabled returns whether this source is enabled
func (c *VLRClient) IsEnabled() bool {
	return c.enabled
}

// FetchRankings retrieves the current team rankings from the rankings page
func (c *VLRClient) FetchRankings(ctx context.Context) ([]models.Team, error) {
	doc, err := c.fetch(ctx, c.rankingsURL)
	if err != nil {
		return nil, err
	}
	return c.parseRankings(doc)
}

// FetchMatches retrieves historical match results from the results page
func (c *VLRClient) FetchMatches(ctx context.Context) ([]models.MatchRecord, error) {
	doc, err := c.fetch(ctx, c.matchesURL)
	if err != nil {
		return nil, err
	}
	return c.parseMatches(doc)
}

func (c *VLRClient) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, NewDataSourceError(vlrSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewDataSourceError(vlrSourceName, ErrCodeRateLimitExceeded, "rate limited by provider", ErrRateLimitExceeded)
	}
	if resp.StatusCode >= 500 {
		return nil, NewDataSourceError(vlrSourceName, ErrCodeServerError, fmt.Sprintf("server returned %d", resp.StatusCode), ErrServerError)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewDataSourceError(vlrSourceName, ErrCodeNotFound, fmt.Sprintf("unexpected status %d", resp.StatusCode), ErrNotFound)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, NewDataSourceError(vlrSourceName, ErrCodeInvalidData, "failed to parse HTML", err)
	}
	return doc, nil
}

// parseRankings extracts teams from rows shaped like
//
//	<tr class="rank-item"><td class="rank-item-team">Name</td>
//	<td class="rank-item-region">EMEA</td><td class="rank-item-rating">1620</td></tr>
func (c *VLRClient) parseRankings(doc *goquery.Document) ([]models.Team, error) {
	var teams []models.Team

	doc.Find("tr.rank-item").Each(func(i int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find(".rank-item-team").First().Text())
		if name == "" {
			return
		}

		team := models.Team{Name: name}

		if region := strings.TrimSpace(s.Find(".rank-item-region").First().Text()); region != "" {
			team.Region = &region
		}

		ratingText := strings.TrimSpace(s.Find(".rank-item-rating").First().Text())
		if rating, err := strconv.ParseFloat(ratingText, 64); err == nil {
			team.Rating = rating
		} else {
			c.logger.WithFields(logrus.Fields{
				"team":   name,
				"rating": ratingText,
			}).Debug("Skipping unparseable rating")
		}

		teams = append(teams, team)
	})

	if len(teams) == 0 {
		return nil, NewDataSourceError(vlrSourceName, ErrCodeInvalidData, "no ranked teams found in page", ErrInvalidData)
	}
	return teams, nil
}

// parseMatches extracts match records from rows shaped like
//
//	<tr class="match-item"><td class="match-date">2024-03-22</td>
//	<td class="match-event">Masters Madrid</td><td class="match-round">Grand Final</td>
//	<td class="match-team-a">Sentinels</td><td class="match-score">3:1</td>
//	<td class="match-team-b">Gen.G</td></tr>
func (c *VLRClient) parseMatches(doc *goquery.Document) ([]models.MatchRecord, error) {
	var matches []models.MatchRecord
	skipped := 0

	doc.Find("tr.match-item").Each(func(i int, s *goquery.Selection) {
		teamA := strings.TrimSpace(s.Find(".match-team-a").First().Text())
		teamB := strings.TrimSpace(s.Find(".match-team-b").First().Text())
		score := strings.TrimSpace(s.Find(".match-score").First().Text())

		if teamA == "" || teamB == "" {
			skipped++
			return
		}

		mapsA, mapsB, err := parseScore(score)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"team_a": teamA,
				"team_b": teamB,
				"score":  score,
			}).Debug("Skipping match with unparseable score")
			skipped++
			return
		}

		record := models.MatchRecord{
			TeamA:    teamA,
			TeamB:    teamB,
			MapsWonA: mapsA,
			MapsWonB: mapsB,
			Event:    strings.TrimSpace(s.Find(".match-event").First().Text()),
			Round:    strings.TrimSpace(s.Find(".match-round").First().Text()),
		}

		dateText := strings.TrimSpace(s.Find(".match-date").First().Text())
		if playedAt, err := time.Parse("2006-01-02", dateText); err == nil {
			record.PlayedAt = &playedAt
		}

		matches = append(matches, record)
	})

	if skipped > 0 {
		c.logger.WithField("skipped", skipped).Warn("Skipped unparseable match rows")
	}
	if len(matches) == 0 {
		return nil, NewDataSourceError(vlrSourceName, ErrCodeInvalidData, "no match results found in page", ErrInvalidData)
	}
	return matches, nil
}

// parseScore splits a "2:1" style map score into its two sides
func parseScore(score string) (int, int, error) {
	parts := strings.Split(score, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed score %q", score)
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed score %q: %w", score, err)
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed score %q: %w", score, err)
	}
	if a < 0 || b < 0 {
		return 0, 0, fmt.Errorf("negative map count in score %q", score)
	}
	return a, b, nil
}
