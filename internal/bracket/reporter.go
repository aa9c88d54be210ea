package bracket

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// ImpliedOdds converts a championship percentage into decimal betting odds
// rounded to two places. Teams that never won a trial have no finite odds
// and report zero.
func ImpliedOdds(championshipPct float64) decimal.Decimal {
	if championshipPct <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(100.0 / championshipPct).Round(2)
}

// GenerateConsoleReport formats simulation results for terminal output
func GenerateConsoleReport(results []TeamResult, trialCount int) string {
	var builder strings.Builder
	bracketSize := len(results)

	builder.WriteString(fmt.Sprintf("Simulation Results (%d-Team Single Elimination, %d trials)\n", bracketSize, trialCount))
	builder.WriteString(strings.Repeat("=", 80) + "\n")

	builder.WriteString(fmt.Sprintf("%-6s%-22s%-6s%-8s%-10s", "Rank", "Team", "Seed", "ELO", "Win %"))
	if bracketSize >= 8 {
		builder.WriteString(fmt.Sprintf("%-10s", "QF %"))
	}
	if bracketSize >= 4 {
		builder.WriteString(fmt.Sprintf("%-10s", "SF %"))
	}
	builder.WriteString(fmt.Sprintf("%-10s%-8s\n", "Finals %", "Odds"))
	builder.WriteString(strings.Repeat("-", 80) + "\n")

	for i, result := range results {
		builder.WriteString(fmt.Sprintf("%-6d%-22s#%-5d%-8.0f%-10s",
			i+1, result.Name, result.Seed, result.Rating, fmt.Sprintf("%.2f%%", result.ChampionshipPct)))
		if bracketSize >= 8 {
			builder.WriteString(fmt.Sprintf("%-10s", fmt.Sprintf("%.2f%%", result.QuarterfinalsPct)))
		}
		if bracketSize >= 4 {
			builder.WriteString(fmt.Sprintf("%-10s", fmt.Sprintf("%.2f%%", result.SemifinalsPct)))
		}
		odds := "-"
		if implied := ImpliedOdds(result.ChampionshipPct); !implied.IsZero() {
			odds = implied.String()
		}
		builder.WriteString(fmt.Sprintf("%-10s%-8s\n", fmt.Sprintf("%.2f%%", result.FinalsPct), odds))
	}

	builder.WriteString(strings.Repeat("=", 80) + "\n")
	if len(results) > 0 {
		builder.WriteString(fmt.Sprintf("Most likely champion: %s (%.1f%%)\n",
			results[0].Name, results[0].ChampionshipPct))
	}
	return builder.String()
}

// resultsExport is the JSON shape written by ExportToJSON
type resultsExport struct {
	TournamentFormat string       `json:"tournament_format"`
	TeamCount        int          `json:"team_count"`
	TrialCount       int          `json:"trial_count"`
	Teams            []TeamResult `json:"teams"`
}

// ExportToJSON writes simulation results to a JSON file
func ExportToJSON(results []TeamResult, trialCount int, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	export := resultsExport{
		TournamentFormat: "Single Elimination",
		TeamCount:        len(results),
		TrialCount:       trialCount,
		Teams:            results,
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}
