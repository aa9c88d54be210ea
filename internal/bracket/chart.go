package bracket

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes an HTML bar chart of championship and finals
// probabilities, one bar pair per team in result order.
func RenderChart(results []TeamResult, trialCount int, w io.Writer) error {
	names := make([]string, 0, len(results))
	championship := make([]opts.BarData, 0, len(results))
	finals := make([]opts.BarData, 0, len(results))
	for _, result := range results {
		names = append(names, result.Name)
		championship = append(championship, opts.BarData{Value: result.ChampionshipPct})
		finals = append(finals, opts.BarData{Value: result.FinalsPct})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Championship Odds (%d-Team Single Elimination)", len(results)),
			Subtitle: fmt.Sprintf("%d trials", trialCount),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Probability (%)"}),
	)
	bar.SetXAxis(names).
		AddSeries("Championship", championship).
		AddSeries("Finals", finals)

	return bar.Render(w)
}

// ExportChart renders the probability chart to an HTML file
func ExportChart(results []TeamResult, trialCount int, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := RenderChart(results, trialCount, f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return f.Close()
}
