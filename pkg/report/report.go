package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tradewinds-ai/evoengine-go/internal/types"
)

// Render formats one generation's summary as a single line suitable for
// terminal output
func Render(stats types.GenerationStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "gen %s | pop %s", humanize.Comma(int64(stats.Generation)), humanize.Comma(int64(stats.PopulationSize)))

	if stats.FrontZeroSize > 0 {
		fmt.Fprintf(&b, " | front0 %d | hv %.4f", stats.FrontZeroSize, stats.HypervolumeProxy)
		for _, name := range sortedKeys(stats.ObjectiveMean) {
			fmt.Fprintf(&b, " | %s %.4f±%.4f", name, stats.ObjectiveMean[name], stats.ObjectiveStdDev[name])
		}
	} else {
		fmt.Fprintf(&b, " | best %.4f | mean %.4f±%.4f", stats.MaxFitness, stats.MeanFitness, stats.StdDevFitness)
	}

	if stats.BestGenomeID != "" {
		id := stats.BestGenomeID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(&b, " | leader %s", id)
	}

	return b.String()
}

// WriteConvergenceChart renders best/mean fitness per generation as an
// HTML line chart
func WriteConvergenceChart(history []types.GenerationStats, path string) error {
	if len(history) == 0 {
		return fmt.Errorf("history is empty, nothing to chart")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Fitness convergence",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "generation",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "fitness",
		}),
	)

	axis := make([]string, len(history))
	best := make([]opts.LineData, len(history))
	mean := make([]opts.LineData, len(history))
	for i, stats := range history {
		axis[i] = fmt.Sprintf("%d", stats.Generation)
		best[i] = opts.LineData{Value: stats.MaxFitness}
		mean[i] = opts.LineData{Value: stats.MeanFitness}
	}

	line.SetXAxis(axis).
		AddSeries("best", best).
		AddSeries("mean", mean)

	return render(line, path)
}

// FrontPoint is one genome's position in two-objective space
type FrontPoint struct {
	X float64
	Y float64
}

// WriteFrontChart renders a two-objective front as an HTML scatter plot
func WriteFrontChart(points []FrontPoint, xName, yName, path string) error {
	if len(points) == 0 {
		return fmt.Errorf("front is empty, nothing to chart")
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Pareto front",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: xName,
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: yName,
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
	)

	data := make([]opts.ScatterData, len(points))
	for i, p := range points {
		data[i] = opts.ScatterData{
			Value:      []float64{p.X, p.Y},
			Symbol:     "circle",
			SymbolSize: 8,
		}
	}

	scatter.AddSeries("front 0", data)

	return render(scatter, path)
}

type renderer interface {
	Render(w io.Writer) error
}

func render(chart renderer, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return chart.Render(f)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
