package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewinds-ai/evoengine-go/internal/types"
)

func TestRenderSingleObjective(t *testing.T) {
	line := Render(types.GenerationStats{
		Generation:     12,
		PopulationSize: 50,
		MaxFitness:     0.9731,
		MeanFitness:    0.8123,
		StdDevFitness:  0.0456,
		BestGenomeID:   "4fd81c2a-93aa-4cf1-8a2e-000000000000",
	})

	assert.Contains(t, line, "gen 12")
	assert.Contains(t, line, "pop 50")
	assert.Contains(t, line, "best 0.9731")
	assert.Contains(t, line, "mean 0.8123±0.0456")
	assert.Contains(t, line, "leader 4fd81c2a")
	assert.NotContains(t, line, "front0")
}

func TestRenderMultiObjective(t *testing.T) {
	line := Render(types.GenerationStats{
		Generation:       3,
		PopulationSize:   24,
		FrontZeroSize:    9,
		HypervolumeProxy: 0.4321,
		ObjectiveMean:    map[string]float64{"return": 0.5, "risk": 0.3},
		ObjectiveStdDev:  map[string]float64{"return": 0.1, "risk": 0.05},
	})

	assert.Contains(t, line, "front0 9")
	assert.Contains(t, line, "hv 0.4321")
	assert.Contains(t, line, "return 0.5000±0.1000")
	assert.Contains(t, line, "risk 0.3000±0.0500")
	assert.NotContains(t, line, "best")
}

func TestRenderHumanizesLargeCounts(t *testing.T) {
	line := Render(types.GenerationStats{
		Generation:     1200,
		PopulationSize: 10000,
	})
	assert.Contains(t, line, "gen 1,200")
	assert.Contains(t, line, "pop 10,000")
}

func TestWriteConvergenceChart(t *testing.T) {
	history := []types.GenerationStats{
		{Generation: 0, MaxFitness: 0.5, MeanFitness: 0.3},
		{Generation: 1, MaxFitness: 0.7, MeanFitness: 0.5},
		{Generation: 2, MaxFitness: 0.9, MeanFitness: 0.7},
	}

	path := filepath.Join(t.TempDir(), "charts", "convergence.html")
	require.NoError(t, WriteConvergenceChart(history, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Fitness convergence")
}

func TestWriteConvergenceChartEmptyHistory(t *testing.T) {
	err := WriteConvergenceChart(nil, filepath.Join(t.TempDir(), "convergence.html"))
	assert.Error(t, err)
}

func TestWriteFrontChart(t *testing.T) {
	points := []FrontPoint{
		{X: 0.1, Y: 0.01},
		{X: 0.5, Y: 0.25},
		{X: 0.9, Y: 0.81},
	}

	path := filepath.Join(t.TempDir(), "front.html")
	require.NoError(t, WriteFrontChart(points, "return", "risk", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Pareto front")
}

func TestWriteFrontChartEmptyFront(t *testing.T) {
	err := WriteFrontChart(nil, "return", "risk", filepath.Join(t.TempDir(), "front.html"))
	assert.Error(t, err)
}
