package pareto

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewinds-ai/evoengine-go/internal/constants"
	"github.com/tradewinds-ai/evoengine-go/internal/types"
	"github.com/tradewinds-ai/evoengine-go/pkg/engine"
	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
	"github.com/tradewinds-ai/evoengine-go/pkg/oracle"
)

var testObjectives = []Objective{
	{Name: "return", Direction: Maximize},
	{Name: "risk", Direction: Minimize},
}

func scoredGenome(t *testing.T, x float64, objectives map[string]float64) *genome.Genome {
	t.Helper()
	g, err := genome.New([]genome.Chromosome{
		{
			ID:   "perf",
			Kind: genome.ChromosomePerformance,
			Genes: []genome.Gene{
				{ID: "x", Kind: genome.GeneNumeric, Value: x, Min: 0, Max: 1},
			},
			Expression: 1.0,
		},
	})
	require.NoError(t, err)
	return g.WithObjectives(objectives)
}

func TestObjectivesFromConfig(t *testing.T) {
	_, err := ObjectivesFromConfig([]types.ObjectiveConfig{
		{Name: "return", Direction: constants.DirectionMaximize},
	})
	assert.Error(t, err, "one objective is not multi-objective")

	_, err = ObjectivesFromConfig([]types.ObjectiveConfig{
		{Name: "return", Direction: constants.DirectionMaximize},
		{Name: "return", Direction: constants.DirectionMinimize},
	})
	assert.Error(t, err, "duplicate names")

	_, err = ObjectivesFromConfig([]types.ObjectiveConfig{
		{Name: "return", Direction: "sideways"},
		{Name: "risk", Direction: constants.DirectionMinimize},
	})
	assert.Error(t, err, "unknown direction")

	objectives, err := ObjectivesFromConfig([]types.ObjectiveConfig{
		{Name: "return", Direction: constants.DirectionMaximize},
		{Name: "risk", Direction: constants.DirectionMinimize},
	})
	require.NoError(t, err)
	require.Len(t, objectives, 2)
	assert.Equal(t, Maximize, objectives[0].Direction)
	assert.Equal(t, Minimize, objectives[1].Direction)
}

func TestDominates(t *testing.T) {
	a := scoredGenome(t, 0.5, map[string]float64{"return": 0.8, "risk": 0.2})
	b := scoredGenome(t, 0.5, map[string]float64{"return": 0.5, "risk": 0.5})
	c := scoredGenome(t, 0.5, map[string]float64{"return": 0.9, "risk": 0.9})
	equal := scoredGenome(t, 0.5, map[string]float64{"return": 0.8, "risk": 0.2})

	// a is better on both objectives
	dom, err := Dominates(a, b, testObjectives)
	require.NoError(t, err)
	assert.True(t, dom)

	dom, err = Dominates(b, a, testObjectives)
	require.NoError(t, err)
	assert.False(t, dom)

	// a and c trade off: higher return against higher risk
	dom, err = Dominates(a, c, testObjectives)
	require.NoError(t, err)
	assert.False(t, dom)
	dom, err = Dominates(c, a, testObjectives)
	require.NoError(t, err)
	assert.False(t, dom)

	// equal vectors dominate neither way
	dom, err = Dominates(a, equal, testObjectives)
	require.NoError(t, err)
	assert.False(t, dom)
	dom, err = Dominates(a, a, testObjectives)
	require.NoError(t, err)
	assert.False(t, dom, "dominance is irreflexive")
}

func TestDominatesIsTransitive(t *testing.T) {
	a := scoredGenome(t, 0.5, map[string]float64{"return": 0.9, "risk": 0.1})
	b := scoredGenome(t, 0.5, map[string]float64{"return": 0.6, "risk": 0.4})
	c := scoredGenome(t, 0.5, map[string]float64{"return": 0.3, "risk": 0.7})

	ab, err := Dominates(a, b, testObjectives)
	require.NoError(t, err)
	bc, err := Dominates(b, c, testObjectives)
	require.NoError(t, err)
	ac, err := Dominates(a, c, testObjectives)
	require.NoError(t, err)
	assert.True(t, ab && bc && ac)
}

func TestDominatesMissingObjective(t *testing.T) {
	a := scoredGenome(t, 0.5, map[string]float64{"return": 0.9})
	b := scoredGenome(t, 0.5, map[string]float64{"return": 0.5, "risk": 0.5})

	_, err := Dominates(a, b, testObjectives)
	assert.Error(t, err)
}

func TestSortFrontsPartitionsPopulation(t *testing.T) {
	population := []*genome.Genome{
		scoredGenome(t, 0.1, map[string]float64{"return": 0.1, "risk": 0.01}),
		scoredGenome(t, 0.9, map[string]float64{"return": 0.9, "risk": 0.81}),
		scoredGenome(t, 0.5, map[string]float64{"return": 0.5, "risk": 0.25}),
		// dominated: lower return and higher risk than the 0.5 genome
		scoredGenome(t, 0.3, map[string]float64{"return": 0.3, "risk": 0.5}),
		// doubly dominated
		scoredGenome(t, 0.2, map[string]float64{"return": 0.1, "risk": 0.9}),
	}

	fronts, err := SortFronts(population, testObjectives)
	require.NoError(t, err)

	total := 0
	for _, front := range fronts {
		total += len(front)
	}
	assert.Equal(t, len(population), total, "fronts partition the population")

	require.Len(t, fronts[0], 3)
	ids := make(map[string]bool)
	for _, g := range fronts[0] {
		ids[g.ID] = true
	}
	assert.True(t, ids[population[0].ID])
	assert.True(t, ids[population[1].ID])
	assert.True(t, ids[population[2].ID])

	// No front-0 member dominates another
	for _, a := range fronts[0] {
		for _, b := range fronts[0] {
			dom, err := Dominates(a, b, testObjectives)
			require.NoError(t, err)
			assert.False(t, dom)
		}
	}

	// Later fronts are dominated by some earlier-front member
	for fi := 1; fi < len(fronts); fi++ {
		for _, g := range fronts[fi] {
			dominated := false
			for _, earlier := range fronts[fi-1] {
				dom, err := Dominates(earlier, g, testObjectives)
				require.NoError(t, err)
				if dom {
					dominated = true
					break
				}
			}
			assert.True(t, dominated, "genome in front %d must be dominated by front %d", fi, fi-1)
		}
	}
}

func TestCrowdingDistances(t *testing.T) {
	lo := scoredGenome(t, 0.0, map[string]float64{"return": 0.0, "risk": 0.0})
	mid := scoredGenome(t, 0.5, map[string]float64{"return": 0.5, "risk": 0.25})
	near := scoredGenome(t, 0.55, map[string]float64{"return": 0.55, "risk": 0.3})
	hi := scoredGenome(t, 1.0, map[string]float64{"return": 1.0, "risk": 1.0})

	distances, err := CrowdingDistances([]*genome.Genome{mid, lo, hi, near}, testObjectives)
	require.NoError(t, err)

	assert.True(t, math.IsInf(distances[lo.ID], 1), "boundary genome gets infinite distance")
	assert.True(t, math.IsInf(distances[hi.ID], 1))
	assert.False(t, math.IsInf(distances[mid.ID], 1))
	assert.False(t, math.IsInf(distances[near.ID], 1))
	assert.Greater(t, distances[mid.ID], 0.0)
}

func TestCrowdingDistancesTinyFront(t *testing.T) {
	only := scoredGenome(t, 0.5, map[string]float64{"return": 0.5, "risk": 0.25})

	distances, err := CrowdingDistances([]*genome.Genome{only}, testObjectives)
	require.NoError(t, err)
	assert.True(t, math.IsInf(distances[only.ID], 1))
}

func paretoConfig() types.EvolutionConfig {
	return types.EvolutionConfig{
		PopulationSize:   24,
		MaxGenerations:   30,
		CrossoverMethod:  constants.CrossoverBlend,
		MutationRate:     0.2,
		MutationStrength: 0.1,
		Seed:             42,
		ParallelWorkers:  4,
	}
}

func paretoTemplate(t *testing.T) *genome.Genome {
	t.Helper()
	g, err := genome.New([]genome.Chromosome{
		{
			ID:   "perf",
			Kind: genome.ChromosomePerformance,
			Genes: []genome.Gene{
				{ID: "x", Kind: genome.GeneNumeric, Value: 0.5, Min: 0, Max: 1},
			},
			Expression: 1.0,
		},
	})
	require.NoError(t, err)
	return g
}

func TestEngineNewValidates(t *testing.T) {
	_, err := New(paretoConfig(), testObjectives[:1], paretoTemplate(t))
	assert.Error(t, err, "needs at least 2 objectives")

	cfg := paretoConfig()
	cfg.PopulationSize = 0
	_, err = New(cfg, testObjectives, paretoTemplate(t))
	assert.Error(t, err)

	_, err = New(paretoConfig(), testObjectives, paretoTemplate(t))
	assert.NoError(t, err)
}

func TestEngineLifecycleGuards(t *testing.T) {
	eng, err := New(paretoConfig(), testObjectives, paretoTemplate(t))
	require.NoError(t, err)

	bench := oracle.TradeoffOracle{GeneID: "x"}

	var notReady *engine.NotReadyError
	err = eng.Score(context.Background(), bench)
	assert.ErrorAs(t, err, &notReady)

	err = eng.EvolveGeneration()
	assert.ErrorAs(t, err, &notReady)

	require.NoError(t, eng.InitializePopulation())
	err = eng.EvolveGeneration()
	assert.ErrorAs(t, err, &notReady, "unscored population cannot evolve")
}

func TestEngineScorePopulatesFrontStats(t *testing.T) {
	eng, err := New(paretoConfig(), testObjectives, paretoTemplate(t))
	require.NoError(t, err)
	require.NoError(t, eng.InitializePopulation())
	require.NoError(t, eng.Score(context.Background(), oracle.TradeoffOracle{GeneID: "x"}))

	stats := eng.History()[0]
	assert.Positive(t, stats.FrontZeroSize)
	assert.NotEmpty(t, stats.BestGenomeID)
	assert.Contains(t, stats.ObjectiveMean, "return")
	assert.Contains(t, stats.ObjectiveStdDev, "risk")

	// Trait statistics are recorded alongside the objective summaries
	require.Contains(t, stats.GeneMean, "x")
	require.Contains(t, stats.GeneStdDev, "x")
	assert.GreaterOrEqual(t, stats.GeneMean["x"], 0.0)
	assert.LessOrEqual(t, stats.GeneMean["x"], 1.0)
	assert.Positive(t, stats.GeneStdDev["x"], "a random generation has spread")

	// On the return/risk curve every genome is non-dominated
	assert.Equal(t, len(eng.Population()), stats.FrontZeroSize)
}

func TestEngineRunKeepsFullPopulation(t *testing.T) {
	cfg := paretoConfig()
	eng, err := New(cfg, testObjectives, paretoTemplate(t))
	require.NoError(t, err)
	require.NoError(t, eng.InitializePopulation())

	require.NoError(t, eng.Run(context.Background(), 5, oracle.TradeoffOracle{GeneID: "x"}))
	assert.Equal(t, 5, eng.Generation())
	assert.Len(t, eng.Population(), cfg.PopulationSize)
	assert.Len(t, eng.History(), 6)
}

func TestEngineFrontSpansTradeoffCurve(t *testing.T) {
	cfg := paretoConfig()
	eng, err := New(cfg, testObjectives, paretoTemplate(t))
	require.NoError(t, err)
	require.NoError(t, eng.InitializePopulation())

	require.NoError(t, eng.Run(context.Background(), cfg.MaxGenerations, oracle.TradeoffOracle{GeneID: "x"}))

	front, err := eng.FrontZero()
	require.NoError(t, err)
	require.NotEmpty(t, front)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, g := range front {
		x, ok := g.GeneValue("x")
		require.True(t, ok)
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	// The front must keep both low-risk and high-return extremes instead
	// of collapsing to one end of the curve
	assert.Less(t, lo, 0.25)
	assert.Greater(t, hi, 0.75)
}

func TestEngineRunIsSeedDeterministic(t *testing.T) {
	run := func() []float64 {
		eng, err := New(paretoConfig(), testObjectives, paretoTemplate(t))
		require.NoError(t, err)
		require.NoError(t, eng.InitializePopulation())
		require.NoError(t, eng.Run(context.Background(), 5, oracle.TradeoffOracle{GeneID: "x"}))

		values := make([]float64, 0, len(eng.Population()))
		for _, g := range eng.Population() {
			x, _ := g.GeneValue("x")
			values = append(values, x)
		}
		return values
	}

	assert.Equal(t, run(), run())
}

func TestHypervolumeProxy(t *testing.T) {
	items := []*ranked{
		{vector: []float64{0.0, -0.0}},
		{vector: []float64{1.0, -1.0}},
	}
	assert.InDelta(t, 1.0, hypervolumeProxy(items), 1e-9)

	assert.Equal(t, 0.0, hypervolumeProxy(items[:1]), "degenerate front has no volume")
}
