package oracle

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
)

func singleGeneGenome(t *testing.T, x float64) *genome.Genome {
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
	return g
}

func TestPeakOracle(t *testing.T) {
	o := PeakOracle{GeneID: "x", Target: 0.3}
	ctx := context.Background()

	score, err := o.Evaluate(ctx, singleGeneGenome(t, 0.3))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)

	score, err = o.Evaluate(ctx, singleGeneGenome(t, 0.8))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)

	_, err = PeakOracle{GeneID: "missing", Target: 0.3}.Evaluate(ctx, singleGeneGenome(t, 0.5))
	assert.Error(t, err)
}

func TestTradeoffOracle(t *testing.T) {
	o := TradeoffOracle{GeneID: "x"}

	vec, err := o.Evaluate(context.Background(), singleGeneGenome(t, 0.5))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, vec[ObjectiveReturn], 1e-9)
	assert.InDelta(t, 0.25, vec[ObjectiveRisk], 1e-9)
}

func TestEvaluateBatchPreservesOrder(t *testing.T) {
	template := singleGeneGenome(t, 0.5)
	rng := rand.New(rand.NewSource(1))
	population := make([]*genome.Genome, 20)
	for i := range population {
		population[i] = template.Randomize(rng)
	}

	identity := Func(func(_ context.Context, g *genome.Genome) (float64, error) {
		x, _ := g.GeneValue("x")
		return x, nil
	})

	scores, err := EvaluateBatch(context.Background(), identity, population, 4)
	require.NoError(t, err)
	require.Len(t, scores, len(population))
	for i, g := range population {
		x, _ := g.GeneValue("x")
		assert.Equal(t, x, scores[i], "score %d belongs to genome %d", i, i)
	}
}

func TestEvaluateBatchSurfacesErrors(t *testing.T) {
	population := []*genome.Genome{
		singleGeneGenome(t, 0.1),
		singleGeneGenome(t, 0.2),
	}
	failing := errors.New("backtest blew up")

	var calls atomic.Int64
	o := Func(func(_ context.Context, g *genome.Genome) (float64, error) {
		calls.Add(1)
		if x, _ := g.GeneValue("x"); x > 0.15 {
			return 0, failing
		}
		return 1, nil
	})

	_, err := EvaluateBatch(context.Background(), o, population, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, failing)
	assert.Contains(t, err.Error(), population[1].ID)
	assert.Positive(t, calls.Load())
}

func TestEvaluateBatchHonorsCancellation(t *testing.T) {
	population := []*genome.Genome{singleGeneGenome(t, 0.1)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := Func(func(ctx context.Context, _ *genome.Genome) (float64, error) {
		return 0, ctx.Err()
	})

	_, err := EvaluateBatch(ctx, o, population, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateBatchMulti(t *testing.T) {
	population := []*genome.Genome{
		singleGeneGenome(t, 0.2),
		singleGeneGenome(t, 0.9),
	}

	vectors, err := EvaluateBatchMulti(context.Background(), TradeoffOracle{GeneID: "x"}, population, 2)
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.InDelta(t, 0.2, vectors[0][ObjectiveReturn], 1e-9)
	assert.InDelta(t, 0.81, vectors[1][ObjectiveRisk], 1e-9)
}

func TestEvaluateBatchClampsWorkerCount(t *testing.T) {
	population := []*genome.Genome{singleGeneGenome(t, 0.5)}

	score, err := EvaluateBatch(context.Background(), PeakOracle{GeneID: "x", Target: 0.5}, population, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score[0], 1e-9)
}
