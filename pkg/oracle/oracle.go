package oracle

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
)

// Oracle scores a genome on a single scalar objective. From the engine's
// perspective it must be a pure function of the genome's gene values; any
// internal nondeterminism (a stochastic backtest, say) is the oracle's
// responsibility to average or seed.
type Oracle interface {
	Evaluate(ctx context.Context, g *genome.Genome) (float64, error)
}

// MultiOracle scores a genome on a named objective vector
type MultiOracle interface {
	Evaluate(ctx context.Context, g *genome.Genome) (map[string]float64, error)
}

// Func adapts a plain function to the Oracle interface
type Func func(ctx context.Context, g *genome.Genome) (float64, error)

func (f Func) Evaluate(ctx context.Context, g *genome.Genome) (float64, error) {
	return f(ctx, g)
}

// MultiFunc adapts a plain function to the MultiOracle interface
type MultiFunc func(ctx context.Context, g *genome.Genome) (map[string]float64, error)

func (f MultiFunc) Evaluate(ctx context.Context, g *genome.Genome) (map[string]float64, error) {
	return f(ctx, g)
}

// EvaluateBatch scores a population in parallel with at most workers
// concurrent evaluations. Each genome is an independent immutable value, so
// evaluations share no state. A failed evaluation aborts the pass and is
// surfaced to the caller; partial scores are discarded rather than papered
// over with zeros, which would corrupt later comparisons.
func EvaluateBatch(ctx context.Context, o Oracle, population []*genome.Genome, workers int) ([]float64, error) {
	if workers < 1 {
		workers = 1
	}

	scores := make([]float64, len(population))
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(workers)

	for i, g := range population {
		i, g := i, g
		p.Go(func(ctx context.Context) error {
			score, err := o.Evaluate(ctx, g)
			if err != nil {
				return fmt.Errorf("evaluating genome %s: %w", g.ID, err)
			}
			scores[i] = score
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// EvaluateBatchMulti is EvaluateBatch for objective vectors
func EvaluateBatchMulti(ctx context.Context, o MultiOracle, population []*genome.Genome, workers int) ([]map[string]float64, error) {
	if workers < 1 {
		workers = 1
	}

	scores := make([]map[string]float64, len(population))
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(workers)

	for i, g := range population {
		i, g := i, g
		p.Go(func(ctx context.Context) error {
			vec, err := o.Evaluate(ctx, g)
			if err != nil {
				return fmt.Errorf("evaluating genome %s: %w", g.ID, err)
			}
			scores[i] = vec
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
