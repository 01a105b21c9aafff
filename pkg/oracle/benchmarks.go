package oracle

import (
	"context"
	"fmt"
	"math"

	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
)

// PeakOracle is a synthetic single-objective benchmark: fitness is
// 1 - |x - target| for the named numeric gene. The optimum sits at the
// target with fitness 1.
type PeakOracle struct {
	GeneID string
	Target float64
}

func (o PeakOracle) Evaluate(_ context.Context, g *genome.Genome) (float64, error) {
	x, ok := g.GeneValue(o.GeneID)
	if !ok {
		return 0, fmt.Errorf("genome %s has no numeric gene %q", g.ID, o.GeneID)
	}
	return 1 - math.Abs(x-o.Target), nil
}

// TradeoffOracle is a synthetic two-objective benchmark over a single gene
// x: "return" = x is maximized while "risk" = x^2 is minimized. The
// objectives pull in opposite directions everywhere, so every x is
// Pareto-optimal and front zero spans the whole [min, max] range. A risk
// term minimized at the same point return peaks would collapse the front
// to one genome and leave front-coverage checks vacuous; DESIGN.md records
// the full rationale for this choice of curve.
type TradeoffOracle struct {
	GeneID string
}

// ObjectiveReturn and ObjectiveRisk name the two objectives produced by
// TradeoffOracle.
const (
	ObjectiveReturn = "return"
	ObjectiveRisk   = "risk"
)

func (o TradeoffOracle) Evaluate(_ context.Context, g *genome.Genome) (map[string]float64, error) {
	x, ok := g.GeneValue(o.GeneID)
	if !ok {
		return nil, fmt.Errorf("genome %s has no numeric gene %q", g.ID, o.GeneID)
	}
	return map[string]float64{
		ObjectiveReturn: x,
		ObjectiveRisk:   x * x,
	}, nil
}
