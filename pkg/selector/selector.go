package selector

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/tradewinds-ai/evoengine-go/internal/constants"
	"github.com/tradewinds-ai/evoengine-go/pkg/breeder"
	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
)

// Strategy selects the parent-selection algorithm
type Strategy string

const (
	StrategyElite      Strategy = constants.SelectionElite
	StrategyTournament Strategy = constants.SelectionTournament
	StrategyRoulette   Strategy = constants.SelectionRoulette
	StrategyDiversity  Strategy = constants.SelectionDiversity
)

// Selector chooses parents from a scored population. Every call returns
// exactly k = max(2, ceil(P*eliteRatio)) genomes; a genome may appear more
// than once since parents can be drawn repeatedly.
type Selector struct {
	strategy       Strategy
	eliteRatio     float64
	tournamentSize int
}

// New creates a Selector for the given strategy
func New(strategy Strategy, eliteRatio float64, tournamentSize int) (*Selector, error) {
	switch strategy {
	case StrategyElite, StrategyTournament, StrategyRoulette, StrategyDiversity:
	default:
		return nil, fmt.Errorf("unknown selection strategy %q", strategy)
	}
	if eliteRatio <= 0 || eliteRatio > 1 {
		return nil, fmt.Errorf("elite ratio %v outside (0,1]", eliteRatio)
	}
	if tournamentSize < 2 {
		return nil, fmt.Errorf("tournament size %d must be at least 2", tournamentSize)
	}
	return &Selector{strategy: strategy, eliteRatio: eliteRatio, tournamentSize: tournamentSize}, nil
}

// PoolSize reports how many parents Select returns for a population of
// the given size
func (s *Selector) PoolSize(populationSize int) int {
	k := int(math.Ceil(float64(populationSize) * s.eliteRatio))
	if k < constants.MinParentPool {
		k = constants.MinParentPool
	}
	return k
}

// Select chooses the parent pool from a scored population
func (s *Selector) Select(population []*genome.Genome, rng *rand.Rand) ([]*genome.Genome, error) {
	if len(population) == 0 {
		return nil, fmt.Errorf("cannot select from an empty population")
	}

	k := s.PoolSize(len(population))

	switch s.strategy {
	case StrategyElite:
		return s.selectElite(population, k), nil
	case StrategyTournament:
		return s.selectTournament(population, k, rng), nil
	case StrategyRoulette:
		return s.selectRoulette(population, k, rng)
	case StrategyDiversity:
		return s.selectDiversity(population, k), nil
	}

	return nil, fmt.Errorf("unknown selection strategy %q", s.strategy)
}

// selectElite returns the top-k genomes by fitness; ties prefer the lower
// generation number so older, more-tested lineages survive
func (s *Selector) selectElite(population []*genome.Genome, k int) []*genome.Genome {
	ranked := make([]*genome.Genome, len(population))
	copy(ranked, population)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Fitness != ranked[j].Fitness {
			return ranked[i].Fitness > ranked[j].Fitness
		}
		return ranked[i].Generation < ranked[j].Generation
	})

	selected := make([]*genome.Genome, k)
	for i := 0; i < k; i++ {
		selected[i] = ranked[i%len(ranked)]
	}
	return selected
}

// selectTournament repeats k tournaments; each samples tournamentSize
// genomes without replacement and keeps the best
func (s *Selector) selectTournament(population []*genome.Genome, k int, rng *rand.Rand) []*genome.Genome {
	size := s.tournamentSize
	if size > len(population) {
		size = len(population)
	}

	selected := make([]*genome.Genome, 0, k)
	for i := 0; i < k; i++ {
		perm := rng.Perm(len(population))
		best := population[perm[0]]
		for _, idx := range perm[1:size] {
			if population[idx].Fitness > best.Fitness {
				best = population[idx]
			}
		}
		selected = append(selected, best)
	}
	return selected
}

// selectRoulette draws k parents with probability proportional to fitness.
// Zero total fitness falls back to uniform sampling; negative fitness is
// rejected since it has no proportional interpretation.
func (s *Selector) selectRoulette(population []*genome.Genome, k int, rng *rand.Rand) ([]*genome.Genome, error) {
	total := 0.0
	for _, g := range population {
		if g.Fitness < 0 {
			return nil, fmt.Errorf("roulette selection requires non-negative fitness, genome %s has %v", g.ID, g.Fitness)
		}
		total += g.Fitness
	}

	selected := make([]*genome.Genome, 0, k)
	for i := 0; i < k; i++ {
		if total == 0 {
			selected = append(selected, population[rng.Intn(len(population))])
			continue
		}
		spin := rng.Float64() * total
		acc := 0.0
		pick := population[len(population)-1]
		for _, g := range population {
			acc += g.Fitness
			if spin < acc {
				pick = g
				break
			}
		}
		selected = append(selected, pick)
	}
	return selected, nil
}

// selectDiversity greedily builds a parent set: the best genome first,
// then whichever remaining genome is farthest, by summed per-gene
// distance, from everything already selected. Ties break by fitness.
func (s *Selector) selectDiversity(population []*genome.Genome, k int) []*genome.Genome {
	best := population[0]
	for _, g := range population[1:] {
		if g.Fitness > best.Fitness {
			best = g
		}
	}

	selected := []*genome.Genome{best}
	remaining := make([]*genome.Genome, 0, len(population)-1)
	for _, g := range population {
		if g != best {
			remaining = append(remaining, g)
		}
	}

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestDist := -1.0
		for i, cand := range remaining {
			dist := 0.0
			for _, sel := range selected {
				dist += breeder.GeneDistance(cand, sel)
			}
			if dist > bestDist || (dist == bestDist && cand.Fitness > remaining[bestIdx].Fitness) {
				bestIdx = i
				bestDist = dist
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	// Small populations cannot fill the pool with distinct genomes
	for len(selected) < k {
		selected = append(selected, best)
	}

	return selected
}
