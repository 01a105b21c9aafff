package engine

import (
	"math"

	"github.com/tradewinds-ai/evoengine-go/internal/types"
	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
)

// computeStats builds the per-generation summary for a population. For an
// unscored population the fitness fields stay at their zero values.
func computeStats(population []*genome.Genome, generation int, scored bool) types.GenerationStats {
	stats := types.GenerationStats{
		Generation:     generation,
		PopulationSize: len(population),
	}
	if len(population) == 0 {
		return stats
	}

	stats.GeneMean, stats.GeneStdDev = GeneStats(population)

	if !scored {
		return stats
	}

	best := population[0]
	sum := 0.0
	stats.MinFitness = math.Inf(1)
	stats.MaxFitness = math.Inf(-1)
	for _, g := range population {
		sum += g.Fitness
		if g.Fitness > stats.MaxFitness {
			stats.MaxFitness = g.Fitness
		}
		if g.Fitness < stats.MinFitness {
			stats.MinFitness = g.Fitness
		}
		if g.Fitness > best.Fitness {
			best = g
		}
	}
	stats.MeanFitness = sum / float64(len(population))
	stats.BestGenomeID = best.ID

	variance := 0.0
	for _, g := range population {
		d := g.Fitness - stats.MeanFitness
		variance += d * d
	}
	stats.StdDevFitness = math.Sqrt(variance / float64(len(population)))

	return stats
}

// GeneStats computes mean and dispersion per numeric gene across a
// population. Both engines record these per generation so trait drift can
// be followed over a run.
func GeneStats(population []*genome.Genome) (map[string]float64, map[string]float64) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, g := range population {
		for _, gene := range g.Genes() {
			if gene.Kind != genome.GeneNumeric {
				continue
			}
			sums[gene.ID] += gene.Value
			counts[gene.ID]++
		}
	}

	means := make(map[string]float64, len(sums))
	for id, sum := range sums {
		means[id] = sum / float64(counts[id])
	}

	variances := make(map[string]float64, len(sums))
	for _, g := range population {
		for _, gene := range g.Genes() {
			if gene.Kind != genome.GeneNumeric {
				continue
			}
			d := gene.Value - means[gene.ID]
			variances[gene.ID] += d * d
		}
	}

	stddevs := make(map[string]float64, len(variances))
	for id, v := range variances {
		stddevs[id] = math.Sqrt(v / float64(counts[id]))
	}

	return means, stddevs
}
