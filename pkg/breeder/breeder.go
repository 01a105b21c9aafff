package breeder

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/tradewinds-ai/evoengine-go/internal/constants"
	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
)

// Method selects the crossover algorithm
type Method string

const (
	MethodUniform     Method = constants.CrossoverUniform
	MethodWeighted    Method = constants.CrossoverWeighted
	MethodBlend       Method = constants.CrossoverBlend
	MethodSinglePoint Method = constants.CrossoverSinglePoint
)

// Breeder bundles a crossover method with mutation parameters so engines
// can produce children in one call. It holds no hidden state; every
// stochastic draw comes from the *rand.Rand passed per call.
type Breeder struct {
	method   Method
	rate     float64
	strength float64
}

// New creates a Breeder with the given crossover method and mutation
// rate/strength
func New(method Method, rate, strength float64) (*Breeder, error) {
	switch method {
	case MethodUniform, MethodWeighted, MethodBlend, MethodSinglePoint:
	default:
		return nil, fmt.Errorf("unknown crossover method %q", method)
	}
	if rate < 0 || rate > 1 {
		return nil, fmt.Errorf("mutation rate %v outside [0,1]", rate)
	}
	if strength < 0 {
		return nil, fmt.Errorf("mutation strength %v must be non-negative", strength)
	}
	return &Breeder{method: method, rate: rate, strength: strength}, nil
}

// Breed crosses two parents and mutates the child
func (b *Breeder) Breed(parentA, parentB *genome.Genome, rng *rand.Rand) (*genome.Genome, error) {
	child, err := Crossover(parentA, parentB, b.method, rng)
	if err != nil {
		return nil, err
	}
	child, _ = Mutate(child, b.rate, b.strength, rng)
	return child, nil
}

// Crossover produces a child genome from two parents sharing the same
// schema. The child is tagged with generation max(a,b)+1 and both parent
// ids; it is unscored.
func Crossover(parentA, parentB *genome.Genome, method Method, rng *rand.Rand) (*genome.Genome, error) {
	if !parentA.SameSchema(parentB) {
		return nil, &genome.SchemaError{
			GenomeA: parentA.ID,
			GenomeB: parentB.ID,
			Reason:  "chromosome/gene id sets differ",
		}
	}

	child := parentA.Clone()
	child.ID = uuid.New().String()
	child.Generation = maxInt(parentA.Generation, parentB.Generation) + 1
	child.ParentIDs = []string{parentA.ID, parentB.ID}
	child.Fitness = 0
	child.Objectives = nil
	child.Scored = false
	child.MutationLog = nil
	child.CreatedAt = time.Now()

	switch method {
	case MethodUniform:
		crossUniform(child, parentA, parentB, rng)
	case MethodWeighted:
		crossWeighted(child, parentA, parentB, rng)
	case MethodBlend:
		crossBlend(child, parentA, parentB, rng)
	case MethodSinglePoint:
		crossSinglePoint(child, parentA, parentB, rng)
	default:
		return nil, fmt.Errorf("unknown crossover method %q", method)
	}

	return child, nil
}

// Mutate applies independent per-gene perturbations and returns a new
// genome together with human-readable mutation records. Numeric genes get
// a uniform jitter in [-strength, strength] clamped to bounds; categorical
// genes switch to a uniformly random different allowed value. A gene's own
// MutationProb, when set, overrides the call-level rate.
func Mutate(g *genome.Genome, rate, strength float64, rng *rand.Rand) (*genome.Genome, []string) {
	mutated := g.Clone()
	var log []string

	for ci := range mutated.Chromosomes {
		for gi := range mutated.Chromosomes[ci].Genes {
			gene := &mutated.Chromosomes[ci].Genes[gi]

			p := rate
			if gene.MutationProb > 0 {
				p = gene.MutationProb
			}
			if rng.Float64() >= p {
				continue
			}

			switch gene.Kind {
			case genome.GeneNumeric:
				old := gene.Value
				gene.Value = gene.Clamp(old + (rng.Float64()*2-1)*strength)
				if gene.Value == old {
					// zero strength or a jitter fully absorbed by
					// clamping changed nothing; keep the log to real
					// mutations
					continue
				}
				log = append(log, fmt.Sprintf("%s: %v -> %v", gene.ID, old, gene.Value))
			case genome.GeneCategorical:
				if len(gene.Choices) < 2 {
					continue
				}
				old := gene.Category
				next := old
				for next == old {
					next = gene.Choices[rng.Intn(len(gene.Choices))]
				}
				gene.Category = next
				log = append(log, fmt.Sprintf("%s: %s -> %s", gene.ID, old, next))
			}
		}
	}

	mutated.MutationLog = append(mutated.MutationLog, log...)
	return mutated, log
}

// crossUniform copies each gene from either parent with probability 0.5
func crossUniform(child, parentA, parentB *genome.Genome, rng *rand.Rand) {
	genesB := parentB.Genes()
	idx := 0
	for ci := range child.Chromosomes {
		for gi := range child.Chromosomes[ci].Genes {
			if rng.Float64() < 0.5 {
				child.Chromosomes[ci].Genes[gi] = genesB[idx].Clone()
			}
			idx++
		}
	}
}

// crossWeighted interpolates numeric genes by parent fitness share;
// categorical genes fall back to uniform behavior. Weights degrade to
// 0.5/0.5 when the parents' total fitness is zero.
func crossWeighted(child, parentA, parentB *genome.Genome, rng *rand.Rand) {
	wA := 0.5
	total := parentA.Fitness + parentB.Fitness
	if total != 0 {
		wA = parentA.Fitness / total
	}
	wB := 1 - wA

	genesA := parentA.Genes()
	genesB := parentB.Genes()
	idx := 0
	for ci := range child.Chromosomes {
		for gi := range child.Chromosomes[ci].Genes {
			gene := &child.Chromosomes[ci].Genes[gi]
			switch gene.Kind {
			case genome.GeneNumeric:
				gene.Value = gene.Clamp(genesA[idx].Value*wA + genesB[idx].Value*wB)
			case genome.GeneCategorical:
				if rng.Float64() < 0.5 {
					*gene = genesB[idx].Clone()
				}
			}
			idx++
		}
	}
}

// crossBlend averages numeric genes and adds a small uniform perturbation,
// clamped to bounds; categorical genes use uniform behavior
func crossBlend(child, parentA, parentB *genome.Genome, rng *rand.Rand) {
	genesA := parentA.Genes()
	genesB := parentB.Genes()
	idx := 0
	for ci := range child.Chromosomes {
		for gi := range child.Chromosomes[ci].Genes {
			gene := &child.Chromosomes[ci].Genes[gi]
			switch gene.Kind {
			case genome.GeneNumeric:
				mid := (genesA[idx].Value + genesB[idx].Value) / 2
				jitter := (rng.Float64()*2 - 1) * constants.BlendPerturbation
				gene.Value = gene.Clamp(mid + jitter)
			case genome.GeneCategorical:
				if rng.Float64() < 0.5 {
					*gene = genesB[idx].Clone()
				}
			}
			idx++
		}
	}
}

// crossSinglePoint picks one cut over the ordered gene list; genes before
// the cut come from A, genes at and after the cut from B
func crossSinglePoint(child, parentA, parentB *genome.Genome, rng *rand.Rand) {
	genesB := parentB.Genes()
	n := len(genesB)
	if n == 0 {
		return
	}
	cut := rng.Intn(n)

	idx := 0
	for ci := range child.Chromosomes {
		for gi := range child.Chromosomes[ci].Genes {
			if idx >= cut {
				child.Chromosomes[ci].Genes[gi] = genesB[idx].Clone()
			}
			idx++
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// distance reports the per-gene absolute distance between two alleles,
// normalized for numeric genes and 0/1 for categorical ones. Shared by
// diversity selection.
func distance(a, b genome.Gene) float64 {
	switch a.Kind {
	case genome.GeneNumeric:
		span := a.Max - a.Min
		if span == 0 {
			return 0
		}
		return math.Abs(a.Value-b.Value) / span
	case genome.GeneCategorical:
		if a.Category == b.Category {
			return 0
		}
		return 1
	}
	return 0
}

// GeneDistance is the per-gene absolute distance between two genomes with
// the same schema
func GeneDistance(a, b *genome.Genome) float64 {
	genesA := a.Genes()
	genesB := b.Genes()
	if len(genesA) != len(genesB) {
		return 0
	}
	sum := 0.0
	for i := range genesA {
		sum += distance(genesA[i], genesB[i])
	}
	return sum
}
