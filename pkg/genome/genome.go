package genome

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// GeneKind identifies the domain of a gene's allele
type GeneKind string

const (
	GeneNumeric     GeneKind = "numeric"
	GeneCategorical GeneKind = "categorical"
)

// ChromosomeKind tags what a chromosome's genes influence
type ChromosomeKind string

const (
	ChromosomePerformance ChromosomeKind = "performance"
	ChromosomeBehavioral  ChromosomeKind = "behavioral"
	ChromosomeRisk        ChromosomeKind = "risk"
)

// Gene is a single bounded, typed variable within a genome.
// Numeric genes hold Value within [Min, Max]; categorical genes hold
// Category drawn from Choices.
type Gene struct {
	ID           string   `json:"id"`
	Kind         GeneKind `json:"kind"`
	Value        float64  `json:"value,omitempty"`
	Min          float64  `json:"min,omitempty"`
	Max          float64  `json:"max,omitempty"`
	Category     string   `json:"category,omitempty"`
	Choices      []string `json:"choices,omitempty"`
	MutationProb float64  `json:"mutation_prob"`
}

// Validate checks the gene's allele against its own domain
func (g Gene) Validate() error {
	if g.ID == "" {
		return &DomainError{Reason: "gene id must not be empty"}
	}
	if g.MutationProb < 0 || g.MutationProb > 1 {
		return &DomainError{GeneID: g.ID, Reason: fmt.Sprintf("mutation probability %v outside [0,1]", g.MutationProb)}
	}

	switch g.Kind {
	case GeneNumeric:
		if g.Min > g.Max {
			return &DomainError{GeneID: g.ID, Reason: fmt.Sprintf("invalid bounds [%v, %v]", g.Min, g.Max)}
		}
		if g.Value < g.Min || g.Value > g.Max {
			return &DomainError{GeneID: g.ID, Reason: fmt.Sprintf("allele %v outside bounds [%v, %v]", g.Value, g.Min, g.Max)}
		}
	case GeneCategorical:
		if len(g.Choices) == 0 {
			return &DomainError{GeneID: g.ID, Reason: "categorical gene has no allowed values"}
		}
		found := false
		for _, c := range g.Choices {
			if c == g.Category {
				found = true
				break
			}
		}
		if !found {
			return &DomainError{GeneID: g.ID, Reason: fmt.Sprintf("allele %q not in allowed values %v", g.Category, g.Choices)}
		}
	default:
		return &DomainError{GeneID: g.ID, Reason: fmt.Sprintf("unknown gene kind %q", g.Kind)}
	}

	return nil
}

// Clamp constrains a candidate numeric allele to the gene's bounds
func (g Gene) Clamp(v float64) float64 {
	if v < g.Min {
		return g.Min
	}
	if v > g.Max {
		return g.Max
	}
	return v
}

// Clone returns a deep copy of the gene
func (g Gene) Clone() Gene {
	c := g
	if g.Choices != nil {
		c.Choices = make([]string, len(g.Choices))
		copy(c.Choices, g.Choices)
	}
	return c
}

// Chromosome groups genes that are varied and reported together.
// Expression scales the chromosome's phenotypic influence without
// altering its genes.
type Chromosome struct {
	ID         string         `json:"id"`
	Kind       ChromosomeKind `json:"kind"`
	Genes      []Gene         `json:"genes"`
	Expression float64        `json:"expression"`
}

// Validate checks the chromosome's structure and every gene in it
func (c Chromosome) Validate() error {
	if c.ID == "" {
		return &DomainError{Reason: "chromosome id must not be empty"}
	}
	if c.Expression < 0 || c.Expression > 1 {
		return &DomainError{Reason: fmt.Sprintf("chromosome %q expression %v outside [0,1]", c.ID, c.Expression)}
	}

	seen := make(map[string]bool, len(c.Genes))
	for _, gene := range c.Genes {
		if err := gene.Validate(); err != nil {
			return err
		}
		if seen[gene.ID] {
			return &DomainError{GeneID: gene.ID, Reason: fmt.Sprintf("duplicate gene id in chromosome %q", c.ID)}
		}
		seen[gene.ID] = true
	}

	return nil
}

// Clone returns a deep copy of the chromosome
func (c Chromosome) Clone() Chromosome {
	cp := c
	cp.Genes = make([]Gene, len(c.Genes))
	for i, g := range c.Genes {
		cp.Genes[i] = g.Clone()
	}
	return cp
}

// Genome is a complete, versioned agent configuration composed of
// chromosomes, with lineage references and a fitness or objective score.
// A genome is a value object: once scored it is never mutated in place,
// evolution produces new instances.
type Genome struct {
	ID          string             `json:"id"`
	Generation  int                `json:"generation"`
	Chromosomes []Chromosome       `json:"chromosomes"`
	ParentIDs   []string           `json:"parent_ids,omitempty"`
	Fitness     float64            `json:"fitness"`
	Objectives  map[string]float64 `json:"objectives,omitempty"`
	Scored      bool               `json:"scored"`
	MutationLog []string           `json:"mutation_log,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// New constructs a generation-zero genome from the given chromosomes.
// Construction fails with a *DomainError if any gene violates its bounds
// or the genome contains duplicate ids.
func New(chromosomes []Chromosome) (*Genome, error) {
	g := &Genome{
		ID:          uuid.New().String(),
		Generation:  0,
		Chromosomes: chromosomes,
		CreatedAt:   time.Now(),
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks structural invariants: chromosome validity, unique
// chromosome ids, globally unique gene ids, and lineage shape.
func (g *Genome) Validate() error {
	if g.Generation < 0 {
		return &DomainError{Reason: fmt.Sprintf("negative generation %d", g.Generation)}
	}
	if len(g.ParentIDs) > 2 {
		return &DomainError{Reason: fmt.Sprintf("genome has %d parents, at most 2 allowed", len(g.ParentIDs))}
	}

	seenChrom := make(map[string]bool, len(g.Chromosomes))
	seenGene := make(map[string]bool)
	for _, c := range g.Chromosomes {
		if err := c.Validate(); err != nil {
			return err
		}
		if seenChrom[c.ID] {
			return &DomainError{Reason: fmt.Sprintf("duplicate chromosome id %q", c.ID)}
		}
		seenChrom[c.ID] = true

		for _, gene := range c.Genes {
			if seenGene[gene.ID] {
				return &DomainError{GeneID: gene.ID, Reason: "duplicate gene id across chromosomes"}
			}
			seenGene[gene.ID] = true
		}
	}

	return nil
}

// Clone returns a deep copy of the genome, same id and lineage included
func (g *Genome) Clone() *Genome {
	cp := *g
	cp.Chromosomes = make([]Chromosome, len(g.Chromosomes))
	for i, c := range g.Chromosomes {
		cp.Chromosomes[i] = c.Clone()
	}
	if g.ParentIDs != nil {
		cp.ParentIDs = make([]string, len(g.ParentIDs))
		copy(cp.ParentIDs, g.ParentIDs)
	}
	if g.MutationLog != nil {
		cp.MutationLog = make([]string, len(g.MutationLog))
		copy(cp.MutationLog, g.MutationLog)
	}
	if g.Objectives != nil {
		cp.Objectives = make(map[string]float64, len(g.Objectives))
		for k, v := range g.Objectives {
			cp.Objectives[k] = v
		}
	}
	return &cp
}

// Genes returns the genome's genes flattened in chromosome order.
// The returned slice aliases the genome's storage; callers must not
// modify the genes.
func (g *Genome) Genes() []Gene {
	var genes []Gene
	for _, c := range g.Chromosomes {
		genes = append(genes, c.Genes...)
	}
	return genes
}

// GeneValue returns the numeric allele of the named gene. Categorical
// genes report false.
func (g *Genome) GeneValue(id string) (float64, bool) {
	for _, c := range g.Chromosomes {
		for _, gene := range c.Genes {
			if gene.ID == id && gene.Kind == GeneNumeric {
				return gene.Value, true
			}
		}
	}
	return 0, false
}

// SameSchema reports whether two genomes share chromosome and gene id
// structure, the precondition for breeding them.
func (g *Genome) SameSchema(other *Genome) bool {
	if len(g.Chromosomes) != len(other.Chromosomes) {
		return false
	}
	for i, c := range g.Chromosomes {
		oc := other.Chromosomes[i]
		if c.ID != oc.ID || len(c.Genes) != len(oc.Genes) {
			return false
		}
		for j, gene := range c.Genes {
			if gene.ID != oc.Genes[j].ID || gene.Kind != oc.Genes[j].Kind {
				return false
			}
		}
	}
	return true
}

// Randomize produces a fresh generation-zero genome with the same schema
// and uniformly random alleles within each gene's domain. All randomness
// flows through the supplied source.
func (g *Genome) Randomize(rng *rand.Rand) *Genome {
	cp := g.Clone()
	cp.ID = uuid.New().String()
	cp.Generation = 0
	cp.ParentIDs = nil
	cp.Fitness = 0
	cp.Objectives = nil
	cp.Scored = false
	cp.MutationLog = nil
	cp.CreatedAt = time.Now()

	for ci := range cp.Chromosomes {
		for gi := range cp.Chromosomes[ci].Genes {
			gene := &cp.Chromosomes[ci].Genes[gi]
			switch gene.Kind {
			case GeneNumeric:
				gene.Value = gene.Min + rng.Float64()*(gene.Max-gene.Min)
			case GeneCategorical:
				gene.Category = gene.Choices[rng.Intn(len(gene.Choices))]
			}
		}
	}

	return cp
}

// WithFitness returns a scored copy of the genome. The receiver is left
// untouched so already-recorded lineage stays stable.
func (g *Genome) WithFitness(fitness float64) *Genome {
	cp := g.Clone()
	cp.Fitness = fitness
	cp.Scored = true
	return cp
}

// WithObjectives returns a copy scored on an objective vector
func (g *Genome) WithObjectives(objectives map[string]float64) *Genome {
	cp := g.Clone()
	cp.Objectives = make(map[string]float64, len(objectives))
	for k, v := range objectives {
		cp.Objectives[k] = v
	}
	cp.Scored = true
	return cp
}
