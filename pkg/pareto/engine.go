package pareto

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tradewinds-ai/evoengine-go/internal/types"
	"github.com/tradewinds-ai/evoengine-go/pkg/breeder"
	"github.com/tradewinds-ai/evoengine-go/pkg/engine"
	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
	"github.com/tradewinds-ai/evoengine-go/pkg/oracle"
)

// Engine is the multi-objective counterpart of engine.Engine. It keeps the
// same population and generation bookkeeping but scores genomes on an
// objective vector and selects survivors NSGA-II style, by front rank and
// crowding distance. Survivors of the previous environmental selection are
// kept and pooled with each new scored generation, so elites persist until
// genuinely dominated.
type Engine struct {
	config     types.EvolutionConfig
	objectives []Objective
	template   *genome.Genome

	population []*genome.Genome
	survivors  []*ranked
	generation int
	history    []types.GenerationStats

	state  engine.State
	scored bool

	brd *breeder.Breeder
	rng *rand.Rand

	logger *logrus.Logger
}

// New creates a Pareto engine for the given objectives
func New(config types.EvolutionConfig, objectives []Objective, template *genome.Genome) (*Engine, error) {
	if err := template.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genome template: %w", err)
	}
	if config.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be positive, got %d", config.PopulationSize)
	}
	if len(objectives) < 2 {
		return nil, fmt.Errorf("multi-objective runs need at least 2 objectives, got %d", len(objectives))
	}

	brd, err := breeder.New(breeder.Method(config.CrossoverMethod), config.MutationRate, config.MutationStrength)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	return &Engine{
		config:     config,
		objectives: objectives,
		template:   template.Clone(),
		state:      engine.StateUninitialized,
		brd:        brd,
		rng:        rand.New(rand.NewSource(config.Seed)),
		logger:     logger,
	}, nil
}

// SetLogger replaces the engine's logger
func (e *Engine) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// InitializePopulation produces generation zero with randomized alleles
func (e *Engine) InitializePopulation() error {
	population := make([]*genome.Genome, e.config.PopulationSize)
	for i := range population {
		population[i] = e.template.Randomize(e.rng)
	}

	e.population = population
	e.survivors = nil
	e.generation = 0
	e.scored = false
	e.history = []types.GenerationStats{{Generation: 0, PopulationSize: len(population)}}
	e.state = engine.StateReady

	e.logger.WithFields(logrus.Fields{
		"population": len(population),
		"objectives": len(e.objectives),
		"seed":       e.config.Seed,
	}).Info("Initialized population")

	return nil
}

// Score calls the oracle once per genome in parallel and replaces the
// population with copies scored on the objective vector. A failed
// evaluation aborts the pass; no genome gets a made-up score.
func (e *Engine) Score(ctx context.Context, o oracle.MultiOracle) error {
	if e.state == engine.StateUninitialized {
		return &engine.NotReadyError{Op: "score", State: string(e.state)}
	}
	if len(e.population) == 0 {
		return &engine.InvariantError{Reason: "empty population"}
	}

	vectors, err := oracle.EvaluateBatchMulti(ctx, o, e.population, e.config.ParallelWorkers)
	if err != nil {
		return fmt.Errorf("scoring generation %d: %w", e.generation, err)
	}

	scored := make([]*genome.Genome, len(e.population))
	for i, g := range e.population {
		scored[i] = g.WithObjectives(vectors[i])
	}
	e.population = scored
	e.scored = true

	stats, err := e.computeStats(scored)
	if err != nil {
		return err
	}
	e.history[len(e.history)-1] = stats

	e.logger.WithFields(logrus.Fields{
		"generation": e.generation,
		"front0":     stats.FrontZeroSize,
	}).Debug("Scored generation")

	return nil
}

// EvolveGeneration pools the scored population with the previous
// survivors, selects the next parent set front-by-front, and breeds a full
// offspring population from it via binary tournament.
func (e *Engine) EvolveGeneration() error {
	if e.state == engine.StateUninitialized {
		return &engine.NotReadyError{Op: "evolve", State: string(e.state)}
	}
	if !e.scored {
		return &engine.NotReadyError{Op: "evolve", State: "unscored population"}
	}
	if len(e.population) == 0 {
		return &engine.InvariantError{Reason: "empty population"}
	}

	e.state = engine.StateEvolving
	defer func() { e.state = engine.StateReady }()

	pool := make([]*genome.Genome, 0, len(e.survivors)+len(e.population))
	for _, item := range e.survivors {
		pool = append(pool, item.genome)
	}
	pool = append(pool, e.population...)

	survivors, err := e.environmentalSelection(pool)
	if err != nil {
		return err
	}
	e.survivors = survivors

	next := make([]*genome.Genome, 0, e.config.PopulationSize)
	for len(next) < e.config.PopulationSize {
		a := e.binaryTournament(survivors)
		b := e.binaryTournament(survivors)
		child, err := e.brd.Breed(a.genome, b.genome, e.rng)
		if err != nil {
			return fmt.Errorf("breeding generation %d: %w", e.generation+1, err)
		}
		next = append(next, child)
	}

	e.population = next
	e.generation++
	e.scored = false
	e.history = append(e.history, types.GenerationStats{
		Generation:     e.generation,
		PopulationSize: len(next),
	})

	return nil
}

// environmentalSelection fills the next parent set front-by-front in rank
// order; the front that would overflow the remaining slots is truncated by
// descending crowding distance within that front only.
func (e *Engine) environmentalSelection(pool []*genome.Genome) ([]*ranked, error) {
	items, err := buildRanked(pool, e.objectives)
	if err != nil {
		return nil, err
	}
	fronts, err := sortFronts(items)
	if err != nil {
		return nil, err
	}

	target := e.config.PopulationSize
	selected := make([]*ranked, 0, target)
	for _, front := range fronts {
		crowding(front)
		if len(selected)+len(front) <= target {
			selected = append(selected, front...)
			continue
		}

		remaining := target - len(selected)
		truncated := make([]*ranked, len(front))
		copy(truncated, front)
		sort.SliceStable(truncated, func(i, j int) bool {
			return truncated[i].crowding > truncated[j].crowding
		})
		selected = append(selected, truncated[:remaining]...)
		break
	}

	if len(selected) == 0 {
		return nil, &engine.InvariantError{Reason: "environmental selection produced an empty parent set"}
	}
	return selected, nil
}

// binaryTournament compares two random survivors by (front rank, crowding
// distance): the lower front wins, ties prefer the more isolated genome
func (e *Engine) binaryTournament(pool []*ranked) *ranked {
	a := pool[e.rng.Intn(len(pool))]
	b := pool[e.rng.Intn(len(pool))]
	if a.rank != b.rank {
		if a.rank < b.rank {
			return a
		}
		return b
	}
	if a.crowding >= b.crowding {
		return a
	}
	return b
}

// Run executes score-then-evolve for the given number of generations and
// scores the final population. Cancellation is honored at generation
// boundaries only.
func (e *Engine) Run(ctx context.Context, generations int, o oracle.MultiOracle) error {
	if e.state == engine.StateUninitialized {
		return &engine.NotReadyError{Op: "run", State: string(e.state)}
	}

	for i := 0; i < generations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Score(ctx, o); err != nil {
			return err
		}
		if err := e.EvolveGeneration(); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return e.Score(ctx, o)
}

// computeStats summarizes a scored population: front-0 size, hypervolume
// proxy, per-objective mean and dispersion, per-gene trait statistics
func (e *Engine) computeStats(population []*genome.Genome) (types.GenerationStats, error) {
	stats := types.GenerationStats{
		Generation:     e.generation,
		PopulationSize: len(population),
	}
	stats.GeneMean, stats.GeneStdDev = engine.GeneStats(population)

	items, err := buildRanked(population, e.objectives)
	if err != nil {
		return stats, err
	}
	fronts, err := sortFronts(items)
	if err != nil {
		return stats, err
	}

	front0 := fronts[0]
	crowding(front0)
	stats.FrontZeroSize = len(front0)
	stats.HypervolumeProxy = hypervolumeProxy(front0)

	// Report the most isolated front-0 genome as the generation's best
	best := front0[0]
	for _, item := range front0[1:] {
		if item.crowding > best.crowding {
			best = item
		}
	}
	stats.BestGenomeID = best.genome.ID

	stats.ObjectiveMean = make(map[string]float64, len(e.objectives))
	stats.ObjectiveStdDev = make(map[string]float64, len(e.objectives))
	for _, obj := range e.objectives {
		sum := 0.0
		for _, g := range population {
			sum += g.Objectives[obj.Name]
		}
		mean := sum / float64(len(population))
		variance := 0.0
		for _, g := range population {
			d := g.Objectives[obj.Name] - mean
			variance += d * d
		}
		stats.ObjectiveMean[obj.Name] = mean
		stats.ObjectiveStdDev[obj.Name] = math.Sqrt(variance / float64(len(population)))
	}

	return stats, nil
}

// Population returns the current population, read-only for callers
func (e *Engine) Population() []*genome.Genome {
	return e.population
}

// FrontZero returns the current non-dominated survivor front, or the
// front 0 of the scored population when no selection has happened yet
func (e *Engine) FrontZero() ([]*genome.Genome, error) {
	source := e.population
	if len(e.survivors) > 0 {
		source = make([]*genome.Genome, 0, len(e.survivors))
		for _, item := range e.survivors {
			source = append(source, item.genome)
		}
	} else if !e.scored {
		return nil, &engine.NotReadyError{Op: "front", State: "unscored population"}
	}

	fronts, err := SortFronts(source, e.objectives)
	if err != nil {
		return nil, err
	}
	return fronts[0], nil
}

// Generation returns the current generation number
func (e *Engine) Generation() int {
	return e.generation
}

// State returns the engine lifecycle state
func (e *Engine) State() engine.State {
	return e.state
}

// History returns the append-only per-generation statistics log
func (e *Engine) History() []types.GenerationStats {
	return e.history
}

// Objectives returns the configured objectives
func (e *Engine) Objectives() []Objective {
	return e.objectives
}
