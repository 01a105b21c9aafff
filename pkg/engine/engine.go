package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tradewinds-ai/evoengine-go/internal/types"
	"github.com/tradewinds-ai/evoengine-go/pkg/breeder"
	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
	"github.com/tradewinds-ai/evoengine-go/pkg/oracle"
	"github.com/tradewinds-ai/evoengine-go/pkg/selector"
)

// State tracks the engine's lifecycle
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
	StateEvolving      State = "evolving"
)

// Engine drives the single-objective generational loop:
// initialize, score, select, breed, repeat. It exclusively owns the
// current population and the generation-history log; generations are
// strictly sequential.
type Engine struct {
	config   types.EvolutionConfig
	template *genome.Genome

	population []*genome.Genome
	generation int
	history    []types.GenerationStats

	state  State
	scored bool

	sel *selector.Selector
	brd *breeder.Breeder
	rng *rand.Rand

	logger *logrus.Logger
}

// New creates an Engine from a validated genome template. The seed in the
// config fully determines every stochastic draw the engine makes, so runs
// with the same seed, template and oracle replay identically.
func New(config types.EvolutionConfig, template *genome.Genome) (*Engine, error) {
	if err := template.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genome template: %w", err)
	}
	if config.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be positive, got %d", config.PopulationSize)
	}
	if config.ElitismCount < 0 || config.ElitismCount >= config.PopulationSize {
		return nil, fmt.Errorf("elitism count %d outside [0, population)", config.ElitismCount)
	}

	sel, err := selector.New(selector.Strategy(config.SelectionStrategy), config.EliteRatio, config.TournamentSize)
	if err != nil {
		return nil, err
	}
	brd, err := breeder.New(breeder.Method(config.CrossoverMethod), config.MutationRate, config.MutationStrength)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	return &Engine{
		config:   config,
		template: template.Clone(),
		state:    StateUninitialized,
		sel:      sel,
		brd:      brd,
		rng:      rand.New(rand.NewSource(config.Seed)),
		logger:   logger,
	}, nil
}

// SetLogger replaces the engine's logger
func (e *Engine) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// InitializePopulation produces generation zero: structurally identical
// genomes with randomized alleles within each gene's bounds
func (e *Engine) InitializePopulation() error {
	population := make([]*genome.Genome, e.config.PopulationSize)
	for i := range population {
		population[i] = e.template.Randomize(e.rng)
	}

	e.population = population
	e.generation = 0
	e.scored = false
	e.history = []types.GenerationStats{computeStats(population, 0, false)}
	e.state = StateReady

	e.logger.WithFields(logrus.Fields{
		"population": len(population),
		"seed":       e.config.Seed,
	}).Info("Initialized population")

	return nil
}

// Score calls the fitness oracle once per genome, in parallel up to the
// configured worker count, and replaces the population with scored copies.
// A failed evaluation aborts the whole pass.
func (e *Engine) Score(ctx context.Context, o oracle.Oracle) error {
	if e.state == StateUninitialized {
		return &NotReadyError{Op: "score", State: string(e.state)}
	}
	if len(e.population) == 0 {
		return &InvariantError{Reason: "empty population"}
	}

	scores, err := oracle.EvaluateBatch(ctx, o, e.population, e.config.ParallelWorkers)
	if err != nil {
		return fmt.Errorf("scoring generation %d: %w", e.generation, err)
	}

	scored := make([]*genome.Genome, len(e.population))
	for i, g := range e.population {
		scored[i] = g.WithFitness(scores[i])
	}
	e.population = scored
	e.scored = true

	// Replace the placeholder record for this generation with the
	// scored summary
	e.history[len(e.history)-1] = computeStats(scored, e.generation, true)

	e.logger.WithFields(logrus.Fields{
		"generation": e.generation,
		"best":       e.history[len(e.history)-1].MaxFitness,
		"mean":       e.history[len(e.history)-1].MeanFitness,
	}).Debug("Scored generation")

	return nil
}

// EvolveGeneration selects parents from the scored population, carries
// over elites untouched, and breeds children until the population is full
// again. The generation counter advances and a fresh stats record is
// appended.
func (e *Engine) EvolveGeneration() error {
	if e.state == StateUninitialized {
		return &NotReadyError{Op: "evolve", State: string(e.state)}
	}
	if !e.scored {
		return &NotReadyError{Op: "evolve", State: "unscored population"}
	}
	if len(e.population) == 0 {
		return &InvariantError{Reason: "empty population"}
	}

	e.state = StateEvolving
	defer func() { e.state = StateReady }()

	parents, err := e.sel.Select(e.population, e.rng)
	if err != nil {
		return fmt.Errorf("selecting parents for generation %d: %w", e.generation+1, err)
	}

	next := make([]*genome.Genome, 0, e.config.PopulationSize)
	next = append(next, e.elites()...)

	for len(next) < e.config.PopulationSize {
		a := parents[e.rng.Intn(len(parents))]
		b := parents[e.rng.Intn(len(parents))]
		child, err := e.brd.Breed(a, b, e.rng)
		if err != nil {
			return fmt.Errorf("breeding generation %d: %w", e.generation+1, err)
		}
		next = append(next, child)
	}

	e.population = next
	e.generation++
	e.scored = false
	e.history = append(e.history, computeStats(next, e.generation, false))

	return nil
}

// elites returns the top genomes by fitness to carry into the next
// generation unmodified; ties prefer older lineages
func (e *Engine) elites() []*genome.Genome {
	if e.config.ElitismCount == 0 {
		return nil
	}

	ranked := make([]*genome.Genome, len(e.population))
	copy(ranked, e.population)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Fitness != ranked[j].Fitness {
			return ranked[i].Fitness > ranked[j].Fitness
		}
		return ranked[i].Generation < ranked[j].Generation
	})

	n := e.config.ElitismCount
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// Run executes score-then-evolve for the given number of generations and
// scores the final population. Cancellation is honored at generation
// boundaries only, so an interrupted run never leaves a mixed-generation
// population behind.
func (e *Engine) Run(ctx context.Context, generations int, o oracle.Oracle) error {
	if e.state == StateUninitialized {
		return &NotReadyError{Op: "run", State: string(e.state)}
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

// Population returns the current population. Genomes are value objects;
// callers must treat them as read-only.
func (e *Engine) Population() []*genome.Genome {
	return e.population
}

// Generation returns the current generation number
func (e *Engine) Generation() int {
	return e.generation
}

// State returns the engine lifecycle state
func (e *Engine) State() State {
	return e.state
}

// History returns the append-only per-generation statistics log
func (e *Engine) History() []types.GenerationStats {
	return e.history
}

// Best returns the highest-fitness genome of the current scored
// population, or nil before scoring
func (e *Engine) Best() *genome.Genome {
	if !e.scored || len(e.population) == 0 {
		return nil
	}
	best := e.population[0]
	for _, g := range e.population[1:] {
		if g.Fitness > best.Fitness {
			best = g
		}
	}
	return best
}
