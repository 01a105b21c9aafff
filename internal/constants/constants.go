package constants

// Application constants
const (
	Name        = "EvoEngine-Go"
	Version     = "1.0.0"
	Description = "Multi-objective evolutionary optimization engine for agent configurations"

	// Default evolution parameters
	DefaultPopulationSize   = 50
	DefaultMaxGenerations   = 100
	DefaultParallelWorkers  = 4
	DefaultEliteRatio       = 0.2
	DefaultTournamentSize   = 3
	DefaultMutationRate     = 0.1
	DefaultMutationStrength = 0.1
	DefaultSeed             = 42

	// Breeder defaults
	BlendPerturbation = 0.1 // uniform jitter range for blend crossover

	// Selection lower bound: a parent pool always holds at least two genomes
	MinParentPool = 2

	// Checkpoint defaults
	DefaultCheckpointInterval = 10
	CheckpointVersion         = "1.0"

	// Directory names
	OutputDir     = "evoengine_output"
	CheckpointDir = "checkpoints"
	ChartsDir     = "charts"

	// Exit codes
	ExitSuccess   = 0
	ExitError     = 1
	ExitInterrupt = 2
)

// Selection strategies
const (
	SelectionElite      = "elite"
	SelectionTournament = "tournament"
	SelectionRoulette   = "roulette"
	SelectionDiversity  = "diversity"
)

// Crossover methods
const (
	CrossoverUniform     = "uniform"
	CrossoverWeighted    = "weighted"
	CrossoverBlend       = "blend"
	CrossoverSinglePoint = "single_point"
)

// Objective directions
const (
	DirectionMaximize = "maximize"
	DirectionMinimize = "minimize"
)
