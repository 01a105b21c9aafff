package types

// GenerationStats summarizes one generation of an evolution run.
// Records are created once per generation and appended to an immutable history.
type GenerationStats struct {
	Generation     int     `json:"generation"`
	PopulationSize int     `json:"population_size"`
	MeanFitness    float64 `json:"mean_fitness"`
	MaxFitness     float64 `json:"max_fitness"`
	MinFitness     float64 `json:"min_fitness"`
	StdDevFitness  float64 `json:"stddev_fitness"`
	BestGenomeID   string  `json:"best_genome_id"`

	// Per-gene trait statistics across the population
	GeneMean   map[string]float64 `json:"gene_mean,omitempty"`
	GeneStdDev map[string]float64 `json:"gene_stddev,omitempty"`

	// Multi-objective fields, zero for single-objective runs
	FrontZeroSize    int                `json:"front_zero_size,omitempty"`
	HypervolumeProxy float64            `json:"hypervolume_proxy,omitempty"`
	ObjectiveMean    map[string]float64 `json:"objective_mean,omitempty"`
	ObjectiveStdDev  map[string]float64 `json:"objective_stddev,omitempty"`
}

// Config represents the main configuration
type Config struct {
	Evolution  EvolutionConfig   `yaml:"evolution" json:"evolution"`
	Objectives []ObjectiveConfig `yaml:"objectives" json:"objectives"`
	Output     OutputConfig      `yaml:"output" json:"output"`
}

// EvolutionConfig represents the evolutionary loop configuration
type EvolutionConfig struct {
	PopulationSize    int     `yaml:"population_size" json:"population_size"`
	MaxGenerations    int     `yaml:"max_generations" json:"max_generations"`
	SelectionStrategy string  `yaml:"selection_strategy" json:"selection_strategy"`
	EliteRatio        float64 `yaml:"elite_ratio" json:"elite_ratio"`
	TournamentSize    int     `yaml:"tournament_size" json:"tournament_size"`
	CrossoverMethod   string  `yaml:"crossover_method" json:"crossover_method"`
	ElitismCount      int     `yaml:"elitism_count" json:"elitism_count"`
	MutationRate      float64 `yaml:"mutation_rate" json:"mutation_rate"`
	MutationStrength  float64 `yaml:"mutation_strength" json:"mutation_strength"`
	Seed              int64   `yaml:"seed" json:"seed"`
	ParallelWorkers   int     `yaml:"parallel_workers" json:"parallel_workers"`
}

// ObjectiveConfig declares one optimization objective for Pareto runs
type ObjectiveConfig struct {
	Name      string `yaml:"name" json:"name"`
	Direction string `yaml:"direction" json:"direction"` // maximize | minimize
}

// OutputConfig represents reporting and checkpoint configuration
type OutputConfig struct {
	Dir                string `yaml:"dir" json:"dir"`
	CheckpointInterval int    `yaml:"checkpoint_interval" json:"checkpoint_interval"`
	WriteCharts        bool   `yaml:"write_charts" json:"write_charts"`
	Verbose            bool   `yaml:"verbose" json:"verbose"`
}
