package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tradewinds-ai/evoengine-go/internal/constants"
	"github.com/tradewinds-ai/evoengine-go/internal/types"
)

// Manager handles configuration loading and validation
type Manager struct {
	config *types.Config
	path   string
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: getDefaultConfig(),
	}
}

// Load loads configuration from a file
func (m *Manager) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	config := getDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := m.applyEnvOverrides(config); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := m.validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	m.path = path
	return nil
}

// Save saves configuration to a file
func (m *Manager) Save(path string) error {
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *types.Config {
	return m.config
}

// SetConfig updates the configuration
func (m *Manager) SetConfig(config *types.Config) {
	m.config = config
}

// GetPath returns the configuration file path
func (m *Manager) GetPath() string {
	return m.path
}

// applyEnvOverrides applies environment variable overrides to the configuration
func (m *Manager) applyEnvOverrides(config *types.Config) error {
	if seed := os.Getenv("EVO_SEED"); seed != "" {
		var n int64
		if _, err := fmt.Sscanf(seed, "%d", &n); err == nil {
			config.Evolution.Seed = n
		}
	}
	if population := os.Getenv("EVO_POPULATION"); population != "" {
		var n int
		if _, err := fmt.Sscanf(population, "%d", &n); err == nil {
			config.Evolution.PopulationSize = n
		}
	}
	if generations := os.Getenv("EVO_GENERATIONS"); generations != "" {
		var n int
		if _, err := fmt.Sscanf(generations, "%d", &n); err == nil {
			config.Evolution.MaxGenerations = n
		}
	}
	if workers := os.Getenv("EVO_WORKERS"); workers != "" {
		var n int
		if _, err := fmt.Sscanf(workers, "%d", &n); err == nil {
			config.Evolution.ParallelWorkers = n
		}
	}
	if outputDir := os.Getenv("EVO_OUTPUT_DIR"); outputDir != "" {
		config.Output.Dir = outputDir
	}
	if verbose := os.Getenv("EVO_VERBOSE"); verbose != "" {
		config.Output.Verbose = strings.ToLower(verbose) == "true"
	}

	return nil
}

// validate validates the configuration and fills defaulted paths
func (m *Manager) validate(config *types.Config) error {
	evo := &config.Evolution

	if evo.PopulationSize <= 0 {
		return fmt.Errorf("population size must be positive")
	}
	if evo.MaxGenerations <= 0 {
		return fmt.Errorf("max generations must be positive")
	}
	if evo.EliteRatio <= 0 || evo.EliteRatio > 1 {
		return fmt.Errorf("elite ratio must be in (0,1]")
	}
	if evo.TournamentSize < 2 {
		return fmt.Errorf("tournament size must be at least 2")
	}
	if evo.MutationRate < 0 || evo.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0,1]")
	}
	if evo.MutationStrength < 0 {
		return fmt.Errorf("mutation strength must be non-negative")
	}
	if evo.ElitismCount < 0 || evo.ElitismCount >= evo.PopulationSize {
		return fmt.Errorf("elitism count must be in [0, population)")
	}
	if evo.ParallelWorkers <= 0 {
		return fmt.Errorf("parallel workers must be positive")
	}

	switch evo.SelectionStrategy {
	case constants.SelectionElite, constants.SelectionTournament, constants.SelectionRoulette, constants.SelectionDiversity:
	default:
		return fmt.Errorf("unknown selection strategy %q", evo.SelectionStrategy)
	}

	switch evo.CrossoverMethod {
	case constants.CrossoverUniform, constants.CrossoverWeighted, constants.CrossoverBlend, constants.CrossoverSinglePoint:
	default:
		return fmt.Errorf("unknown crossover method %q", evo.CrossoverMethod)
	}

	seen := make(map[string]bool, len(config.Objectives))
	for _, obj := range config.Objectives {
		if obj.Name == "" {
			return fmt.Errorf("objective names must not be empty")
		}
		if seen[obj.Name] {
			return fmt.Errorf("duplicate objective %q", obj.Name)
		}
		seen[obj.Name] = true
		if obj.Direction != constants.DirectionMaximize && obj.Direction != constants.DirectionMinimize {
			return fmt.Errorf("objective %q has unknown direction %q", obj.Name, obj.Direction)
		}
	}

	if config.Output.Dir == "" {
		config.Output.Dir = constants.OutputDir
	}
	if config.Output.CheckpointInterval <= 0 {
		config.Output.CheckpointInterval = constants.DefaultCheckpointInterval
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *types.Config {
	return &types.Config{
		Evolution: types.EvolutionConfig{
			PopulationSize:    constants.DefaultPopulationSize,
			MaxGenerations:    constants.DefaultMaxGenerations,
			SelectionStrategy: constants.SelectionElite,
			EliteRatio:        constants.DefaultEliteRatio,
			TournamentSize:    constants.DefaultTournamentSize,
			CrossoverMethod:   constants.CrossoverUniform,
			ElitismCount:      1,
			MutationRate:      constants.DefaultMutationRate,
			MutationStrength:  constants.DefaultMutationStrength,
			Seed:              constants.DefaultSeed,
			ParallelWorkers:   constants.DefaultParallelWorkers,
		},
		Objectives: []types.ObjectiveConfig{},
		Output: types.OutputConfig{
			Dir:                constants.OutputDir,
			CheckpointInterval: constants.DefaultCheckpointInterval,
			WriteCharts:        true,
			Verbose:            false,
		},
	}
}

// CreateDefaultConfig creates a default configuration file
func CreateDefaultConfig(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	manager := NewManager()
	return manager.Save(path)
}
