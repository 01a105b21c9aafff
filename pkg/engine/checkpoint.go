package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tradewinds-ai/evoengine-go/internal/constants"
	"github.com/tradewinds-ai/evoengine-go/internal/types"
	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
)

// Checkpoint is the serialized engine state. Genomes keep their gene
// values, generation, parent ids and fitness, so lineage can be
// reconstructed by walking parent_ids back to generation zero.
type Checkpoint struct {
	Version    string                  `json:"version"`
	CreatedAt  time.Time               `json:"created_at"`
	Generation int                     `json:"generation"`
	Scored     bool                    `json:"scored"`
	Population []*genome.Genome        `json:"population"`
	History    []types.GenerationStats `json:"history"`
}

// SaveCheckpoint writes the engine state to checkpoint_<gen>.json in dir
// and refreshes latest.json
func (e *Engine) SaveCheckpoint(dir string) error {
	if e.state == StateUninitialized {
		return &NotReadyError{Op: "checkpoint", State: string(e.state)}
	}

	checkpoint := &Checkpoint{
		Version:    constants.CheckpointVersion,
		CreatedAt:  time.Now(),
		Generation: e.generation,
		Scored:     e.scored,
		Population: e.population,
		History:    e.history,
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	checkpointFile := filepath.Join(dir, fmt.Sprintf("checkpoint_%d.json", e.generation))
	if err := os.WriteFile(checkpointFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}

	latestFile := filepath.Join(dir, "latest.json")
	if err := os.WriteFile(latestFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write latest checkpoint: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"generation": e.generation,
		"file":       checkpointFile,
	}).Info("Saved checkpoint")

	return nil
}

// LoadCheckpoint restores engine state from a checkpoint file
func (e *Engine) LoadCheckpoint(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}

	if len(checkpoint.Population) == 0 {
		return &InvariantError{Reason: fmt.Sprintf("checkpoint %s holds an empty population", path)}
	}
	for _, g := range checkpoint.Population {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("checkpoint %s holds an invalid genome: %w", path, err)
		}
	}

	e.population = checkpoint.Population
	e.generation = checkpoint.Generation
	e.scored = checkpoint.Scored
	e.history = checkpoint.History
	e.state = StateReady

	e.logger.WithFields(logrus.Fields{
		"generation": checkpoint.Generation,
		"population": len(checkpoint.Population),
		"file":       path,
	}).Info("Loaded checkpoint")

	return nil
}
