package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tradewinds-ai/evoengine-go/internal/constants"
	"github.com/tradewinds-ai/evoengine-go/internal/types"
	"github.com/tradewinds-ai/evoengine-go/pkg/config"
	"github.com/tradewinds-ai/evoengine-go/pkg/engine"
	"github.com/tradewinds-ai/evoengine-go/pkg/genome"
	"github.com/tradewinds-ai/evoengine-go/pkg/oracle"
	"github.com/tradewinds-ai/evoengine-go/pkg/pareto"
	"github.com/tradewinds-ai/evoengine-go/pkg/report"
)

var (
	cfgFile string
	target  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "evoctl",
		Short:   constants.Description,
		Version: constants.Version,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to yaml configuration file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single-objective evolution against the peak benchmark oracle",
		RunE:  runSingle,
	}
	runCmd.Flags().Float64Var(&target, "target", 0.3, "optimum location of the peak benchmark")

	paretoCmd := &cobra.Command{
		Use:   "pareto",
		Short: "Run a two-objective return/risk trade-off evolution",
		RunE:  runPareto,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a default configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return config.CreateDefaultConfig(args[0])
		},
	}

	rootCmd.AddCommand(runCmd, paretoCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(constants.ExitError)
	}
}

// loadConfig reads the configured yaml file, or falls back to defaults
func loadConfig() (*types.Config, error) {
	manager := config.NewManager()
	if cfgFile != "" {
		if err := manager.Load(cfgFile); err != nil {
			return nil, err
		}
	}
	return manager.GetConfig(), nil
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// benchmarkTemplate is the one-gene genome the built-in benchmarks
// optimize over
func benchmarkTemplate() (*genome.Genome, error) {
	return genome.New([]genome.Chromosome{
		{
			ID:   "params",
			Kind: genome.ChromosomePerformance,
			Genes: []genome.Gene{
				{ID: "x", Kind: genome.GeneNumeric, Value: 0.5, Min: 0, Max: 1},
			},
			Expression: 1.0,
		},
	})
}

func runSingle(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Output.Verbose)

	template, err := benchmarkTemplate()
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg.Evolution, template)
	if err != nil {
		return err
	}
	eng.SetLogger(logger)

	if err := eng.InitializePopulation(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bench := oracle.PeakOracle{GeneID: "x", Target: target}
	checkpointDir := filepath.Join(cfg.Output.Dir, constants.CheckpointDir)

	start := time.Now()
	for i := 0; i < cfg.Evolution.MaxGenerations; i++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run interrupted, keeping last completed generation")
			break
		}
		if err := eng.Score(ctx, bench); err != nil {
			return err
		}
		history := eng.History()
		fmt.Println(report.Render(history[len(history)-1]))

		if (i+1)%cfg.Output.CheckpointInterval == 0 {
			if err := eng.SaveCheckpoint(checkpointDir); err != nil {
				logger.WithError(err).Warn("Failed to save checkpoint")
			}
		}

		if err := eng.EvolveGeneration(); err != nil {
			return err
		}
	}

	if err := eng.Score(ctx, bench); err != nil {
		return err
	}
	if err := eng.SaveCheckpoint(checkpointDir); err != nil {
		logger.WithError(err).Warn("Failed to save final checkpoint")
	}

	best := eng.Best()
	logger.WithFields(logrus.Fields{
		"generations": eng.Generation(),
		"best":        best.Fitness,
		"elapsed":     humanize.RelTime(start, time.Now(), "", ""),
	}).Info("Evolution complete")

	if x, ok := best.GeneValue("x"); ok {
		fmt.Printf("best genome %s: x=%.4f fitness=%.4f\n", best.ID[:8], x, best.Fitness)
	}

	if cfg.Output.WriteCharts {
		chartPath := filepath.Join(cfg.Output.Dir, constants.ChartsDir, "convergence.html")
		if err := report.WriteConvergenceChart(eng.History(), chartPath); err != nil {
			return err
		}
		fmt.Printf("convergence chart written to %s\n", chartPath)
	}

	return nil
}

func runPareto(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Output.Verbose)

	objConfigs := cfg.Objectives
	if len(objConfigs) == 0 {
		objConfigs = []types.ObjectiveConfig{
			{Name: oracle.ObjectiveReturn, Direction: constants.DirectionMaximize},
			{Name: oracle.ObjectiveRisk, Direction: constants.DirectionMinimize},
		}
	}
	objectives, err := pareto.ObjectivesFromConfig(objConfigs)
	if err != nil {
		return err
	}

	template, err := benchmarkTemplate()
	if err != nil {
		return err
	}

	eng, err := pareto.New(cfg.Evolution, objectives, template)
	if err != nil {
		return err
	}
	eng.SetLogger(logger)

	if err := eng.InitializePopulation(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bench := oracle.TradeoffOracle{GeneID: "x"}

	for i := 0; i < cfg.Evolution.MaxGenerations; i++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run interrupted, keeping last completed generation")
			break
		}
		if err := eng.Score(ctx, bench); err != nil {
			return err
		}
		history := eng.History()
		fmt.Println(report.Render(history[len(history)-1]))

		if err := eng.EvolveGeneration(); err != nil {
			return err
		}
	}

	if err := eng.Score(ctx, bench); err != nil {
		return err
	}

	front, err := eng.FrontZero()
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"generations": eng.Generation(),
		"front0":      len(front),
	}).Info("Pareto evolution complete")

	if cfg.Output.WriteCharts {
		points := make([]report.FrontPoint, len(front))
		for i, g := range front {
			points[i] = report.FrontPoint{
				X: g.Objectives[oracle.ObjectiveReturn],
				Y: g.Objectives[oracle.ObjectiveRisk],
			}
		}
		chartPath := filepath.Join(cfg.Output.Dir, constants.ChartsDir, "front.html")
		if err := report.WriteFrontChart(points, oracle.ObjectiveReturn, oracle.ObjectiveRisk, chartPath); err != nil {
			return err
		}
		fmt.Printf("front chart written to %s\n", chartPath)
	}

	return nil
}
