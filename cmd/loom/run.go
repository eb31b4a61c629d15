package main

import (
	"fmt"
	"time"

	"github.com/cuemby/loom/cmd/loom/scenarios"
	"github.com/cuemby/loom/pkg/log"
	"github.com/cuemby/loom/pkg/metrics"
	"github.com/cuemby/loom/pkg/report"
	"github.com/cuemby/loom/pkg/scheduler"
	"github.com/cuemby/loom/pkg/settings"
	"github.com/cuemby/loom/pkg/types"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Replay a bundled scenario for N iterations under a chosen strategy",
	Long: `Run drives one of the bundled scenarios (see 'loom list') through the
scheduler once per iteration, each under a fresh seed, and reports which
seeds (if any) exposed a bug: a lost update, an over-capacity semaphore, or
a deadlock.

A scenarios.yaml file loaded via --config supplies default iteration counts
and strategy parameters per scenario name; any flag explicitly set on the
command line overrides the corresponding config value.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("config", "", "Path to a scenarios.yaml file of per-scenario defaults")
	runCmd.Flags().Uint64("seed", uint64(time.Now().UnixNano()), "Seed for the first iteration; each subsequent iteration increments it by one")
	runCmd.Flags().Int("iterations", 100, "Number of iterations to replay")
	runCmd.Flags().String("strategy", "pct", "Exploration strategy: random, pct, or none")
	runCmd.Flags().Int("probability", 100, "Switch probability in [0,100] for the random strategy")
	runCmd.Flags().Int("max-priority-switches", 3, "Maximum priority changes per iteration for the pct strategy")
	runCmd.Flags().String("data-dir", "", "If set, persist a report per iteration to <data-dir>/loom.db")
	runCmd.Flags().String("metrics-addr", "", "If set, serve Prometheus metrics on this address while running (e.g. 127.0.0.1:9090)")
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	var fileCfg *Config
	if configPath != "" {
		loaded, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		fileCfg = loaded
	}

	if len(args) == 0 {
		if fileCfg == nil {
			return fmt.Errorf("specify a scenario name or --config with a scenarios.yaml to run all of them")
		}
		for _, entry := range fileCfg.Scenarios {
			if err := runOne(cmd, entry.Name, fileCfg); err != nil {
				return err
			}
		}
		return nil
	}

	return runOne(cmd, args[0], fileCfg)
}

func runOne(cmd *cobra.Command, name string, fileCfg *Config) error {
	sc, err := scenarios.Find(name)
	if err != nil {
		return err
	}

	entry := ScenarioConfig{
		Iterations:          100,
		Strategy:            "pct",
		Seed:                uint64(time.Now().UnixNano()),
		Probability:         100,
		MaxPrioritySwitches: 3,
	}
	if fileCfg != nil {
		if fromFile := fileCfg.Find(name); fromFile != nil {
			entry = *fromFile
		}
	}
	if cmd.Flags().Changed("seed") {
		entry.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("iterations") {
		entry.Iterations, _ = cmd.Flags().GetInt("iterations")
	}
	if cmd.Flags().Changed("strategy") {
		entry.Strategy, _ = cmd.Flags().GetString("strategy")
	}
	if cmd.Flags().Changed("probability") {
		entry.Probability, _ = cmd.Flags().GetInt("probability")
	}
	if cmd.Flags().Changed("max-priority-switches") {
		entry.MaxPrioritySwitches, _ = cmd.Flags().GetInt("max-priority-switches")
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	var store report.Store
	if dataDir != "" {
		store, err = report.NewBoltStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to open report store: %w", err)
		}
		defer store.Close()
	}

	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if metricsAddr != "" {
		stop := serveMetrics(metricsAddr)
		defer stop()
	}

	logger := log.WithScenario(name)
	logger.Info().Int("iterations", entry.Iterations).Str("strategy", entry.Strategy).Uint64("seed", entry.Seed).Msg("starting run")

	failures := 0
	for i := 0; i < entry.Iterations; i++ {
		seed := entry.Seed + uint64(i)
		cfg, err := buildSettings(entry.Strategy, seed, entry.Probability, entry.MaxPrioritySwitches)
		if err != nil {
			return err
		}

		startedAt := time.Now()
		iterErr := sc.Run(scheduler.New(), cfg)
		finishedAt := time.Now()

		outcome := report.OutcomeSuccess
		if iterErr != nil {
			failures++
			outcome = report.OutcomeFailure
			if se, ok := iterErr.(*types.Error); ok && se.Code == types.Failure {
				outcome = report.OutcomeDeadlock
			}
			logger.Warn().Uint64("seed", seed).Str("outcome", string(outcome)).Err(iterErr).Msg("iteration found a bug")
		} else {
			logger.Debug().Uint64("seed", seed).Msg("iteration passed")
		}
		metrics.IterationsByOutcome.WithLabelValues(string(outcome)).Inc()

		if store != nil {
			if err := store.SaveReport(&report.Report{
				ID:         uuid.NewString(),
				Scenario:   name,
				Strategy:   entry.Strategy,
				Seed:       seed,
				Outcome:    outcome,
				StartedAt:  startedAt,
				FinishedAt: finishedAt,
				Detail:     errString(iterErr),
			}); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
		}
	}

	fmt.Printf("%s: %d/%d iterations found a bug (seeds %d..%d)\n", name, failures, entry.Iterations, entry.Seed, entry.Seed+uint64(entry.Iterations)-1)
	if failures > 0 {
		return fmt.Errorf("%s: %d of %d iterations found a bug", name, failures, entry.Iterations)
	}
	return nil
}

func buildSettings(strategyName string, seed uint64, probability, maxPrioritySwitches int) (*settings.Settings, error) {
	cfg := settings.New()
	switch settings.StrategyType(strategyName) {
	case settings.StrategyRandom:
		if probability != 100 {
			if err := cfg.UseRandomStrategyWithProbability(seed, probability); err != nil {
				return nil, err
			}
		} else {
			cfg.UseRandomStrategy(seed)
		}
	case settings.StrategyPCT:
		cfg.UsePCTStrategy(seed, maxPrioritySwitches)
	case settings.StrategyNone:
		cfg.DisableScheduling()
	default:
		return nil, fmt.Errorf("unknown strategy %q (want random, pct, or none)", strategyName)
	}
	return cfg, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
