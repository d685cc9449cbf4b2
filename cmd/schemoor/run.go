package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiihann/schemoor/config"
	"github.com/weiihann/schemoor/harness"
	"github.com/weiihann/schemoor/history"
	"github.com/weiihann/schemoor/report"
)

type runOptions struct {
	selection

	iterations   int
	rounds       int
	warmupRounds int
	historyPath  string
	record       bool
	outputJSON   bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run validation benchmarks across libraries",
		Long: `Build every selected case (dataset x variant x mode), time it and
print a table per dataset group, with the accept/reject outcome of every case
checked for agreement.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, a, &opts.selection)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("iterations") {
				cfg.Iterations = opts.iterations
			}
			if flags.Changed("rounds") {
				cfg.Rounds = opts.rounds
			}
			if flags.Changed("warmup-rounds") {
				cfg.WarmupRounds = opts.warmupRounds
			}
			if flags.Changed("history") {
				cfg.History = opts.historyPath
			}

			if err := cfg.Harness().Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if opts.record && cfg.History == "" {
				return fmt.Errorf("--record needs --history or a history path in the config")
			}

			return runBenchmark(cmd, a.logger, cfg, opts)
		},
	}

	addSelectionFlags(cmd, &opts.selection)

	def := harness.DefaultConfig()

	flags := cmd.Flags()
	flags.IntVar(&opts.iterations, "iterations", def.Iterations,
		"Unit calls per timed round")
	flags.IntVar(&opts.rounds, "rounds", def.Rounds,
		"Timed rounds per case")
	flags.IntVar(&opts.warmupRounds, "warmup-rounds", def.WarmupRounds,
		"Untimed rounds before measuring")
	flags.StringVar(&opts.historyPath, "history", "",
		"SQLite file to record runs into")
	flags.BoolVar(&opts.record, "record", false,
		"Record the run into the history database")
	flags.BoolVar(&opts.outputJSON, "json", false,
		"Output results as JSON instead of tables")

	return cmd
}

func runBenchmark(
	cmd *cobra.Command,
	logger *slog.Logger,
	cfg config.Config,
	opts runOptions,
) error {
	ctx := cmd.Context()
	hcfg := cfg.Harness()

	m, _, err := buildMatrix(ctx, logger, cfg)
	if err != nil {
		return err
	}

	total := len(m.IDs())
	if total == 0 {
		return fmt.Errorf("no cases selected")
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.Int("cases", total),
		slog.Int("iterations", hcfg.Iterations),
		slog.Int("rounds", hcfg.Rounds),
		slog.Int("warmup_rounds", hcfg.WarmupRounds),
	)

	prog := newProgress(cmd.ErrOrStderr(), total)

	runner := harness.NewRunner(hcfg, logger)
	runner.OnCase = prog.step

	started := time.Now()

	results, err := runner.RunAll(ctx, m.Cases())
	prog.stop(err)

	if err != nil {
		return fmt.Errorf("run benchmark: %w", err)
	}

	run := history.NewRun(started, hcfg, results)

	if opts.record {
		if err := recordRun(ctx, logger, cfg.History, run); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()

	if opts.outputJSON {
		doc := report.Document{
			RunID:     run.ID.String(),
			StartedAt: run.StartedAt,
			Config:    hcfg,
			Results:   results,
		}
		if err := report.GenerateJSON(out, doc); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(out, results); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.String("run_id", run.ID.String()),
		slog.Duration("elapsed", time.Since(started)),
	)

	return nil
}

func recordRun(
	ctx context.Context,
	logger *slog.Logger,
	path string,
	run history.Run,
) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Record(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	logger.InfoContext(ctx, "run recorded",
		slog.String("run_id", run.ID.String()),
		slog.String("history", path),
	)

	return nil
}
