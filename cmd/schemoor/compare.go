package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/schemoor/config"
	"github.com/weiihann/schemoor/history"
	"github.com/weiihann/schemoor/report"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		historyPath string
		against     string
		window      int
		failAbove   float64
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the latest recorded run with earlier runs",
		Long: `Compare the median cost per call of every case in the latest recorded
run with the previous run (--against prev) or with the mean of the previous
N runs (--against avg --n N).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg := config.Default()
			if a.configPath != "" {
				var err error

				cfg, err = config.Load(a.configPath)
				if err != nil {
					return err
				}
			}

			if cmd.Flags().Changed("history") {
				cfg.History = historyPath
			}
			if cfg.History == "" {
				return fmt.Errorf("--history or a history path in the config is required")
			}

			base, err := history.ParseAgainst(against)
			if err != nil {
				return err
			}

			limit := 2
			if base == history.AgainstAvg {
				if window < 1 {
					return fmt.Errorf("--n must be >= 1, got %d", window)
				}
				limit = window + 1
			}

			store, err := history.Open(cfg.History)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("load runs: %w", err)
			}

			cmp, err := history.Compare(runs, base, window)
			if err != nil {
				return fmt.Errorf("compare runs: %w", err)
			}

			if err := report.GenerateComparison(cmd.OutOrStdout(), cmp); err != nil {
				return fmt.Errorf("generate comparison: %w", err)
			}

			if !cmd.Flags().Changed("fail-above") {
				return nil
			}

			// only significant slowdowns count
			worst, ok := cmp.WorstRegression()
			if ok && worst.ChangePct > failAbove {
				a.logger.WarnContext(ctx, "regression above threshold",
					slog.String("case", worst.ID),
					slog.Float64("change_pct", worst.ChangePct),
					slog.Float64("p", worst.P),
					slog.Int("regressions", len(cmp.Regressions(failAbove))),
				)

				return fmt.Errorf("%s regressed by %.1f%% (threshold %.1f%%)",
					worst.ID, worst.ChangePct, failAbove)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&historyPath, "history", "",
		"SQLite history file")
	flags.StringVar(&against, "against", string(history.AgainstPrev),
		"Baseline: prev or avg")
	flags.IntVar(&window, "n", 5,
		"Number of earlier runs averaged with --against avg")
	flags.Float64Var(&failAbove, "fail-above", 0,
		"Exit non-zero when any case is significantly slower than the baseline by more than this percentage")

	return cmd
}
