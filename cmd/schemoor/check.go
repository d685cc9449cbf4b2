package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/schemoor/report"
	"github.com/weiihann/schemoor/scenario"
)

var errDisagreement = errors.New("validators disagree")

func newCheckCmd(a *app) *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every case once and verify the outcomes agree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := resolveConfig(cmd, a, &sel)
			if err != nil {
				return err
			}

			m, _, err := buildMatrix(ctx, a.logger, cfg)
			if err != nil {
				return err
			}

			agreement, err := scenario.Check(ctx, m.Cases())
			if err != nil {
				return fmt.Errorf("check cases: %w", err)
			}

			if err := report.GenerateAgreement(cmd.OutOrStdout(), agreement); err != nil {
				return fmt.Errorf("generate agreement report: %w", err)
			}

			if !agreement.OK() {
				return errDisagreement
			}

			a.logger.InfoContext(ctx, "all outcomes agree",
				slog.Int("groups", len(agreement.Groups)),
			)

			return nil
		},
	}

	addSelectionFlags(cmd, &sel)

	return cmd
}
