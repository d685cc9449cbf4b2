package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/weiihann/schemoor/variant"
)

func newListCmd(a *app) *cobra.Command {
	var (
		sel     selection
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the selected case IDs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, a, &sel)
			if err != nil {
				return err
			}

			m, cat, err := buildMatrix(cmd.Context(), a.logger, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if !verbose {
				for _, id := range m.IDs() {
					fmt.Fprintln(out, id)
				}

				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CASE\tCONVENTION\tCOMPILES PER CALL")

			for _, e := range m.Entries() {
				compiles := "no"
				if e.Mode == variant.ModeRaw && e.Variant.RawCompiles {
					compiles = "yes"
				}

				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID(), e.Variant.Convention, compiles)
			}

			if err := tw.Flush(); err != nil {
				return err
			}

			writeUnavailable(out, cat.Omitted())

			return nil
		},
	}

	addSelectionFlags(cmd, &sel)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Show the calling convention and per-call compilation of each case")

	return cmd
}

// writeUnavailable prints one footer line per omitted implementation, sorted
// by name.
func writeUnavailable(w io.Writer, omitted map[string]error) {
	if len(omitted) == 0 {
		return
	}

	fmt.Fprintln(w)

	for _, name := range slices.Sorted(maps.Keys(omitted)) {
		fmt.Fprintf(w, "unavailable: %s (%v)\n", name, omitted[name])
	}
}
