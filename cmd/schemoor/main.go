// Package main provides the CLI entry point for schemoor, a cross-library
// JSON Schema validation benchmarking tool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "schemoor",
		Short: "Cross-library JSON Schema validation benchmarking tool",
		Long: `Schemoor benchmarks JSON Schema validator libraries by running the
same schema and instance through each library, once with a pre-compiled
validator and once with a one-shot call, and comparing the cost per call.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(a.logLevel, a.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a.logger = logger

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "",
		"Path to a YAML run configuration")
	flags.StringVar(&a.logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "text",
		"Log format: text, json")

	root.AddCommand(
		newRunCmd(a),
		newListCmd(a),
		newCheckCmd(a),
		newCompareCmd(a),
	)

	return root
}
