package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/weiihann/schemoor/config"
	"github.com/weiihann/schemoor/dataset"
	"github.com/weiihann/schemoor/scenario"
	"github.com/weiihann/schemoor/variant"
)

// selection holds the flags shared by commands that build the case matrix.
type selection struct {
	groups   []string
	variants []string
	modes    []string
	fixtures string

	generate     int
	distribution string
	seed         int64
}

func addSelectionFlags(cmd *cobra.Command, s *selection) {
	flags := cmd.Flags()
	flags.StringSliceVar(&s.groups, "group", nil,
		"Dataset groups to include (glob patterns, e.g. small,big)")
	flags.StringSliceVar(&s.variants, "variant", nil,
		"Variants to include (glob patterns, e.g. 'jsonschema-v5/*')")
	flags.StringSliceVar(&s.modes, "mode", nil,
		"Modes to include (glob patterns over compiled, raw)")
	flags.StringVar(&s.fixtures, "fixtures", "",
		"Directory to load fixture files from (default: embedded)")
	flags.IntVar(&s.generate, "generate", 0,
		"Add a generated dataset with this many records")
	flags.StringVar(&s.distribution, "distribution", dataset.DistributionPowerLaw,
		"Tag distribution of the generated dataset: power-law, uniform, exponential")
	flags.Int64Var(&s.seed, "seed", 1,
		"Random seed of the generated dataset")
}

// resolveConfig loads the config file, if any, and applies the flags the
// user set explicitly on top of it.
func resolveConfig(cmd *cobra.Command, a *app, s *selection) (config.Config, error) {
	cfg := config.Default()

	if a.configPath != "" {
		var err error

		cfg, err = config.Load(a.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()

	if flags.Changed("group") {
		cfg.Groups = s.groups
	}
	if flags.Changed("variant") {
		cfg.Variants = s.variants
	}
	if flags.Changed("mode") {
		cfg.Modes = s.modes
	}
	if flags.Changed("fixtures") {
		cfg.Fixtures = s.fixtures
	}

	if flags.Changed("generate") || flags.Changed("distribution") || flags.Changed("seed") {
		if cfg.Generated == nil {
			cfg.Generated = &config.Generated{
				MinTags:      1,
				MaxTags:      16,
				Distribution: s.distribution,
				Seed:         s.seed,
			}
		}
		if flags.Changed("generate") {
			cfg.Generated.Items = s.generate
		}
		if flags.Changed("distribution") {
			cfg.Generated.Distribution = s.distribution
		}
		if flags.Changed("seed") {
			cfg.Generated.Seed = s.seed
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadRegistry loads the fixtures and appends the generated dataset, if
// configured. Any failure here is fatal.
func loadRegistry(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
) (*dataset.Registry, error) {
	var (
		reg *dataset.Registry
		err error
	)

	if cfg.Fixtures != "" {
		reg, err = dataset.Load(os.DirFS(cfg.Fixtures))
	} else {
		reg, err = dataset.Default()
	}

	if err != nil {
		return nil, fmt.Errorf("load datasets: %w", err)
	}

	if cfg.Generated == nil {
		return reg, nil
	}

	ds, summary, err := dataset.NewGenerator(cfg.GeneratorConfig()).Generate()
	if err != nil {
		return nil, fmt.Errorf("generate dataset: %w", err)
	}

	logger.InfoContext(ctx, "dataset generated",
		slog.String("name", ds.Name),
		slog.Int("records", summary.Records),
		slog.Int("tags", summary.Tags),
		slog.Int("owned", summary.Owned),
		slog.Int("bytes", summary.Bytes),
	)

	return reg.WithDataset(ds)
}

// buildMatrix also returns the catalog so callers can report what it left
// out.
func buildMatrix(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
) (*scenario.Matrix, *variant.Catalog, error) {
	reg, err := loadRegistry(ctx, logger, cfg)
	if err != nil {
		return nil, nil, err
	}

	cat := variant.NewCatalog(logger, variant.Registered())

	logger.DebugContext(ctx, "matrix ready",
		slog.Int("datasets", reg.Len()),
		slog.Int("variants", len(cat.Available())),
		slog.Int("omitted", len(cat.Omitted())),
	)

	return scenario.NewMatrix(reg, cat, cfg.Selector()), cat, nil
}
