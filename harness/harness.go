package harness

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/weiihann/schemoor/scenario"
)

// ErrOutcomeChanged is returned when a unit stops giving the answer of its
// first call.
var ErrOutcomeChanged = errors.New("outcome changed between calls")

// Config holds the measurement parameters shared by every case.
type Config struct {
	Iterations   int `json:"iterations"`
	Rounds       int `json:"rounds"`
	WarmupRounds int `json:"warmup_rounds"`
}

// DefaultConfig returns 10 iterations per round, 10 timed rounds and
// 10 warmup rounds.
func DefaultConfig() Config {
	return Config{Iterations: 10, Rounds: 10, WarmupRounds: 10}
}

// Validate checks the config for non-positive counts.
func (c Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be >= 1, got %d", c.Iterations)
	}
	if c.Rounds < 1 {
		return fmt.Errorf("rounds must be >= 1, got %d", c.Rounds)
	}
	if c.WarmupRounds < 0 {
		return fmt.Errorf("warmup rounds must be >= 0, got %d", c.WarmupRounds)
	}

	return nil
}

// Runner times cases one after another.
type Runner struct {
	Config Config
	Logger *slog.Logger

	// OnCase, if set, is called with each case ID before it is measured.
	OnCase func(id string)
}

// NewRunner creates a Runner.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	return &Runner{
		Config: cfg,
		Logger: logger,
	}
}

// Run measures a single case. Each round performs Config.Iterations calls
// and contributes one per-call sample. The context is checked between
// rounds only.
func (r *Runner) Run(ctx context.Context, c scenario.Case) (*Result, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid harness config: %w", err)
	}

	id := c.ID()
	logger := r.Logger.With(slog.String("case", id))

	// the first call fixes the outcome every later call must reproduce
	valid, err := c.Unit.Call()
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", id, err)
	}

	for range r.Config.WarmupRounds {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("case %s interrupted: %w", id, err)
		}

		if _, err := r.round(c, valid); err != nil {
			return nil, fmt.Errorf("case %s warmup: %w", id, err)
		}
	}

	samples := make([]float64, 0, r.Config.Rounds)
	start := time.Now()

	for range r.Config.Rounds {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("case %s interrupted: %w", id, err)
		}

		elapsed, err := r.round(c, valid)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", id, err)
		}

		samples = append(samples, float64(elapsed.Nanoseconds())/float64(r.Config.Iterations))
	}

	total := time.Since(start)
	stats := Summarize(samples)

	logger.DebugContext(ctx, "case measured",
		slog.Bool("valid", valid),
		slog.Float64("median_ns", stats.Median),
		slog.Duration("elapsed", total),
	)

	return &Result{
		ID:          id,
		Group:       c.Group,
		Variant:     c.Variant.Name(),
		Mode:        string(c.Mode),
		RawCompiles: c.Variant.RawCompiles,
		Valid:       valid,
		Iterations:  r.Config.Iterations,
		Rounds:      r.Config.Rounds,
		MinNs:       stats.Min,
		MaxNs:       stats.Max,
		MedianNs:    stats.Median,
		LoNs:        stats.Lo,
		HiNs:        stats.Hi,
		SamplesNs:   samples,
		ElapsedMs:   total.Milliseconds(),
	}, nil
}

func (r *Runner) round(c scenario.Case, want bool) (time.Duration, error) {
	var changed bool

	start := time.Now()

	for range r.Config.Iterations {
		ok, err := c.Unit.Call()
		if err != nil {
			return 0, err
		}
		if ok != want {
			changed = true
		}
	}

	elapsed := time.Since(start)

	if changed {
		return 0, fmt.Errorf("%w: first call returned %t", ErrOutcomeChanged, want)
	}

	return elapsed, nil
}

// RunAll measures every case in order and stops at the first error.
func (r *Runner) RunAll(
	ctx context.Context,
	cases iter.Seq2[scenario.Case, error],
) ([]*Result, error) {
	var results []*Result

	for c, err := range cases {
		if err != nil {
			return results, err
		}

		if r.OnCase != nil {
			r.OnCase(c.ID())
		}

		res, err := r.Run(ctx, c)
		if err != nil {
			return results, err
		}

		results = append(results, res)
	}

	r.Logger.InfoContext(ctx, "benchmark finished",
		slog.Int("cases", len(results)),
	)

	return results, nil
}
