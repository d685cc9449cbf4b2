package history

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/perf/benchmath"
)

// ErrNotEnoughRuns is returned when there is nothing to compare against.
var ErrNotEnoughRuns = errors.New("not enough recorded runs")

// Against selects the baseline of a comparison.
type Against string

const (
	// AgainstPrev compares with the run right before the latest one.
	AgainstPrev Against = "prev"
	// AgainstAvg compares with the average of a window of earlier runs.
	AgainstAvg Against = "avg"
)

// ParseAgainst validates a baseline name.
func ParseAgainst(s string) (Against, error) {
	switch Against(s) {
	case AgainstPrev, AgainstAvg:
		return Against(s), nil
	default:
		return "", fmt.Errorf("unknown baseline %q (want prev or avg)", s)
	}
}

// Delta is the change of one case's median between baseline and current run.
type Delta struct {
	ID         string
	BaselineNs float64
	CurrentNs  float64
	ChangePct  float64

	// P is the Mann-Whitney U-test p-value of the per-round samples and
	// Significant reports P < Alpha. Cases without samples on either side
	// get P = 1.
	P           float64
	Significant bool
}

// Comparison is the latest run measured against a baseline.
type Comparison struct {
	Against  Against
	Alpha    float64
	Current  uuid.UUID
	Baseline []uuid.UUID
	Deltas   []Delta

	// Added holds cases only in the current run, Removed cases only in the
	// baseline.
	Added   []string
	Removed []string
}

// Compare measures runs[0] against runs[1] (prev) or the mean of up to n
// runs after it (avg). runs must be ordered newest first, as Recent returns
// them. The baseline samples of a case are pooled across the window before
// testing for a significant change.
func Compare(runs []Run, against Against, n int) (Comparison, error) {
	if len(runs) < 2 {
		return Comparison{}, fmt.Errorf("%w: have %d, need 2", ErrNotEnoughRuns, len(runs))
	}

	var baseline []Run

	switch against {
	case AgainstPrev:
		baseline = runs[1:2]
	case AgainstAvg:
		if n < 1 {
			return Comparison{}, fmt.Errorf("average window must be >= 1, got %d", n)
		}
		baseline = runs[1:min(len(runs), n+1)]
	default:
		return Comparison{}, fmt.Errorf("unknown baseline %q", against)
	}

	current := runs[0]
	cmp := Comparison{
		Against: against,
		Alpha:   benchmath.DefaultThresholds.CompareAlpha,
		Current: current.ID,
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	pooled := make(map[string][]float64)

	var order []string

	for _, run := range baseline {
		cmp.Baseline = append(cmp.Baseline, run.ID)

		for _, r := range run.Results {
			if counts[r.ID] == 0 {
				order = append(order, r.ID)
			}
			sums[r.ID] += r.MedianNs
			counts[r.ID]++
			pooled[r.ID] = append(pooled[r.ID], r.SamplesNs...)
		}
	}

	seen := make(map[string]bool)

	for _, r := range current.Results {
		seen[r.ID] = true

		if counts[r.ID] == 0 {
			cmp.Added = append(cmp.Added, r.ID)

			continue
		}

		base := sums[r.ID] / float64(counts[r.ID])
		p := significance(pooled[r.ID], r.SamplesNs)
		cmp.Deltas = append(cmp.Deltas, Delta{
			ID:          r.ID,
			BaselineNs:  base,
			CurrentNs:   r.MedianNs,
			ChangePct:   ChangePct(base, r.MedianNs),
			P:           p,
			Significant: p < cmp.Alpha,
		})
	}

	for _, id := range order {
		if !seen[id] {
			cmp.Removed = append(cmp.Removed, id)
		}
	}

	return cmp, nil
}

// significance returns the U-test p-value of base against cur.
func significance(base, cur []float64) float64 {
	if len(base) == 0 || len(cur) == 0 {
		return 1
	}

	// NewSample sorts its input
	b := benchmath.NewSample(slices.Clone(base), &benchmath.DefaultThresholds)
	c := benchmath.NewSample(slices.Clone(cur), &benchmath.DefaultThresholds)

	res := benchmath.AssumeNothing.Compare(b, c)
	if math.IsNaN(res.P) {
		return 1
	}

	return res.P
}

// ChangePct returns the relative change from base to cur in percent.
// A zero base yields zero.
func ChangePct(base, cur float64) float64 {
	if base == 0 {
		return 0
	}

	return (cur - base) / base * 100
}

// WorstRegression returns the delta with the largest significant slowdown,
// if any case got significantly slower.
func (c Comparison) WorstRegression() (Delta, bool) {
	var (
		worst Delta
		found bool
	)

	for _, d := range c.Deltas {
		if d.Significant && d.ChangePct > 0 && (!found || d.ChangePct > worst.ChangePct) {
			worst = d
			found = true
		}
	}

	return worst, found
}

// Regressions returns the significant deltas slower than the baseline by
// more than pct.
func (c Comparison) Regressions(pct float64) []Delta {
	var out []Delta

	for _, d := range c.Deltas {
		if d.Significant && d.ChangePct > pct {
			out = append(out, d)
		}
	}

	return out
}
