package harness

import (
	"math"
	"slices"

	"golang.org/x/perf/benchmath"
)

// Confidence is the level of the interval reported around the median.
const Confidence = 0.95

// Stats summarises per-call durations in nanoseconds.
type Stats struct {
	Min    float64
	Max    float64
	Median float64

	// Lo and Hi bound the median at Confidence. Both are zero when the
	// sample is too small to bound it.
	Lo float64
	Hi float64
}

// Summarize computes Stats over samples without assuming a distribution.
// An empty input yields zero Stats.
func Summarize(samples []float64) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	// NewSample sorts its input
	s := benchmath.NewSample(slices.Clone(samples), &benchmath.DefaultThresholds)
	sum := benchmath.AssumeNothing.Summary(s, Confidence)

	st := Stats{
		Min:    slices.Min(samples),
		Max:    slices.Max(samples),
		Median: sum.Center,
	}

	if finite(sum.Lo) && finite(sum.Hi) {
		st.Lo, st.Hi = sum.Lo, sum.Hi
	}

	return st
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
