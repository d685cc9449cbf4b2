// Package harness times benchmark cases by calling their units repeatedly.
package harness

// Result holds the timings of one case. Every duration is per unit call.
type Result struct {
	ID          string  `json:"id"`
	Group       string  `json:"group"`
	Variant     string  `json:"variant"`
	Mode        string  `json:"mode"`
	RawCompiles bool    `json:"raw_compiles"`
	Valid       bool    `json:"valid"`
	Iterations  int     `json:"iterations"`
	Rounds      int     `json:"rounds"`
	MinNs       float64 `json:"min_ns"`
	MaxNs       float64 `json:"max_ns"`
	MedianNs    float64 `json:"median_ns"`

	// LoNs and HiNs are the confidence interval of MedianNs, zero when
	// there were too few rounds.
	LoNs float64 `json:"lo_ns"`
	HiNs float64 `json:"hi_ns"`

	// SamplesNs holds one sample per timed round, in round order.
	SamplesNs []float64 `json:"samples_ns"`
	ElapsedMs int64     `json:"elapsed_ms"`
}

// Calls returns the number of timed unit calls behind the result.
func (r *Result) Calls() int {
	return r.Iterations * r.Rounds
}
