// Package report formats benchmark results into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/weiihann/schemoor/harness"
)

var printer = message.NewPrinter(language.English)

// Document is the JSON form of a run.
type Document struct {
	RunID     string            `json:"run_id,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	Config    harness.Config    `json:"config"`
	Results   []*harness.Result `json:"results"`
}

// Generate writes one markdown table per dataset group. Groups keep the
// order in which they first appear in results.
func Generate(w io.Writer, results []*harness.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "## Benchmark Results")

	rawCompiles := false

	for _, group := range groupResults(results) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "### %s\n", group[0].Group)
		fmt.Fprintln(w)

		if agree(group) {
			fmt.Fprintf(w, "Outcomes: **all agree** (%s)\n", outcome(group[0].Valid))
		} else {
			fmt.Fprintln(w, "Outcomes: **MISMATCH**")

			for _, r := range group {
				fmt.Fprintf(w, "  - %s: %s\n", r.ID, outcome(r.Valid))
			}
		}

		fmt.Fprintln(w)

		fastest := findFastest(group)

		fmt.Fprintln(w, "| Variant | Mode | Median | CI | Min | Max "+
			"| Calls | Relative |")
		fmt.Fprintln(w, "|---------|------|--------|----|-----|-----"+
			"|-------|----------|")

		for _, r := range group {
			relative := 1.0
			if fastest > 0 && r.MedianNs > 0 {
				relative = r.MedianNs / fastest
			}

			mode := r.Mode
			if r.Mode == "raw" && r.RawCompiles {
				mode += "*"
				rawCompiles = true
			}

			fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %.2fx |\n",
				r.Variant,
				mode,
				formatNs(r.MedianNs),
				formatCI(r),
				formatNs(r.MinNs),
				formatNs(r.MaxNs),
				printer.Sprintf("%d", r.Calls()),
				relative,
			)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "CI: %.0f%% confidence interval of the median; ∞ when there were too few rounds.\n",
		harness.Confidence*100)

	if rawCompiles {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "`raw*`: the schema is compiled inside every call.")
	}

	return nil
}

// GenerateJSON writes doc as indented JSON to w.
func GenerateJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

func groupResults(results []*harness.Result) [][]*harness.Result {
	index := make(map[string]int)

	var groups [][]*harness.Result

	for _, r := range results {
		i, ok := index[r.Group]
		if !ok {
			i = len(groups)
			index[r.Group] = i
			groups = append(groups, nil)
		}

		groups[i] = append(groups[i], r)
	}

	return groups
}

func agree(results []*harness.Result) bool {
	for _, r := range results[1:] {
		if r.Valid != results[0].Valid {
			return false
		}
	}

	return true
}

func outcome(valid bool) string {
	if valid {
		return "valid"
	}

	return "invalid"
}

func findFastest(results []*harness.Result) float64 {
	fastest := math.Inf(1)
	for _, r := range results {
		if r.MedianNs > 0 && r.MedianNs < fastest {
			fastest = r.MedianNs
		}
	}

	if math.IsInf(fastest, 1) {
		return 0
	}

	return fastest
}

// formatCI prints the wider side of the median's interval relative to it.
func formatCI(r *harness.Result) string {
	if r.MedianNs <= 0 || (r.LoNs == 0 && r.HiNs == 0) {
		return "± ∞"
	}

	spread := max(r.MedianNs-r.LoNs, r.HiNs-r.MedianNs)

	return fmt.Sprintf("± %.0f%%", spread/r.MedianNs*100)
}

func formatNs(ns float64) string {
	switch {
	case ns < 1e3:
		return fmt.Sprintf("%.0fns", ns)
	case ns < 1e6:
		return fmt.Sprintf("%.2fµs", ns/1e3)
	case ns < 1e9:
		return fmt.Sprintf("%.2fms", ns/1e6)
	default:
		return fmt.Sprintf("%.2fs", ns/1e9)
	}
}
