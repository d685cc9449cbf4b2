package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/weiihann/schemoor/history"
)

// GenerateComparison writes the median change of every case between the
// baseline and the current run. Changes that are not significant at the
// comparison's alpha print as ~.
func GenerateComparison(w io.Writer, c history.Comparison) error {
	fmt.Fprintf(w, "## Comparison against %s\n", c.Against)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Current run: %s\n", c.Current)

	baseline := make([]string, 0, len(c.Baseline))
	for _, id := range c.Baseline {
		baseline = append(baseline, id.String())
	}

	fmt.Fprintf(w, "Baseline: %s\n", strings.Join(baseline, ", "))
	fmt.Fprintln(w)

	if len(c.Deltas) > 0 {
		fmt.Fprintln(w, "| Case | Baseline | Current | Change | p |")
		fmt.Fprintln(w, "|------|----------|---------|--------|---|")

		for _, d := range c.Deltas {
			change := "~"
			if d.Significant {
				change = fmt.Sprintf("%+.1f%%", d.ChangePct)
			}

			fmt.Fprintf(w, "| %s | %s | %s | %s | %.3f |\n",
				d.ID,
				formatNs(d.BaselineNs),
				formatNs(d.CurrentNs),
				change,
				d.P,
			)
		}

		fmt.Fprintln(w)
		fmt.Fprintf(w, "~: not significant (Mann-Whitney U, p >= %.2f).\n", c.Alpha)
	} else {
		fmt.Fprintln(w, "No cases in common.")
	}

	if len(c.Added) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Added: %s\n", strings.Join(c.Added, ", "))
	}
	if len(c.Removed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Removed: %s\n", strings.Join(c.Removed, ", "))
	}

	return nil
}
