package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/weiihann/schemoor/scenario"
)

// GenerateAgreement writes the outcome of a check run: one row per group,
// then the disagreeing cases.
func GenerateAgreement(w io.Writer, a scenario.Agreement) error {
	if len(a.Groups) == 0 {
		return fmt.Errorf("no cases checked")
	}

	fmt.Fprintln(w, "## Outcome Agreement")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Group | Cases | Outcome |")
	fmt.Fprintln(w, "|-------|-------|---------|")

	for _, g := range a.Groups {
		result := "**MISMATCH**"
		switch {
		case len(g.Outcomes) == 0:
			result = "-"
		case g.Agree():
			result = outcome(g.Outcomes[0].Valid)
		}

		fmt.Fprintf(w, "| %s | %d | %s |\n", g.Group, len(g.Outcomes), result)
	}

	for _, g := range a.Groups {
		if g.Agree() {
			continue
		}

		fmt.Fprintln(w)
		fmt.Fprintf(w, "### %s\n", g.Group)
		fmt.Fprintln(w)

		for _, o := range g.Outcomes {
			fmt.Fprintf(w, "  - %s: %s\n", o.ID, outcome(o.Valid))
		}

		if conflicts := g.ModeConflicts(); len(conflicts) > 0 {
			fmt.Fprintf(w, "\nCompiled and raw disagree: %s\n", strings.Join(conflicts, ", "))
		}
	}

	return nil
}
