package scenario

import (
	"context"
	"fmt"
	"iter"

	"github.com/weiihann/schemoor/variant"
)

// Outcome is the accept/reject result of calling one case once.
type Outcome struct {
	ID      string
	Variant string
	Mode    variant.Mode
	Valid   bool
}

// GroupAgreement collects the outcomes of one dataset group.
type GroupAgreement struct {
	Group    string
	Outcomes []Outcome
}

// Agree reports whether every outcome in the group is the same.
func (g GroupAgreement) Agree() bool {
	if len(g.Outcomes) == 0 {
		return true
	}

	for _, o := range g.Outcomes[1:] {
		if o.Valid != g.Outcomes[0].Valid {
			return false
		}
	}

	return true
}

// ModeConflicts returns the variants whose compiled and raw outcomes differ.
func (g GroupAgreement) ModeConflicts() []string {
	seen := make(map[string]bool)

	var conflicts []string

	for _, o := range g.Outcomes {
		prev, ok := seen[o.Variant]
		if !ok {
			seen[o.Variant] = o.Valid

			continue
		}

		if prev != o.Valid {
			conflicts = append(conflicts, o.Variant)
		}
	}

	return conflicts
}

// Agreement is the result of Check.
type Agreement struct {
	Groups []GroupAgreement
}

// OK reports whether every group agrees.
func (a Agreement) OK() bool {
	for _, g := range a.Groups {
		if !g.Agree() {
			return false
		}
	}

	return true
}

// Check calls every case once and groups the outcomes by dataset group.
// Construction errors and unit errors abort the check.
func Check(ctx context.Context, cases iter.Seq2[Case, error]) (Agreement, error) {
	var agreement Agreement

	index := make(map[string]int)

	for c, err := range cases {
		if err != nil {
			return Agreement{}, err
		}

		if err := ctx.Err(); err != nil {
			return Agreement{}, fmt.Errorf("check interrupted: %w", err)
		}

		ok, err := c.Unit.Call()
		if err != nil {
			return Agreement{}, fmt.Errorf("case %s: %w", c.ID(), err)
		}

		i, seen := index[c.Group]
		if !seen {
			i = len(agreement.Groups)
			index[c.Group] = i
			agreement.Groups = append(agreement.Groups, GroupAgreement{Group: c.Group})
		}

		agreement.Groups[i].Outcomes = append(agreement.Groups[i].Outcomes, Outcome{
			ID:      c.ID(),
			Variant: c.Variant.Name(),
			Mode:    c.Mode,
			Valid:   ok,
		})
	}

	return agreement, nil
}
