// Package scenario enumerates benchmark cases: every dataset crossed with
// every available variant in every mode it supports.
package scenario

import (
	"fmt"
	"iter"
	"path"

	"github.com/weiihann/schemoor/dataset"
	"github.com/weiihann/schemoor/variant"
)

// Case is one timeable unit of work bound to a dataset group, a variant and
// a mode.
type Case struct {
	Group   string
	Variant variant.Variant
	Mode    variant.Mode
	Unit    variant.Unit
}

// ID returns the stable identifier of the case.
func (c Case) ID() string {
	return ID(c.Group, c.Variant, c.Mode)
}

// ID formats "<group>/<implementation>/<tag>/<mode>". It is unique per
// (dataset, variant, mode) triple.
func ID(group string, v variant.Variant, mode variant.Mode) string {
	return group + "/" + v.Name() + "/" + string(mode)
}

// Selector narrows the matrix. Each list holds path.Match patterns; an empty
// list matches everything.
type Selector struct {
	Groups   []string
	Variants []string
	Modes    []string
}

// Validate checks that every pattern is well formed.
func (s Selector) Validate() error {
	for _, patterns := range [][]string{s.Groups, s.Variants, s.Modes} {
		for _, p := range patterns {
			if _, err := path.Match(p, ""); err != nil {
				return fmt.Errorf("bad pattern %q: %w", p, err)
			}
		}
	}

	return nil
}

// Match reports whether a case with these coordinates is selected.
func (s Selector) Match(group, variantName string, mode variant.Mode) bool {
	return matchAny(s.Groups, group) &&
		matchAny(s.Variants, variantName) &&
		matchAny(s.Modes, string(mode))
}

func matchAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}

	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}

	return false
}

// Matrix is the cross product of a registry and a catalog.
type Matrix struct {
	registry *dataset.Registry
	catalog  *variant.Catalog
	selector Selector
}

// NewMatrix creates a Matrix over reg and cat restricted by sel.
func NewMatrix(reg *dataset.Registry, cat *variant.Catalog, sel Selector) *Matrix {
	return &Matrix{registry: reg, catalog: cat, selector: sel}
}

// Cases returns a lazy sequence of selected cases in registry, catalog and
// mode order. Units are built as the sequence advances, so unselected cases
// are never constructed. Each call starts over with freshly built units.
//
// A construction failure is yielded as an error with a zero Case; ranging
// may continue past it.
func (m *Matrix) Cases() iter.Seq2[Case, error] {
	return func(yield func(Case, error) bool) {
		variants := m.catalog.Available()

		for _, group := range m.registry.Names() {
			ds, err := m.registry.Get(group)
			if err != nil {
				yield(Case{}, err)

				return
			}

			for _, v := range variants {
				for _, mode := range v.Modes() {
					if !m.selector.Match(group, v.Name(), mode) {
						continue
					}

					unit, err := variant.Build(ds, v, mode)
					if err != nil {
						err = fmt.Errorf("case %s: %w", ID(group, v, mode), err)
						if !yield(Case{}, err) {
							return
						}

						continue
					}

					c := Case{Group: group, Variant: v, Mode: mode, Unit: unit}
					if !yield(c, nil) {
						return
					}
				}
			}
		}
	}
}

// Entry names a selected case without its unit.
type Entry struct {
	Group   string
	Variant variant.Variant
	Mode    variant.Mode
}

// ID returns the identifier the built case will carry.
func (e Entry) ID() string {
	return ID(e.Group, e.Variant, e.Mode)
}

// Entries returns the selected cases in Cases order without building them.
func (m *Matrix) Entries() []Entry {
	var entries []Entry

	variants := m.catalog.Available()

	for _, group := range m.registry.Names() {
		for _, v := range variants {
			for _, mode := range v.Modes() {
				if m.selector.Match(group, v.Name(), mode) {
					entries = append(entries, Entry{Group: group, Variant: v, Mode: mode})
				}
			}
		}
	}

	return entries
}

// IDs returns the identifiers of the selected cases.
func (m *Matrix) IDs() []string {
	entries := m.Entries()

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID())
	}

	return ids
}
