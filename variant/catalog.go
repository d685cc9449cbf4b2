package variant

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// probeSchema is compiled by every implementation probe.
const probeSchema = `{"type": "integer"}`

// Implementation is a validator library known to the harness.
type Implementation struct {
	Name string
	// Probe checks that the library can compile and run a trivial schema in
	// the current build. A nil Probe means always available.
	Probe    func() error
	Variants []Variant
}

var registered []Implementation

// register is called from the init function of each implementation file.
// Implementation files are guarded by build tags, so a binary built with
// e.g. -tags nogojsonschema simply never registers that library.
func register(impl Implementation, builds map[string]buildFunc) {
	registered = append(registered, impl)

	for name, build := range builds {
		builders[name] = build
	}
}

// Registered returns the implementations compiled into this binary, ordered
// by name.
func Registered() []Implementation {
	impls := slices.Clone(registered)
	slices.SortFunc(impls, func(a, b Implementation) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return impls
}

// Catalog is the frozen list of variants whose implementation passed its
// probe.
type Catalog struct {
	variants []Variant
	omitted  map[string]error
}

// NewCatalog probes every implementation once and keeps the variants of the
// ones that are available. Unavailable implementations are logged and left
// out; they never show up as failing cases.
func NewCatalog(logger *slog.Logger, impls []Implementation) *Catalog {
	c := &Catalog{omitted: make(map[string]error)}

	for _, impl := range impls {
		if err := probe(impl); err != nil {
			logger.Warn("implementation unavailable",
				slog.String("implementation", impl.Name),
				slog.String("error", err.Error()),
			)

			c.omitted[impl.Name] = err

			continue
		}

		logger.Debug("implementation available",
			slog.String("implementation", impl.Name),
			slog.Int("variants", len(impl.Variants)),
		)

		c.variants = append(c.variants, impl.Variants...)
	}

	return c
}

// Available returns the variants in catalog order.
func (c *Catalog) Available() []Variant {
	return slices.Clone(c.variants)
}

// Omitted returns the probe error of each implementation left out.
func (c *Catalog) Omitted() map[string]error {
	return maps.Clone(c.omitted)
}

func probe(impl Implementation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe panicked: %v", r)
		}
	}()

	if impl.Probe == nil {
		return nil
	}

	return impl.Probe()
}
