package variant

import (
	"errors"
	"fmt"

	"github.com/weiihann/schemoor/dataset"
)

var (
	// ErrUnknownVariant is returned by Build for a variant with no builder.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrCompiledUnsupported is returned by Build when compiled mode is
	// requested for a variant that only has a raw path.
	ErrCompiledUnsupported = errors.New("compiled mode not supported")
)

// buildFunc prepares the call for one variant. Anything it does before
// returning happens outside the timed unit.
type buildFunc func(ds dataset.Dataset, mode Mode) (func() (bool, error), error)

// builders is the dispatch table, keyed by Variant.Name. It is filled by
// register during package initialization and read-only afterwards.
var builders = map[string]buildFunc{}

// Build returns the unit of work validating ds with v in the given mode.
//
// Compiled mode compiles the schema here, once; the returned unit only runs
// the pre-built validator. Raw mode defers everything to the call, which is
// whatever one-shot path the library offers. Build never changes the schema
// or the instance, only how they are passed to the library.
func Build(ds dataset.Dataset, v Variant, mode Mode) (Unit, error) {
	build, ok := builders[v.Name()]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %s", ErrUnknownVariant, v.Name())
	}

	switch mode {
	case ModeCompiled:
		if !v.SupportsCompiled {
			return Unit{}, fmt.Errorf("%w: %s", ErrCompiledUnsupported, v.Name())
		}
	case ModeRaw:
	default:
		return Unit{}, fmt.Errorf("build %s: unknown mode %q", v.Name(), mode)
	}

	call, err := build(ds, mode)
	if err != nil {
		return Unit{}, fmt.Errorf(
			"build %s (%s) for %s: %w", v.Name(), mode, ds.Name, err,
		)
	}

	return Unit{Label: ds.Name, Call: call}, nil
}
