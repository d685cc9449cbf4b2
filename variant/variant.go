// Package variant enumerates the JSON Schema validator implementations under
// comparison and turns a (dataset, variant, mode) triple into a callable
// unit of work.
//
// Every implementation exposes a different calling convention. Build hides
// those differences behind Unit.Call, a zero-argument function that performs
// exactly one validation and reports whether the instance was accepted.
package variant

import (
	"fmt"
	"path"
)

// Convention is the calling style a variant's library exposes.
type Convention int

const (
	// ConventionBoolCheck is a pure predicate over the instance.
	ConventionBoolCheck Convention = iota + 1
	// ConventionRaise returns an error on rejection and nothing on success.
	ConventionRaise
	// ConventionCompileThenCall separates schema compilation from checking.
	ConventionCompileThenCall
)

func (c Convention) String() string {
	switch c {
	case ConventionBoolCheck:
		return "bool-check"
	case ConventionRaise:
		return "raise"
	case ConventionCompileThenCall:
		return "compile-then-call"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// Mode selects whether schema-dependent setup happens once (compiled) or on
// every call (raw).
type Mode string

const (
	// ModeCompiled builds the validator once, outside the timed call.
	ModeCompiled Mode = "compiled"
	// ModeRaw hands schema and instance to the library on every call.
	ModeRaw Mode = "raw"
)

var allModes = [...]Mode{ModeCompiled, ModeRaw}

// MatchModes returns the modes matched by a path.Match pattern. A pattern
// that is malformed or matches no mode is an error.
func MatchModes(pattern string) ([]Mode, error) {
	var out []Mode

	for _, m := range allModes {
		ok, err := path.Match(pattern, string(m))
		if err != nil {
			return nil, fmt.Errorf("mode pattern %q: %w", pattern, err)
		}

		if ok {
			out = append(out, m)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("mode pattern %q matches no mode (want %s or %s)", pattern, ModeCompiled, ModeRaw)
	}

	return out, nil
}

// Variant is one (implementation, calling mode) identity under comparison.
type Variant struct {
	// Implementation names the backing library, e.g. "jsonschema-v5".
	Implementation string
	// Tag distinguishes variants of the same implementation, e.g. "is-valid".
	Tag        string
	Convention Convention
	// SupportsCompiled is false for variants that only have a one-shot path.
	SupportsCompiled bool
	// RawCompiles records whether the raw path compiles the schema inside
	// every call. It is a property of the library, kept visible in reports
	// so raw timings are read for what they are.
	RawCompiles bool
}

// Name returns "<implementation>/<tag>".
func (v Variant) Name() string {
	return v.Implementation + "/" + v.Tag
}

// Modes returns the modes the variant can be built in.
func (v Variant) Modes() []Mode {
	if v.SupportsCompiled {
		return []Mode{ModeCompiled, ModeRaw}
	}

	return []Mode{ModeRaw}
}

// Unit is a ready-to-invoke validation bound to one dataset, variant and
// mode.
//
// Call performs exactly one validation attempt. It returns false with a nil
// error when the instance is rejected; a non-nil error means the harness
// itself is broken (a schema that fails to compile on the raw path, a
// loader failure) and never stands for a rejection.
type Unit struct {
	Label string
	Call  func() (bool, error)
}
