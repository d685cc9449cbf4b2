package variant

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeImpl(name string, probe func() error, tags ...string) Implementation {
	impl := Implementation{Name: name, Probe: probe}
	for _, tag := range tags {
		impl.Variants = append(impl.Variants, Variant{
			Implementation:   name,
			Tag:              tag,
			Convention:       ConventionBoolCheck,
			SupportsCompiled: true,
		})
	}

	return impl
}

func variantNames(vs []Variant) []string {
	names := make([]string, 0, len(vs))
	for _, v := range vs {
		names = append(names, v.Name())
	}

	return names
}

func TestCatalogOmitsUnavailable(t *testing.T) {
	impls := []Implementation{
		fakeImpl("alpha", nil, "is-valid", "validate"),
		fakeImpl("beta", func() error { return errors.New("not built for this runtime") }, "validate"),
		fakeImpl("gamma", func() error { panic("native library missing") }, "validate", "bytes"),
		fakeImpl("delta", func() error { return nil }, "validate"),
	}

	cat := NewCatalog(discardLogger(), impls)

	assert.Equal(t,
		[]string{"alpha/is-valid", "alpha/validate", "delta/validate"},
		variantNames(cat.Available()),
	)

	omitted := cat.Omitted()
	require.Len(t, omitted, 2)
	assert.ErrorContains(t, omitted["beta"], "not built")
	assert.ErrorContains(t, omitted["gamma"], "panicked")

	delete(omitted, "beta")
	assert.Len(t, cat.Omitted(), 2, "Omitted must return a copy")
}

func TestCatalogShrinksByImplementationVariants(t *testing.T) {
	impls := Registered()
	require.NotEmpty(t, impls)

	full := NewCatalog(discardLogger(), impls)

	for i := range impls {
		t.Run(impls[i].Name, func(t *testing.T) {
			pruned := append([]Implementation(nil), impls...)
			pruned[i].Probe = func() error { return errors.New("unavailable") }

			cat := NewCatalog(discardLogger(), pruned)

			assert.Len(t, cat.Available(), len(full.Available())-len(impls[i].Variants))
			for _, v := range cat.Available() {
				assert.NotEqual(t, impls[i].Name, v.Implementation)
			}
		})
	}
}

func TestRegisteredImplementationsAreAvailable(t *testing.T) {
	impls := Registered()

	names := make([]string, 0, len(impls))
	for _, impl := range impls {
		names = append(names, impl.Name)
		require.NoError(t, probe(impl), "probe for %s", impl.Name)
	}

	assert.IsIncreasing(t, names)

	cat := NewCatalog(discardLogger(), impls)
	assert.Empty(t, cat.Omitted())

	for _, v := range cat.Available() {
		_, ok := builders[v.Name()]
		assert.True(t, ok, "variant %s has no builder", v.Name())
	}
}

func TestCatalogAvailableReturnsCopy(t *testing.T) {
	cat := NewCatalog(discardLogger(), []Implementation{fakeImpl("alpha", nil, "validate")})

	vs := cat.Available()
	vs[0].Tag = "mutated"

	assert.Equal(t, "alpha/validate", cat.Available()[0].Name())
}

func TestVariantModes(t *testing.T) {
	compiled := Variant{Implementation: "x", Tag: "a", SupportsCompiled: true}
	rawOnly := Variant{Implementation: "x", Tag: "b"}

	assert.Equal(t, []Mode{ModeCompiled, ModeRaw}, compiled.Modes())
	assert.Equal(t, []Mode{ModeRaw}, rawOnly.Modes())
}

func TestMatchModes(t *testing.T) {
	tests := []struct {
		pattern string
		want    []Mode
		wantErr bool
	}{
		{"compiled", []Mode{ModeCompiled}, false},
		{"comp*", []Mode{ModeCompiled}, false},
		{"*", []Mode{ModeCompiled, ModeRaw}, false},
		{"r?w", []Mode{ModeRaw}, false},
		{"jit", nil, true},
		{"[raw", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := MatchModes(tt.pattern)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConventionString(t *testing.T) {
	assert.Equal(t, "bool-check", ConventionBoolCheck.String())
	assert.Equal(t, "raise", ConventionRaise.String())
	assert.Equal(t, "compile-then-call", ConventionCompileThenCall.String())
	assert.Equal(t, "Convention(9)", Convention(9).String())
}
