package dataset

import (
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedFixtures(t *testing.T) {
	reg, err := Load(Fixtures())
	require.NoError(t, err)

	assert.Equal(t, []string{Boolean, Minimum, Small, Big}, reg.Names())
	assert.Equal(t, 4, reg.Len())

	boolean, err := reg.Get(Boolean)
	require.NoError(t, err)
	assert.Equal(t, true, boolean.Schema)
	assert.Equal(t, true, boolean.Instance)

	minimum, err := reg.Get(Minimum)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"minimum": json.Number("10")}, minimum.Schema)
	assert.Equal(t, json.Number("10"), minimum.Instance)

	small, err := reg.Get(Small)
	require.NoError(t, err)
	instance, ok := small.Instance.([]any)
	require.True(t, ok, "small instance should decode to an array")
	assert.Len(t, instance, 6)
	assert.JSONEq(t, SmallInstance, string(small.InstanceJSON))

	big, err := reg.Get(Big)
	require.NoError(t, err)
	schema, ok := big.Schema.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, schema, "definitions")
	assert.NotEmpty(t, big.InstanceJSON)
}

func TestBigIsRealWorldScale(t *testing.T) {
	reg, err := Load(Fixtures())
	require.NoError(t, err)

	big, err := reg.Get(Big)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(big.SchemaJSON), 64<<10, "schema size")
	assert.GreaterOrEqual(t, len(big.InstanceJSON), 256<<10, "instance size")

	schema, ok := big.Schema.(map[string]any)
	require.True(t, ok)
	definitions, ok := schema["definitions"].(map[string]any)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(definitions), 100)

	// every reference points into definitions
	var walk func(v any)
	walk = func(v any) {
		switch v := v.(type) {
		case map[string]any:
			if ref, ok := v["$ref"].(string); ok {
				name, found := strings.CutPrefix(ref, "#/definitions/")
				require.True(t, found, "ref %s", ref)
				assert.Contains(t, definitions, name)
			}
			for _, child := range v {
				walk(child)
			}
		case []any:
			for _, child := range v {
				walk(child)
			}
		}
	}
	walk(schema)

	list, ok := big.Instance.(map[string]any)
	require.True(t, ok)
	items, ok := list["items"].([]any)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(items), 200)

	kinds := make(map[string]bool)
	for _, item := range items {
		obj, ok := item.(map[string]any)
		require.True(t, ok)
		kind, _ := obj["kind"].(string)
		kinds[kind] = true
	}
	assert.GreaterOrEqual(t, len(kinds), 10, "distinct kinds: %v", kinds)
}

func TestDefaultIsLoadedOnce(t *testing.T) {
	first, err := Default()
	require.NoError(t, err)

	second, err := Default()
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestGetUnknown(t *testing.T) {
	reg, err := Load(Fixtures())
	require.NoError(t, err)

	_, err = reg.Get("nope")
	require.ErrorIs(t, err, ErrUnknownDataset)
}

func TestLoadFailsFast(t *testing.T) {
	valid := fstest.MapFS{
		SmallSchemaFile: {Data: []byte(`{"type": "array"}`)},
		BigSchemaFile:   {Data: []byte(`{"type": "object"}`)},
		BigInstanceFile: {Data: []byte(`{}`)},
	}

	tests := []struct {
		name   string
		mutate func(fstest.MapFS)
	}{
		{
			name:   "missing big instance",
			mutate: func(fsys fstest.MapFS) { delete(fsys, BigInstanceFile) },
		},
		{
			name: "malformed small schema",
			mutate: func(fsys fstest.MapFS) {
				fsys[SmallSchemaFile] = &fstest.MapFile{Data: []byte(`{"type": `)}
			},
		},
		{
			name: "trailing data",
			mutate: func(fsys fstest.MapFS) {
				fsys[BigSchemaFile] = &fstest.MapFile{Data: []byte(`{} {}`)}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for name, file := range valid {
				fsys[name] = file
			}
			tt.mutate(fsys)

			reg, err := Load(fsys)
			require.Error(t, err)
			assert.Nil(t, reg)
		})
	}

	reg, err := Load(valid)
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())
}

func TestWithDataset(t *testing.T) {
	reg, err := Load(Fixtures())
	require.NoError(t, err)

	extra, err := New("extra", []byte(`{"type": "string"}`), []byte(`"x"`))
	require.NoError(t, err)

	next, err := reg.WithDataset(extra)
	require.NoError(t, err)

	assert.Equal(t, []string{Boolean, Minimum, Small, Big, "extra"}, next.Names())
	assert.Equal(t, 4, reg.Len(), "original registry must not change")

	_, err = next.WithDataset(extra)
	require.ErrorIs(t, err, ErrDuplicateDataset)
}

func TestNamesReturnsCopy(t *testing.T) {
	reg, err := Load(Fixtures())
	require.NoError(t, err)

	names := reg.Names()
	names[0] = "mutated"

	assert.Equal(t, Boolean, reg.Names()[0])
}
