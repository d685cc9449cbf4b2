package dataset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// Names of the built-in datasets, in registry order.
const (
	Boolean = "boolean"
	Minimum = "minimum"
	Small   = "small"
	Big     = "big"
)

// Fixture file names looked up by Load.
const (
	SmallSchemaFile = "small_schema.json"
	BigSchemaFile   = "big_schema.json"
	BigInstanceFile = "big_instance.json"
)

// SmallInstance is the valid instance paired with the small schema.
const SmallInstance = `[9, "hello", [1, "a", true], {"a": "a", "b": "b", "d": "d"}, 42, 3]`

var (
	// ErrUnknownDataset is returned by Get for a name the registry lacks.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrDuplicateDataset is returned by WithDataset when the name is taken.
	ErrDuplicateDataset = errors.New("duplicate dataset")
)

// Registry is an ordered, read-only set of datasets.
type Registry struct {
	order  []string
	byName map[string]Dataset
}

// Fixtures returns the fixture files embedded in the binary.
func Fixtures() fs.FS {
	sub, err := fs.Sub(fixtures, "fixtures")
	if err != nil {
		panic(fmt.Sprintf("dataset: embedded fixtures: %v", err))
	}

	return sub
}

var loadDefault = sync.OnceValues(func() (*Registry, error) {
	return Load(Fixtures())
})

// Default returns the registry built from the embedded fixtures. The
// fixtures are read on the first call only; later calls return the same
// registry (or the same error).
func Default() (*Registry, error) {
	return loadDefault()
}

// Load reads the file-backed fixtures from fsys and returns a registry
// holding the boolean, minimum, small and big datasets, in that order.
// A missing or malformed fixture fails the whole load.
func Load(fsys fs.FS) (*Registry, error) {
	smallSchema, err := fs.ReadFile(fsys, SmallSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	bigSchema, err := fs.ReadFile(fsys, BigSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	bigInstance, err := fs.ReadFile(fsys, BigInstanceFile)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	sources := []struct {
		name     string
		schema   []byte
		instance []byte
	}{
		{Boolean, []byte(`true`), []byte(`true`)},
		{Minimum, []byte(`{"minimum": 10}`), []byte(`10`)},
		{Small, smallSchema, []byte(SmallInstance)},
		{Big, bigSchema, bigInstance},
	}

	reg := &Registry{byName: make(map[string]Dataset, len(sources))}

	for _, src := range sources {
		ds, err := New(src.name, src.schema, src.instance)
		if err != nil {
			return nil, fmt.Errorf("load dataset %s: %w", src.name, err)
		}

		reg.order = append(reg.order, ds.Name)
		reg.byName[ds.Name] = ds
	}

	return reg, nil
}

// Get returns the dataset registered under name.
func (r *Registry) Get(name string) (Dataset, error) {
	ds, ok := r.byName[name]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}

	return ds, nil
}

// Names returns dataset names in registry order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Len returns the number of datasets.
func (r *Registry) Len() int {
	return len(r.order)
}

// WithDataset returns a new registry with ds appended. The receiver is left
// unchanged.
func (r *Registry) WithDataset(ds Dataset) (*Registry, error) {
	if _, ok := r.byName[ds.Name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateDataset, ds.Name)
	}

	next := &Registry{
		order:  append(slices.Clone(r.order), ds.Name),
		byName: make(map[string]Dataset, len(r.byName)+1),
	}

	for name, existing := range r.byName {
		next.byName[name] = existing
	}

	next.byName[ds.Name] = ds

	return next, nil
}
