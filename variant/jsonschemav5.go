//go:build !nojsonschemav5

package variant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/weiihann/schemoor/dataset"
)

const jsonschemaV5 = "jsonschema-v5"

func init() {
	register(Implementation{
		Name:  jsonschemaV5,
		Probe: probeJSONSchemaV5,
		Variants: []Variant{
			{
				Implementation:   jsonschemaV5,
				Tag:              "is-valid",
				Convention:       ConventionBoolCheck,
				SupportsCompiled: true,
				RawCompiles:      true,
			},
			{
				Implementation:   jsonschemaV5,
				Tag:              "validate",
				Convention:       ConventionRaise,
				SupportsCompiled: true,
				RawCompiles:      true,
			},
		},
	}, map[string]buildFunc{
		jsonschemaV5 + "/is-valid": buildV5IsValid,
		jsonschemaV5 + "/validate": buildV5Validate,
	})
}

func schemaURL(name string) string {
	return "mem:///" + name + ".json"
}

func compileV5(name string, schema []byte) (*jsonschema.Schema, error) {
	url := schemaURL(name)

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return sch, nil
}

// v5IsValid is the one-shot predicate: the schema document travels with the
// instance on every call and is compiled each time.
func v5IsValid(name string, schema []byte, instance any) (bool, error) {
	sch, err := compileV5(name, schema)
	if err != nil {
		return false, err
	}

	return sch.Validate(instance) == nil, nil
}

// v5Validate is the one-shot raising form. Compile failures are returned as
// errors; a rejection of the instance is reported as false.
func v5Validate(name string, schema []byte, instance any) (bool, error) {
	sch, err := compileV5(name, schema)
	if err != nil {
		return false, err
	}

	return rejected(sch.Validate(instance))
}

// rejected maps the raising convention onto an outcome: a ValidationError
// is a rejection, anything else is a defect.
func rejected(err error) (bool, error) {
	if err == nil {
		return true, nil
	}

	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return false, nil
	}

	return false, err
}

func buildV5IsValid(ds dataset.Dataset, mode Mode) (func() (bool, error), error) {
	instance := ds.Instance

	if mode == ModeCompiled {
		sch, err := compileV5(ds.Name, ds.SchemaJSON)
		if err != nil {
			return nil, err
		}

		return func() (bool, error) {
			return sch.Validate(instance) == nil, nil
		}, nil
	}

	name, schema := ds.Name, ds.SchemaJSON

	return func() (bool, error) {
		return v5IsValid(name, schema, instance)
	}, nil
}

func buildV5Validate(ds dataset.Dataset, mode Mode) (func() (bool, error), error) {
	instance := ds.Instance

	if mode == ModeCompiled {
		sch, err := compileV5(ds.Name, ds.SchemaJSON)
		if err != nil {
			return nil, err
		}

		return func() (bool, error) {
			return rejected(sch.Validate(instance))
		}, nil
	}

	name, schema := ds.Name, ds.SchemaJSON

	return func() (bool, error) {
		return v5Validate(name, schema, instance)
	}, nil
}

func probeJSONSchemaV5() error {
	sch, err := jsonschema.CompileString(schemaURL("probe"), probeSchema)
	if err != nil {
		return fmt.Errorf("compile probe schema: %w", err)
	}

	if err := sch.Validate(json.Number("1")); err != nil {
		return fmt.Errorf("probe rejected a valid instance: %w", err)
	}

	if ok, err := rejected(sch.Validate("one")); ok || err != nil {
		return fmt.Errorf("probe accepted an invalid instance (err: %v)", err)
	}

	return nil
}
