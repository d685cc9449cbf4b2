//go:build !nogojsonschema

package variant

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/weiihann/schemoor/dataset"
)

const goJSONSchema = "gojsonschema"

func init() {
	register(Implementation{
		Name:  goJSONSchema,
		Probe: probeGoJSONSchema,
		Variants: []Variant{
			{
				Implementation:   goJSONSchema,
				Tag:              "validate",
				Convention:       ConventionCompileThenCall,
				SupportsCompiled: true,
				RawCompiles:      true,
			},
			{
				// Decodes both documents from bytes on every call; there is
				// nothing to pre-build, so it only has a raw mode.
				Implementation:   goJSONSchema,
				Tag:              "bytes",
				Convention:       ConventionCompileThenCall,
				SupportsCompiled: false,
				RawCompiles:      true,
			},
		},
	}, map[string]buildFunc{
		goJSONSchema + "/validate": buildGoJSONSchemaValidate,
		goJSONSchema + "/bytes":    buildGoJSONSchemaBytes,
	})
}

func valid(res *gojsonschema.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}

	return res.Valid(), nil
}

func buildGoJSONSchemaValidate(ds dataset.Dataset, mode Mode) (func() (bool, error), error) {
	instance := ds.Instance

	if mode == ModeCompiled {
		sch, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(ds.Schema))
		if err != nil {
			return nil, fmt.Errorf("compile schema: %w", err)
		}

		return func() (bool, error) {
			return valid(sch.Validate(gojsonschema.NewGoLoader(instance)))
		}, nil
	}

	schema := ds.Schema

	return func() (bool, error) {
		return valid(gojsonschema.Validate(
			gojsonschema.NewGoLoader(schema),
			gojsonschema.NewGoLoader(instance),
		))
	}, nil
}

func buildGoJSONSchemaBytes(ds dataset.Dataset, _ Mode) (func() (bool, error), error) {
	schema, instance := ds.SchemaJSON, ds.InstanceJSON

	return func() (bool, error) {
		return valid(gojsonschema.Validate(
			gojsonschema.NewBytesLoader(schema),
			gojsonschema.NewBytesLoader(instance),
		))
	}, nil
}

func probeGoJSONSchema() error {
	sch, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(probeSchema))
	if err != nil {
		return fmt.Errorf("compile probe schema: %w", err)
	}

	ok, err := valid(sch.Validate(gojsonschema.NewGoLoader(1)))
	if err != nil || !ok {
		return fmt.Errorf("probe rejected a valid instance (err: %v)", err)
	}

	ok, err = valid(sch.Validate(gojsonschema.NewGoLoader("one")))
	if err != nil || ok {
		return fmt.Errorf("probe accepted an invalid instance (err: %v)", err)
	}

	return nil
}
