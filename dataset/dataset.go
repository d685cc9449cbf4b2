// Package dataset holds the named (schema, instance) pairs that benchmark
// cases validate. Datasets are loaded once per process and are never
// modified afterwards; every case shares them read-only.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Dataset is a JSON Schema together with the instance validated against it.
//
// Schema and Instance are decoded with json.Number for numbers, so no
// implementation sees a rounded value. SchemaJSON and InstanceJSON keep the
// documents they were decoded from for implementations that consume raw
// bytes. None of the fields may be modified after construction.
type Dataset struct {
	Name         string
	Schema       any
	Instance     any
	SchemaJSON   []byte
	InstanceJSON []byte
}

// New decodes schemaJSON and instanceJSON into a Dataset.
func New(name string, schemaJSON, instanceJSON []byte) (Dataset, error) {
	schema, err := Decode(schemaJSON)
	if err != nil {
		return Dataset{}, fmt.Errorf("decode %s schema: %w", name, err)
	}

	instance, err := Decode(instanceJSON)
	if err != nil {
		return Dataset{}, fmt.Errorf("decode %s instance: %w", name, err)
	}

	return Dataset{
		Name:         name,
		Schema:       schema,
		Instance:     instance,
		SchemaJSON:   bytes.Clone(schemaJSON),
		InstanceJSON: bytes.Clone(instanceJSON),
	}, nil
}

// Decode parses a single JSON document, keeping numbers as json.Number.
// Trailing data after the document is an error.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode JSON: unexpected data after document")
	}

	return v, nil
}
