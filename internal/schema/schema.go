// Package schema publishes JSON Schemas for the stored record collections.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"billing-engine/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == decimalType {
				// decimals are encoded as quoted strings
				return &jsonschema.Schema{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`}
			}
			return nil
		},
	}
}

func recordOf(c core.Collection) (any, error) {
	switch c {
	case core.CustomersCollection:
		return core.Customer{}, nil
	case core.ProductsCollection:
		return core.Product{}, nil
	case core.InvoicesCollection:
		return core.Invoice{}, nil
	case core.PaymentsCollection:
		return core.Payment{}, nil
	}
	return nil, fmt.Errorf("unknown collection %q: %w", c, core.ErrNotFound)
}

// Record returns the schema of one record of the collection.
func Record(c core.Collection) (*jsonschema.Schema, error) {
	v, err := recordOf(c)
	if err != nil {
		return nil, err
	}
	s := reflector().Reflect(v)
	s.Title = string(c)
	return s, nil
}

// Collection returns the schema of a stored collection payload: an array of records.
func Collection(c core.Collection) (*jsonschema.Schema, error) {
	record, err := Record(c)
	if err != nil {
		return nil, err
	}
	version := record.Version
	record.Version = ""
	return &jsonschema.Schema{
		Version: version,
		Title:   string(c),
		Type:    "array",
		Items:   record,
	}, nil
}

// MarshalCollection renders the collection schema as indented JSON.
func MarshalCollection(c core.Collection) ([]byte, error) {
	s, err := Collection(c)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(s, "", "  ")
}
