// Package export describes a form's submission payload as JSON Schema and
// converts stored string values into that typed payload.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Draft is the JSON Schema dialect of generated documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// ErrInvalidPayload wraps JSON Schema validation failures.
var ErrInvalidPayload = errors.New("export: payload does not match schema")

// JSONSchema builds the object schema a submission payload satisfies.
// Structural fields are skipped and required fields are listed in field
// order.
func JSONSchema(title string, fields []model.FieldSchema) *jsonschema.Schema {
	root := &jsonschema.Schema{
		Schema:     Draft,
		Title:      title,
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema),
	}
	for _, field := range fields {
		if !field.Kind.ValueBearing() {
			continue
		}
		root.Properties[field.Name] = fieldSchema(field)
		if field.Rules.Required {
			root.Required = append(root.Required, field.Name)
		}
	}
	return root
}

// MarshalSchema encodes a schema as indented JSON.
func MarshalSchema(schema *jsonschema.Schema) ([]byte, error) {
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal schema: %w", err)
	}
	return append(out, '\n'), nil
}

// ValidatePayload checks payload against schema.
func ValidatePayload(schema *jsonschema.Schema, payload map[string]any) error {
	if schema == nil {
		return errors.New("export: schema is nil")
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return fmt.Errorf("export: resolve schema: %w", err)
	}
	// The validator expects plain JSON values.
	instance, err := roundTrip(payload)
	if err != nil {
		return err
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func fieldSchema(field model.FieldSchema) *jsonschema.Schema {
	r := model.NormalizeBounds(field.Rules)
	s := &jsonschema.Schema{Title: field.DisplayLabel()}

	switch {
	case field.MultiSelect():
		s.Type = "array"
		s.Items = &jsonschema.Schema{Type: "string", Enum: optionValues(field.Options)}
		s.UniqueItems = true
		s.MinItems = countBound(r.MinValue, math.Ceil)
		s.MaxItems = countBound(r.MaxValue, math.Floor)
	case field.Kind == model.KindRadioGroup || field.Kind == model.KindSelect:
		s.Type = "string"
		s.Enum = optionValues(field.Options)
	case field.Kind == model.KindFile:
		s.Type = "array"
		s.Items = &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name":   {Type: "string", MinLength: intPtr(1)},
				"sizeMB": {Type: "number", Minimum: floatPtr(0)},
			},
			Required: []string{"name"},
		}
		if field.Multiple {
			s.MaxItems = countBound(r.MaxValue, math.Floor)
		} else {
			s.MaxItems = intPtr(1)
		}
	case field.Kind.Numeric():
		s.Type = "number"
		if r.IntegerOnly {
			s.Type = "integer"
		}
		s.Minimum = r.MinValue
		s.Maximum = r.MaxValue
		if r.NoNegative && (s.Minimum == nil || *s.Minimum < 0) {
			s.Minimum = floatPtr(0)
		}
		if r.PositiveOnly {
			s.ExclusiveMinimum = floatPtr(0)
		}
		// multipleOf counts from zero and has no tolerance, so only whole
		// steps without an offset are exported.
		if r.Step != nil && *r.Step > 0 && *r.Step == math.Trunc(*r.Step) &&
			(r.MinValue == nil || *r.MinValue == 0) {
			s.MultipleOf = r.Step
		}
	case field.Kind == model.KindDate:
		s.Type = "string"
		s.Format = "date"
	case field.Kind == model.KindDatetime:
		s.Type = "string"
	default:
		s.Type = "string"
		switch field.Kind {
		case model.KindEmail:
			s.Format = "email"
		case model.KindURL:
			s.Format = "uri"
		}
		if exact := positive(r.ExactLength); exact != nil {
			s.MinLength = exact
			s.MaxLength = exact
		} else {
			s.MinLength = positive(r.MinLength)
			s.MaxLength = positive(r.MaxLength)
		}
		if r.Pattern != "" {
			if _, err := regexp.Compile(r.Pattern); err == nil {
				s.Pattern = r.Pattern
			}
		}
	}
	return s
}

func optionValues(options []model.Option) []any {
	if len(options) == 0 {
		return nil
	}
	out := make([]any, 0, len(options))
	for _, opt := range options {
		out = append(out, opt.Value)
	}
	return out
}

func countBound(v *float64, round func(float64) float64) *int {
	if v == nil || *v < 0 {
		return nil
	}
	return intPtr(int(round(*v)))
}

// positive drops a zero or negative length bound, which the validator treats
// as unset.
func positive(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func roundTrip(payload map[string]any) (any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("export: encode payload: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("export: decode payload: %w", err)
	}
	return out, nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
