package export

import (
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Payload converts stored form values into typed JSON values. Empty values
// are omitted, numbers become float64, selections become string lists and
// file lists become objects. Numbers are read with validation.ParseNumber; a
// number that does not parse is kept as its string so schema validation can
// reject it.
func Payload(fields []model.FieldSchema, values map[string]string) map[string]any {
	out := make(map[string]any)
	for _, field := range fields {
		if !field.Kind.ValueBearing() {
			continue
		}
		raw := values[field.Name]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		out[field.Name] = typedValue(field, raw)
	}
	return out
}

func typedValue(field model.FieldSchema, raw string) any {
	switch {
	case field.MultiSelect():
		picked := model.SplitSelection(raw)
		items := make([]any, 0, len(picked))
		for _, value := range picked {
			items = append(items, value)
		}
		return items
	case field.Kind == model.KindFile:
		files := model.ParseFiles(raw)
		items := make([]any, 0, len(files))
		for _, file := range files {
			items = append(items, map[string]any{"name": file.Name, "sizeMB": file.SizeMB})
		}
		return items
	case field.Kind.Numeric():
		if v, ok := validation.ParseNumber(raw); ok {
			return v
		}
	}
	return raw
}
