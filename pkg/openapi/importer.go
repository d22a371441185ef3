package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/internal/labels"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Extension keys read from request body properties.
const (
	ExtensionKind  = "x-formbuilder-kind"
	ExtensionWidth = "x-formbuilder-width"
	ExtensionOrder = "x-formbuilder-order"
)

// ErrOperationNotFound is returned when Import names an unknown operation.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// bodyMediaTypes are tried in order when picking the request body schema.
var bodyMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Operation summarises one operation of the document.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	HasBody bool
}

// Skipped records a property the importer could not map to a field.
type Skipped struct {
	Property string
	Reason   string
}

// Form is the result of importing an operation.
type Form struct {
	Title   string
	Fields  []model.FieldDraft
	Skipped []Skipped
}

// Importer maps OpenAPI request bodies onto field drafts.
type Importer struct {
	validate bool
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithValidation toggles document validation before import. It is on by
// default.
func WithValidation(enabled bool) ImporterOption {
	return func(i *Importer) {
		i.validate = enabled
	}
}

// NewImporter constructs an Importer.
func NewImporter(options ...ImporterOption) *Importer {
	imp := &Importer{validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(imp)
		}
	}
	return imp
}

// Operations lists the operations of doc sorted by id. Operations without
// an operationId are keyed as "<method>:<path>".
func (i *Importer) Operations(ctx context.Context, doc Document) ([]Operation, error) {
	spec, err := i.parse(ctx, doc)
	if err != nil {
		return nil, err
	}
	var out []Operation
	for _, entry := range operations(spec) {
		out = append(out, Operation{
			ID:      entry.id,
			Method:  entry.method,
			Path:    entry.path,
			Summary: entry.op.Summary,
			HasBody: bodySchema(entry.op) != nil,
		})
	}
	return out, nil
}

// Import maps the request body properties of operationID onto drafts. The
// drafts are checked with model.Finalize in order; a property whose draft
// does not finalize is reported in Skipped.
func (i *Importer) Import(ctx context.Context, doc Document, operationID string) (Form, error) {
	spec, err := i.parse(ctx, doc)
	if err != nil {
		return Form{}, err
	}

	var found *operationEntry
	for _, entry := range operations(spec) {
		if entry.id == operationID {
			found = &entry
			break
		}
	}
	if found == nil {
		return Form{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	form := Form{Title: found.op.Summary}
	if form.Title == "" {
		form.Title = labels.Humanize(operationID)
	}

	body := bodySchema(found.op)
	if body == nil {
		return form, nil
	}
	properties, required := flatten(body)

	var existing []model.FieldSchema
	for _, name := range orderedNames(properties) {
		prop := properties[name].Value
		if prop == nil {
			form.Skipped = append(form.Skipped, Skipped{Property: name, Reason: "unresolved reference"})
			continue
		}
		if prop.ReadOnly {
			continue
		}
		draft, reason := fieldDraft(name, prop, required[name])
		if reason != "" {
			form.Skipped = append(form.Skipped, Skipped{Property: name, Reason: reason})
			continue
		}
		field, err := model.Finalize(draft, existing)
		if err != nil {
			form.Skipped = append(form.Skipped, Skipped{Property: name, Reason: err.Error()})
			continue
		}
		existing = append(existing, field)
		form.Fields = append(form.Fields, draft)
	}
	return form, nil
}

func (i *Importer) parse(ctx context.Context, doc Document) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if i.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return spec, nil
}

type operationEntry struct {
	id     string
	method string
	path   string
	op     *openapi3.Operation
}

func operations(spec *openapi3.T) []operationEntry {
	if spec.Paths == nil {
		return nil
	}
	var out []operationEntry
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, operationEntry{id: id, method: method, path: path, op: op})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].id < out[b].id })
	return out
}

func bodySchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range bodyMediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// flatten merges allOf members into one property set.
func flatten(schema *openapi3.Schema) (openapi3.Schemas, map[string]bool) {
	properties := make(openapi3.Schemas)
	required := make(map[string]bool)

	var walk func(s *openapi3.Schema)
	walk = func(s *openapi3.Schema) {
		for _, member := range s.AllOf {
			if member != nil && member.Value != nil {
				walk(member.Value)
			}
		}
		for name, prop := range s.Properties {
			properties[name] = prop
		}
		for _, name := range s.Required {
			required[name] = true
		}
	}
	walk(schema)
	return properties, required
}

// orderedNames sorts by the order extension, then by name.
func orderedNames(properties openapi3.Schemas) []string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	rank := func(name string) float64 {
		if prop := properties[name].Value; prop != nil {
			if v, ok := numberExtension(prop.Extensions, ExtensionOrder); ok {
				return v
			}
		}
		return math.Inf(1)
	}
	sort.SliceStable(names, func(a, b int) bool {
		ra, rb := rank(names[a]), rank(names[b])
		if ra != rb {
			return ra < rb
		}
		return names[a] < names[b]
	})
	return names
}

func fieldDraft(name string, prop *openapi3.Schema, required bool) (model.FieldDraft, string) {
	kind, reason := kindFor(prop)
	if reason != "" {
		return model.FieldDraft{}, reason
	}

	draft := model.CreateDraft(kind)
	draft.Name = name
	draft.Label = prop.Title
	if draft.Label == "" {
		draft.Label = labels.Humanize(name)
	}
	draft.Help = prop.Description
	if example, ok := prop.Example.(string); ok {
		draft.Placeholder = example
	}
	draft.Rules.Required = required

	if width, ok := prop.Extensions[ExtensionWidth].(string); ok {
		switch model.Width(width) {
		case model.WidthFull, model.WidthHalf:
			draft.Width = model.Width(width)
		}
	}

	switch {
	case kind.Selection():
		if kind == model.KindSelect && isArray(prop) {
			draft.Multiple = true
		}
		applyOptions(&draft, prop)
	case kind == model.KindFile:
		if isArray(prop) {
			draft.Multiple = true
			if prop.MaxItems != nil {
				draft.Rules.MaxValue = model.Float(float64(*prop.MaxItems))
			}
		}
	case kind.Numeric():
		applyNumeric(&draft, prop)
	case kind.TextLike():
		if prop.MinLength > 0 {
			draft.SetMinLength(int(prop.MinLength))
		}
		if prop.MaxLength != nil {
			draft.SetMaxLength(int(*prop.MaxLength))
		}
		if prop.Pattern != "" {
			draft.Rules.Pattern = prop.Pattern
		}
	}
	return draft, ""
}

func kindFor(prop *openapi3.Schema) (model.Kind, string) {
	if raw, ok := prop.Extensions[ExtensionKind].(string); ok {
		kind, err := model.ParseKind(raw)
		if err != nil {
			return "", err.Error()
		}
		if kind.Structural() {
			return "", fmt.Sprintf("kind %q holds no value", raw)
		}
		return kind, ""
	}

	switch schemaType(prop) {
	case "string":
		if len(prop.Enum) > 0 {
			if len(prop.Enum) <= 3 {
				return model.KindRadioGroup, ""
			}
			return model.KindSelect, ""
		}
		switch prop.Format {
		case "email":
			return model.KindEmail, ""
		case "uri", "url":
			return model.KindURL, ""
		case "date":
			return model.KindDate, ""
		case "date-time":
			return model.KindDatetime, ""
		case "password":
			return model.KindPassword, ""
		case "binary", "byte":
			return model.KindFile, ""
		case "tel", "phone":
			return model.KindTel, ""
		case "textarea":
			return model.KindTextarea, ""
		}
		if prop.MaxLength != nil && *prop.MaxLength > 500 {
			return model.KindTextarea, ""
		}
		return model.KindText, ""
	case "integer", "number":
		if prop.Format == "currency" {
			return model.KindCurrency, ""
		}
		return model.KindNumber, ""
	case "boolean":
		return model.KindCheckboxGroup, ""
	case "array":
		items := itemSchema(prop)
		if items == nil {
			return "", "array without items"
		}
		if schemaType(items) == "string" && (items.Format == "binary" || items.Format == "byte") {
			return model.KindFile, ""
		}
		if len(items.Enum) > 0 {
			return model.KindCheckboxGroup, ""
		}
		return "", "array items need an enum"
	case "":
		return "", "missing type"
	default:
		return "", fmt.Sprintf("unsupported type %q", schemaType(prop))
	}
}

func applyOptions(draft *model.FieldDraft, prop *openapi3.Schema) {
	defaults := map[string]bool{}
	draft.Options = nil

	switch {
	case schemaType(prop) == "boolean":
		draft.AddOption(draft.Label, "true")
		if b, ok := prop.Default.(bool); ok && b {
			defaults["true"] = true
		}
	case isArray(prop):
		for _, v := range itemSchema(prop).Enum {
			value := stringify(v)
			draft.AddOption(labels.Humanize(value), value)
		}
		if list, ok := prop.Default.([]any); ok {
			for _, v := range list {
				defaults[stringify(v)] = true
			}
		}
		if prop.MinItems > 0 {
			draft.Rules.MinValue = model.Float(float64(prop.MinItems))
		}
		if prop.MaxItems != nil {
			draft.Rules.MaxValue = model.Float(float64(*prop.MaxItems))
		}
	default:
		for _, v := range prop.Enum {
			value := stringify(v)
			draft.AddOption(labels.Humanize(value), value)
		}
		if prop.Default != nil {
			defaults[stringify(prop.Default)] = true
		}
	}

	for i, opt := range draft.Options {
		if defaults[opt.Value] {
			draft.SetOptionDefault(i, true)
		}
	}
}

func applyNumeric(draft *model.FieldDraft, prop *openapi3.Schema) {
	if schemaType(prop) == "integer" {
		draft.Rules.IntegerOnly = true
	}
	if prop.Min != nil {
		if *prop.Min == 0 && prop.ExclusiveMin {
			draft.Rules.PositiveOnly = true
		} else {
			draft.SetMinValue(*prop.Min)
		}
	}
	if prop.Max != nil {
		draft.SetMaxValue(*prop.Max)
	}
	if prop.MultipleOf != nil {
		draft.SetStep(*prop.MultipleOf)
	}
}

func schemaType(s *openapi3.Schema) string {
	if s == nil || s.Type == nil {
		return ""
	}
	types := s.Type.Slice()
	for _, t := range types {
		if t != "null" {
			return t
		}
	}
	return ""
}

func isArray(s *openapi3.Schema) bool {
	return schemaType(s) == "array"
}

func itemSchema(s *openapi3.Schema) *openapi3.Schema {
	if s.Items == nil {
		return nil
	}
	return s.Items.Value
}

func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}

func numberExtension(ext map[string]any, key string) (float64, bool) {
	switch v := ext[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case json.RawMessage:
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
