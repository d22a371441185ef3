package model

import (
	"fmt"
	"strings"
)

// SchemaErrorCode classifies why a draft could not be finalized.
type SchemaErrorCode string

const (
	CodeMissingType         SchemaErrorCode = "missing_type"
	CodeMissingName         SchemaErrorCode = "missing_name"
	CodeMissingLabel        SchemaErrorCode = "missing_label"
	CodeDuplicateName       SchemaErrorCode = "duplicate_name"
	CodeInsufficientOptions SchemaErrorCode = "insufficient_options"
	CodeUnknownAttribute    SchemaErrorCode = "unknown_attribute"
)

// SchemaError reports a draft that does not satisfy the schema invariants.
// Name is set for duplicate names, Kind and MinRequired for option counts,
// Attribute and Value for unknown presentation values.
type SchemaError struct {
	Code        SchemaErrorCode
	Name        string
	Kind        Kind
	MinRequired int
	Attribute   string
	Value       string
}

// Sentinel schema errors for use with errors.Is. Matching compares codes
// only.
var (
	ErrMissingType         = &SchemaError{Code: CodeMissingType}
	ErrMissingName         = &SchemaError{Code: CodeMissingName}
	ErrMissingLabel        = &SchemaError{Code: CodeMissingLabel}
	ErrDuplicateName       = &SchemaError{Code: CodeDuplicateName}
	ErrInsufficientOptions = &SchemaError{Code: CodeInsufficientOptions}
	ErrUnknownAttribute    = &SchemaError{Code: CodeUnknownAttribute}
)

func (e *SchemaError) Error() string {
	switch e.Code {
	case CodeMissingType:
		return "model: field kind is required"
	case CodeMissingName:
		return "model: field name is required"
	case CodeMissingLabel:
		return "model: field label is required"
	case CodeDuplicateName:
		return fmt.Sprintf("model: field name %q is already in use", e.Name)
	case CodeInsufficientOptions:
		return fmt.Sprintf("model: %s needs at least %d option(s)", e.Kind, e.MinRequired)
	case CodeUnknownAttribute:
		return fmt.Sprintf("model: unknown %s %q", e.Attribute, e.Value)
	}
	return "model: invalid field"
}

// Is matches any SchemaError with the same code.
func (e *SchemaError) Is(target error) bool {
	t, ok := target.(*SchemaError)
	return ok && t.Code == e.Code
}

// Message is the builder-facing text for the error.
func (e *SchemaError) Message() string {
	switch e.Code {
	case CodeMissingType:
		return "Type is required."
	case CodeMissingName:
		return "Name (key) is required."
	case CodeMissingLabel:
		return "Label is required."
	case CodeDuplicateName:
		return fmt.Sprintf("Field name %q is already in use.", e.Name)
	case CodeInsufficientOptions:
		if e.Kind == KindRadioGroup {
			return fmt.Sprintf("Radio groups must have at least %d options.", e.MinRequired)
		}
		return fmt.Sprintf("%s fields must have at least %d option.", e.Kind, e.MinRequired)
	case CodeUnknownAttribute:
		return fmt.Sprintf("Unknown %s %q.", e.Attribute, e.Value)
	}
	return "Invalid field."
}

// Finalize validates a draft against the fields already in the form and
// returns the finalized schema. The entry whose ID equals the draft's ID is
// ignored for the uniqueness check so an edited field can keep its name.
// Finalize does not assign IDs; it returns the draft's ID unchanged.
func Finalize(draft FieldDraft, existing []FieldSchema) (FieldSchema, error) {
	if draft.Kind == "" || !draft.Kind.Valid() {
		return FieldSchema{}, &SchemaError{Code: CodeMissingType}
	}

	name := strings.TrimSpace(draft.Name)
	label := strings.TrimSpace(draft.Label)

	if draft.Kind.ValueBearing() {
		if name == "" {
			return FieldSchema{}, &SchemaError{Code: CodeMissingName}
		}
		if label == "" {
			return FieldSchema{}, &SchemaError{Code: CodeMissingLabel}
		}
		for _, field := range existing {
			if field.ID == draft.ID && draft.ID != 0 {
				continue
			}
			if field.Kind.ValueBearing() && field.Name == name {
				return FieldSchema{}, &SchemaError{Code: CodeDuplicateName, Name: name}
			}
		}
	} else if draft.Kind == KindHeader && label == "" {
		return FieldSchema{}, &SchemaError{Code: CodeMissingLabel}
	}

	if need := draft.Kind.MinOptions(); len(draft.Options) < need {
		return FieldSchema{}, &SchemaError{Code: CodeInsufficientOptions, Kind: draft.Kind, MinRequired: need}
	}

	if err := checkPresentation(draft.Attributes); err != nil {
		return FieldSchema{}, err
	}

	attrs := draft.Attributes.Clone()
	attrs.Rules = NormalizeBounds(attrs.Rules)
	attrs.Rules.MatchField = strings.TrimSpace(attrs.Rules.MatchField)
	if attrs.Width == "" {
		attrs.Width = draft.Kind.DefaultWidth()
	}
	if !draft.Kind.Selection() {
		attrs.Options = nil
	} else if singleChoice(draft.Kind, attrs.Multiple) {
		attrs.Options = keepFirstDefault(attrs.Options)
	}

	return FieldSchema{
		ID:         draft.ID,
		Kind:       draft.Kind,
		Name:       name,
		Label:      label,
		Attributes: attrs,
	}, nil
}

// checkPresentation rejects set presentation values outside their closed
// sets. Empty values are left to the kind defaults.
func checkPresentation(attrs Attributes) error {
	switch {
	case attrs.Width != "" && attrs.Width != WidthFull && attrs.Width != WidthHalf:
		return &SchemaError{Code: CodeUnknownAttribute, Attribute: "width", Value: string(attrs.Width)}
	case attrs.Orientation != "" && attrs.Orientation != OrientationVertical && attrs.Orientation != OrientationHorizontal:
		return &SchemaError{Code: CodeUnknownAttribute, Attribute: "orientation", Value: string(attrs.Orientation)}
	case attrs.HeaderLevel != "" && !attrs.HeaderLevel.Valid():
		return &SchemaError{Code: CodeUnknownAttribute, Attribute: "header level", Value: string(attrs.HeaderLevel)}
	case attrs.SpacerSize != "" && !attrs.SpacerSize.Valid():
		return &SchemaError{Code: CodeUnknownAttribute, Attribute: "spacer size", Value: string(attrs.SpacerSize)}
	case !attrs.Mask.Valid():
		return &SchemaError{Code: CodeUnknownAttribute, Attribute: "mask", Value: string(attrs.Mask)}
	}
	return nil
}
