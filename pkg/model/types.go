package model

import "github.com/goliatone/go-formbuilder/pkg/mask"

// Width controls whether a field takes a full row or shares it with another
// half-width field.
type Width string

const (
	WidthFull Width = "full"
	WidthHalf Width = "half"
)

// Orientation lays out radio and checkbox groups.
type Orientation string

const (
	OrientationVertical   Orientation = "vertical"
	OrientationHorizontal Orientation = "horizontal"
)

// HeaderLevel is the heading rank of a header block.
type HeaderLevel string

const (
	HeaderH1 HeaderLevel = "h1"
	HeaderH2 HeaderLevel = "h2"
	HeaderH3 HeaderLevel = "h3"
	HeaderH4 HeaderLevel = "h4"
)

// Valid reports whether l is one of the header levels.
func (l HeaderLevel) Valid() bool {
	switch l {
	case HeaderH1, HeaderH2, HeaderH3, HeaderH4:
		return true
	}
	return false
}

// SpacerSize is the vertical gap a spacer block inserts.
type SpacerSize string

const (
	SpacerSmall  SpacerSize = "sm"
	SpacerMedium SpacerSize = "md"
	SpacerLarge  SpacerSize = "lg"
	SpacerXL     SpacerSize = "xl"
)

// Valid reports whether s is one of the spacer sizes.
func (s SpacerSize) Valid() bool {
	switch s {
	case SpacerSmall, SpacerMedium, SpacerLarge, SpacerXL:
		return true
	}
	return false
}

// Option is one choice of a checkbox group, radio group or select.
type Option struct {
	Label   string `json:"label" yaml:"label"`
	Value   string `json:"value" yaml:"value"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

// Constraints is the validation rule bag of a field. Every rule is optional
// and only applies to the kinds it makes sense for.
//
// MinValue and MaxValue double as the selected-count bounds for checkbox
// groups and multi-selects, and MaxValue caps the file count of a multiple
// file field.
type Constraints struct {
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	ExactLength *int `json:"exactLength,omitempty" yaml:"exactLength,omitempty"`
	MinLength   *int `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	MinWords    *int `json:"minWords,omitempty" yaml:"minWords,omitempty"`
	MaxWords    *int `json:"maxWords,omitempty" yaml:"maxWords,omitempty"`

	AlphaOnly        bool `json:"alphaOnly,omitempty" yaml:"alphaOnly,omitempty"`
	AlphanumericOnly bool `json:"alphanumericOnly,omitempty" yaml:"alphanumericOnly,omitempty"`
	NoWhitespace     bool `json:"noWhitespace,omitempty" yaml:"noWhitespace,omitempty"`
	UppercaseOnly    bool `json:"uppercaseOnly,omitempty" yaml:"uppercaseOnly,omitempty"`
	LowercaseOnly    bool `json:"lowercaseOnly,omitempty" yaml:"lowercaseOnly,omitempty"`

	StartsWith       string   `json:"startsWith,omitempty" yaml:"startsWith,omitempty"`
	EndsWith         string   `json:"endsWith,omitempty" yaml:"endsWith,omitempty"`
	Contains         string   `json:"contains,omitempty" yaml:"contains,omitempty"`
	AllowedValues    []string `json:"allowedValues,omitempty" yaml:"allowedValues,omitempty"`
	DisallowedValues []string `json:"disallowedValues,omitempty" yaml:"disallowedValues,omitempty"`
	Pattern          string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	MinValue      *float64 `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	MaxValue      *float64 `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`
	Step          *float64 `json:"step,omitempty" yaml:"step,omitempty"`
	NoNegative    bool     `json:"noNegative,omitempty" yaml:"noNegative,omitempty"`
	PositiveOnly  bool     `json:"positiveOnly,omitempty" yaml:"positiveOnly,omitempty"`
	IntegerOnly   bool     `json:"integerOnly,omitempty" yaml:"integerOnly,omitempty"`
	DecimalPlaces *int     `json:"decimalPlaces,omitempty" yaml:"decimalPlaces,omitempty"`

	MinDate string `json:"minDate,omitempty" yaml:"minDate,omitempty"`
	MaxDate string `json:"maxDate,omitempty" yaml:"maxDate,omitempty"`

	Accept        string   `json:"accept,omitempty" yaml:"accept,omitempty"`
	MaxFileSizeMB *float64 `json:"maxFileSizeMB,omitempty" yaml:"maxFileSizeMB,omitempty"`

	MatchField    string `json:"matchField,omitempty" yaml:"matchField,omitempty"`
	CustomMessage string `json:"customMessage,omitempty" yaml:"customMessage,omitempty"`
}

// Clone returns a deep copy.
func (c Constraints) Clone() Constraints {
	out := c
	out.ExactLength = cloneInt(c.ExactLength)
	out.MinLength = cloneInt(c.MinLength)
	out.MaxLength = cloneInt(c.MaxLength)
	out.MinWords = cloneInt(c.MinWords)
	out.MaxWords = cloneInt(c.MaxWords)
	out.DecimalPlaces = cloneInt(c.DecimalPlaces)
	out.MinValue = cloneFloat(c.MinValue)
	out.MaxValue = cloneFloat(c.MaxValue)
	out.Step = cloneFloat(c.Step)
	out.MaxFileSizeMB = cloneFloat(c.MaxFileSizeMB)
	out.AllowedValues = cloneStrings(c.AllowedValues)
	out.DisallowedValues = cloneStrings(c.DisallowedValues)
	return out
}

// Attributes groups everything a field carries besides its identity. Both
// FieldSchema and FieldDraft embed it.
type Attributes struct {
	Width       Width       `json:"width,omitempty" yaml:"width,omitempty"`
	Placeholder string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Help        string      `json:"help,omitempty" yaml:"help,omitempty"`
	Mask        mask.Kind   `json:"mask,omitempty" yaml:"mask,omitempty"`
	Rules       Constraints `json:"rules" yaml:"rules,omitempty"`
	Options     []Option    `json:"options,omitempty" yaml:"options,omitempty"`
	Orientation Orientation `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Multiple    bool        `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Rows        int         `json:"rows,omitempty" yaml:"rows,omitempty"`

	HeaderLevel HeaderLevel `json:"headerLevel,omitempty" yaml:"headerLevel,omitempty"`
	SpacerSize  SpacerSize  `json:"spacerSize,omitempty" yaml:"spacerSize,omitempty"`
	HideOnSmall bool        `json:"hideOnSmall,omitempty" yaml:"hideOnSmall,omitempty"`
}

// Clone returns a deep copy.
func (a Attributes) Clone() Attributes {
	out := a
	out.Rules = a.Rules.Clone()
	if a.Options != nil {
		out.Options = make([]Option, len(a.Options))
		copy(out.Options, a.Options)
	}
	return out
}

// FieldSchema is a finalized field definition. Obtain one through Finalize
// (or NewBlock for structural blocks); the zero value is not a valid field.
type FieldSchema struct {
	ID         int    `json:"id" yaml:"id,omitempty"`
	Kind       Kind   `json:"kind" yaml:"kind"`
	Name       string `json:"name" yaml:"name"`
	Label      string `json:"label" yaml:"label"`
	Attributes `yaml:",inline"`
}

// Clone returns a deep copy.
func (f FieldSchema) Clone() FieldSchema {
	f.Attributes = f.Attributes.Clone()
	return f
}

// MultiSelect reports whether the field holds a comma-joined list of picked
// option values.
func (f FieldSchema) MultiSelect() bool {
	return f.Kind == KindCheckboxGroup || (f.Kind == KindSelect && f.Multiple)
}

// SingleChoice reports whether at most one option may be picked or defaulted.
func (f FieldSchema) SingleChoice() bool {
	return singleChoice(f.Kind, f.Multiple)
}

// OptionLabel returns the label of the option with the given value, or the
// value itself when no option matches.
func (f FieldSchema) OptionLabel(value string) string {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// DisplayLabel is the label, falling back to the name.
func (f FieldSchema) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// FieldDraft is a field under construction. Kind may be empty and ID is zero
// until the draft is loaded from an existing field for editing.
type FieldDraft struct {
	ID         int    `json:"id,omitempty" yaml:"id,omitempty"`
	Kind       Kind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	Attributes `yaml:",inline"`
}

// DraftFrom loads a finalized field back into an editable draft.
func DraftFrom(field FieldSchema) FieldDraft {
	return FieldDraft{
		ID:         field.ID,
		Kind:       field.Kind,
		Name:       field.Name,
		Label:      field.Label,
		Attributes: field.Attributes.Clone(),
	}
}

// Bound reports whether the draft was loaded from an existing field.
func (d FieldDraft) Bound() bool {
	return d.ID != 0
}

func singleChoice(kind Kind, multiple bool) bool {
	return kind == KindRadioGroup || (kind == KindSelect && !multiple)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Int returns a pointer to v, for populating optional constraints.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for populating optional constraints.
func Float(v float64) *float64 { return &v }
