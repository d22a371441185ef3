package model

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"github.com/goliatone/go-formbuilder/pkg/mask"
)

var draftDecoder = schema.NewDecoder()

func init() {
	draftDecoder.IgnoreUnknownKeys(true)
}

// draftForm is the flat shape of a posted builder form. Options arrive as
// repeated "option" entries written "Label=value" (or just "value"), defaults
// as repeated "default" entries naming option values.
type draftForm struct {
	Kind        string   `schema:"kind"`
	Name        string   `schema:"name"`
	Label       string   `schema:"label"`
	Width       string   `schema:"width"`
	Placeholder string   `schema:"placeholder"`
	Help        string   `schema:"help"`
	Mask        string   `schema:"mask"`
	Orientation string   `schema:"orientation"`
	Multiple    bool     `schema:"multiple"`
	Rows        int      `schema:"rows"`
	HeaderLevel string   `schema:"headerLevel"`
	SpacerSize  string   `schema:"spacerSize"`
	HideOnSmall bool     `schema:"hideOnSmall"`
	Options     []string `schema:"option"`
	Defaults    []string `schema:"default"`

	Required         bool     `schema:"required"`
	ExactLength      *int     `schema:"exactLength"`
	MinLength        *int     `schema:"minLength"`
	MaxLength        *int     `schema:"maxLength"`
	MinWords         *int     `schema:"minWords"`
	MaxWords         *int     `schema:"maxWords"`
	AlphaOnly        bool     `schema:"alphaOnly"`
	AlphanumericOnly bool     `schema:"alphanumericOnly"`
	NoWhitespace     bool     `schema:"noWhitespace"`
	UppercaseOnly    bool     `schema:"uppercaseOnly"`
	LowercaseOnly    bool     `schema:"lowercaseOnly"`
	StartsWith       string   `schema:"startsWith"`
	EndsWith         string   `schema:"endsWith"`
	Contains         string   `schema:"contains"`
	Allowed          string   `schema:"allowedValues"`
	Disallowed       string   `schema:"disallowedValues"`
	Pattern          string   `schema:"pattern"`
	MinValue         *float64 `schema:"minValue"`
	MaxValue         *float64 `schema:"maxValue"`
	Step             *float64 `schema:"step"`
	NoNegative       bool     `schema:"noNegative"`
	PositiveOnly     bool     `schema:"positiveOnly"`
	IntegerOnly      bool     `schema:"integerOnly"`
	DecimalPlaces    *int     `schema:"decimalPlaces"`
	MinDate          string   `schema:"minDate"`
	MaxDate          string   `schema:"maxDate"`
	Accept           string   `schema:"accept"`
	MaxFileSizeMB    *float64 `schema:"maxFileSizeMB"`
	MatchField       string   `schema:"matchField"`
	CustomMessage    string   `schema:"customMessage"`
}

// DecodeDraft builds a draft from form-encoded builder input. Kind defaults
// are applied first, then every provided attribute is layered on top through
// the draft setters so bound snapping and single-default rules still hold.
func DecodeDraft(values url.Values) (FieldDraft, error) {
	var form draftForm
	if err := draftDecoder.Decode(&form, values); err != nil {
		return FieldDraft{}, fmt.Errorf("model: decode draft: %w", err)
	}

	var kind Kind
	if strings.TrimSpace(form.Kind) != "" {
		parsed, err := ParseKind(strings.TrimSpace(form.Kind))
		if err != nil {
			return FieldDraft{}, err
		}
		kind = parsed
	}

	draft := FieldDraft{Name: form.Name, Label: form.Label}
	draft.Multiple = form.Multiple
	for _, entry := range form.Options {
		label, value, found := strings.Cut(entry, "=")
		if !found {
			value = label
		}
		draft.AddOption(strings.TrimSpace(label), strings.TrimSpace(value))
	}
	draft.SetKind(kind)

	if form.Mask != "" {
		maskKind := mask.Kind(form.Mask)
		if !maskKind.Valid() {
			return FieldDraft{}, fmt.Errorf("model: unknown mask %q", form.Mask)
		}
		draft.SetMask(maskKind)
	}
	if form.Width != "" {
		draft.Width = Width(form.Width)
	}
	if form.Placeholder != "" {
		draft.Placeholder = form.Placeholder
	}
	draft.Help = form.Help
	if form.Orientation != "" {
		draft.Orientation = Orientation(form.Orientation)
	}
	draft.Rows = form.Rows
	if form.HeaderLevel != "" {
		draft.HeaderLevel = HeaderLevel(form.HeaderLevel)
	}
	if form.SpacerSize != "" {
		draft.SpacerSize = SpacerSize(form.SpacerSize)
	}
	draft.HideOnSmall = form.HideOnSmall

	for _, value := range form.Defaults {
		for i, opt := range draft.Options {
			if opt.Value == strings.TrimSpace(value) {
				draft.SetOptionDefault(i, true)
			}
		}
	}

	rules := &draft.Rules
	rules.Required = form.Required
	rules.ExactLength = form.ExactLength
	if form.MinLength != nil {
		draft.SetMinLength(*form.MinLength)
	}
	if form.MaxLength != nil {
		draft.SetMaxLength(*form.MaxLength)
	}
	if form.MinWords != nil {
		draft.SetMinWords(*form.MinWords)
	}
	if form.MaxWords != nil {
		draft.SetMaxWords(*form.MaxWords)
	}
	rules.AlphaOnly = form.AlphaOnly
	rules.AlphanumericOnly = form.AlphanumericOnly
	rules.NoWhitespace = form.NoWhitespace
	rules.UppercaseOnly = form.UppercaseOnly
	rules.LowercaseOnly = form.LowercaseOnly
	rules.StartsWith = form.StartsWith
	rules.EndsWith = form.EndsWith
	rules.Contains = form.Contains
	rules.AllowedValues = SplitSelection(form.Allowed)
	rules.DisallowedValues = SplitSelection(form.Disallowed)
	if form.Pattern != "" {
		rules.Pattern = form.Pattern
	}
	if form.MinValue != nil {
		draft.SetMinValue(*form.MinValue)
	}
	if form.MaxValue != nil {
		draft.SetMaxValue(*form.MaxValue)
	}
	if form.Step != nil {
		draft.SetStep(*form.Step)
	}
	rules.NoNegative = form.NoNegative
	rules.PositiveOnly = form.PositiveOnly
	rules.IntegerOnly = form.IntegerOnly
	rules.DecimalPlaces = form.DecimalPlaces
	if form.MinDate != "" {
		draft.SetMinDate(form.MinDate)
	}
	if form.MaxDate != "" {
		draft.SetMaxDate(form.MaxDate)
	}
	rules.Accept = form.Accept
	rules.MaxFileSizeMB = form.MaxFileSizeMB
	rules.MatchField = form.MatchField
	rules.CustomMessage = form.CustomMessage

	return draft, nil
}
