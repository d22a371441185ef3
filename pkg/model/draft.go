package model

import (
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/mask"
)

// autoMasks are adopted when a draft's kind is set, until the mask is changed
// explicitly.
var autoMasks = map[Kind]mask.Kind{
	KindTel:   mask.Phone,
	KindEmail: mask.Email,
	KindURL:   mask.URL,
}

// CreateDraft returns a draft with the defaults for kind applied. An empty
// kind yields a blank full-width draft.
func CreateDraft(kind Kind) FieldDraft {
	draft := FieldDraft{}
	draft.SetKind(kind)
	return draft
}

// SetKind switches the draft to kind. The layout width goes back to the
// kind's default, the mask together with its pattern, length cap and
// placeholder is reset, selection kinds are topped up to their minimum option
// count and tel, email and url adopt their preset mask. Name, label and the
// remaining rules are kept.
func (d *FieldDraft) SetKind(kind Kind) {
	d.Kind = kind
	d.Width = kind.DefaultWidth()
	d.Mask = mask.None
	d.Rules.Pattern = ""
	d.Rules.MaxLength = nil
	d.Placeholder = ""

	if kind.Selection() {
		for i := len(d.Options); i < kind.MinOptions(); i++ {
			d.Options = append(d.Options, Option{
				Label: fmt.Sprintf("Option %d", i+1),
				Value: fmt.Sprintf("opt%d", i+1),
			})
		}
		if kind != KindSelect && d.Orientation == "" {
			d.Orientation = OrientationVertical
		}
		if singleChoice(kind, d.Multiple) {
			d.Options = keepFirstDefault(d.Options)
		}
	} else {
		d.Options = nil
		d.Orientation = ""
	}

	switch kind {
	case KindHeader:
		if d.HeaderLevel == "" {
			d.HeaderLevel = HeaderH2
		}
	case KindSpacer:
		if d.SpacerSize == "" {
			d.SpacerSize = SpacerMedium
		}
	}

	if preset, ok := autoMasks[kind]; ok {
		d.applyMask(preset)
	}
}

// SetMask explicitly selects a mask, copying its preset pattern, length cap
// and placeholder. Selecting no mask clears them; a custom mask keeps the
// current pattern so it can be edited.
func (d *FieldDraft) SetMask(kind mask.Kind) {
	if kind == mask.None {
		d.Mask = mask.None
		d.Rules.Pattern = ""
		d.Rules.MaxLength = nil
		d.Placeholder = ""
		return
	}
	d.applyMask(kind)
}

func (d *FieldDraft) applyMask(kind mask.Kind) {
	d.Mask = kind
	preset, ok := mask.PresetFor(kind)
	if !ok {
		return
	}
	d.Rules.Pattern = preset.Pattern
	if preset.MaxLength > 0 {
		d.Rules.MaxLength = Int(preset.MaxLength)
	} else {
		d.Rules.MaxLength = nil
	}
	d.Placeholder = preset.Placeholder
}

// SetMinLength sets the minimum length, raising the maximum when it would
// fall below the new minimum.
func (d *FieldDraft) SetMinLength(n int) {
	d.Rules.MinLength, d.Rules.MaxLength = snapMinInt(n, d.Rules.MaxLength)
}

// SetMaxLength sets the maximum length, lowering the minimum when it would
// exceed the new maximum.
func (d *FieldDraft) SetMaxLength(n int) {
	d.Rules.MaxLength, d.Rules.MinLength = snapMaxInt(n, d.Rules.MinLength)
}

// SetMinWords sets the minimum word count, raising the maximum when needed.
func (d *FieldDraft) SetMinWords(n int) {
	d.Rules.MinWords, d.Rules.MaxWords = snapMinInt(n, d.Rules.MaxWords)
}

// SetMaxWords sets the maximum word count, lowering the minimum when needed.
func (d *FieldDraft) SetMaxWords(n int) {
	d.Rules.MaxWords, d.Rules.MinWords = snapMaxInt(n, d.Rules.MinWords)
}

// SetMinValue sets the numeric minimum, raising the maximum when needed.
func (d *FieldDraft) SetMinValue(v float64) {
	d.Rules.MinValue = Float(v)
	if d.Rules.MaxValue != nil && *d.Rules.MaxValue < v {
		d.Rules.MaxValue = Float(v)
	}
}

// SetMaxValue sets the numeric maximum, lowering the minimum when needed.
func (d *FieldDraft) SetMaxValue(v float64) {
	d.Rules.MaxValue = Float(v)
	if d.Rules.MinValue != nil && *d.Rules.MinValue > v {
		d.Rules.MinValue = Float(v)
	}
}

// SetMinDate sets the earliest accepted date, moving the latest date up when
// it lies before the new minimum.
func (d *FieldDraft) SetMinDate(raw string) {
	d.Rules.MinDate = raw
	minDate, ok := ParseDate(raw)
	if !ok {
		return
	}
	if maxDate, ok := ParseDate(d.Rules.MaxDate); ok && maxDate.Before(minDate) {
		d.Rules.MaxDate = raw
	}
}

// SetMaxDate sets the latest accepted date, moving the earliest date down
// when it lies after the new maximum.
func (d *FieldDraft) SetMaxDate(raw string) {
	d.Rules.MaxDate = raw
	maxDate, ok := ParseDate(raw)
	if !ok {
		return
	}
	if minDate, ok := ParseDate(d.Rules.MinDate); ok && minDate.After(maxDate) {
		d.Rules.MinDate = raw
	}
}

// SetStep sets the numeric step. A non-positive step unsets it.
func (d *FieldDraft) SetStep(v float64) {
	if v <= 0 {
		d.Rules.Step = nil
		return
	}
	d.Rules.Step = Float(v)
}

// AddOption appends an option.
func (d *FieldDraft) AddOption(label, value string) {
	d.Options = append(d.Options, Option{Label: label, Value: value})
}

// RemoveOption deletes the option at index i. It reports false for an out of
// range index.
func (d *FieldDraft) RemoveOption(i int) bool {
	if i < 0 || i >= len(d.Options) {
		return false
	}
	d.Options = append(d.Options[:i], d.Options[i+1:]...)
	return true
}

// SetOptionDefault marks or unmarks option i as a default. Single-choice
// kinds keep at most one default, so marking one clears the others.
func (d *FieldDraft) SetOptionDefault(i int, on bool) bool {
	if i < 0 || i >= len(d.Options) {
		return false
	}
	if on && singleChoice(d.Kind, d.Multiple) {
		for j := range d.Options {
			d.Options[j].Default = false
		}
	}
	d.Options[i].Default = on
	return true
}

func snapMinInt(n int, upper *int) (*int, *int) {
	if n < 0 {
		n = 0
	}
	if upper != nil && *upper < n {
		upper = Int(n)
	}
	return Int(n), upper
}

func snapMaxInt(n int, lower *int) (*int, *int) {
	if n < 0 {
		n = 0
	}
	if lower != nil && *lower > n {
		lower = Int(n)
	}
	return Int(n), lower
}

func keepFirstDefault(options []Option) []Option {
	seen := false
	for i := range options {
		if !options[i].Default {
			continue
		}
		if seen {
			options[i].Default = false
		}
		seen = true
	}
	return options
}
