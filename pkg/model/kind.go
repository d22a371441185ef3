package model

import "fmt"

// Kind enumerates the supported field kinds.
type Kind string

const (
	KindText          Kind = "text"
	KindEmail         Kind = "email"
	KindPassword      Kind = "password"
	KindURL           Kind = "url"
	KindTel           Kind = "tel"
	KindNumber        Kind = "number"
	KindCurrency      Kind = "currency"
	KindDate          Kind = "date"
	KindDatetime      Kind = "datetime"
	KindFile          Kind = "file"
	KindCheckboxGroup Kind = "checkbox-group"
	KindRadioGroup    Kind = "radio-group"
	KindSelect        Kind = "select"
	KindTextarea      Kind = "textarea"
	KindHeader        Kind = "header"
	KindSpacer        Kind = "spacer"
)

var allKinds = []Kind{
	KindText, KindEmail, KindPassword, KindURL, KindTel, KindNumber,
	KindCurrency, KindDate, KindDatetime, KindFile, KindCheckboxGroup,
	KindRadioGroup, KindSelect, KindTextarea, KindHeader, KindSpacer,
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind converts a raw string into a Kind. "checkbox" and
// "datetime-local" are accepted as aliases.
func ParseKind(raw string) (Kind, error) {
	switch raw {
	case "checkbox":
		return KindCheckboxGroup, nil
	case "datetime-local":
		return KindDatetime, nil
	}
	kind := Kind(raw)
	if !kind.Valid() {
		return "", fmt.Errorf("model: unknown field kind %q", raw)
	}
	return kind, nil
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Structural reports whether the kind only affects layout.
func (k Kind) Structural() bool {
	return k == KindHeader || k == KindSpacer
}

// ValueBearing reports whether the kind stores a value in the form.
func (k Kind) ValueBearing() bool {
	return k.Valid() && !k.Structural()
}

// Selection reports whether values are picked from Options.
func (k Kind) Selection() bool {
	return k == KindCheckboxGroup || k == KindRadioGroup || k == KindSelect
}

// TextLike reports whether free-text rules (length, char classes, lists,
// pattern) apply.
func (k Kind) TextLike() bool {
	switch k {
	case KindText, KindEmail, KindPassword, KindURL, KindTel, KindTextarea:
		return true
	}
	return false
}

// Numeric reports whether the value is parsed as a number.
func (k Kind) Numeric() bool {
	return k == KindNumber || k == KindCurrency
}

// Temporal reports whether the value is a date or date-time.
func (k Kind) Temporal() bool {
	return k == KindDate || k == KindDatetime
}

// MinOptions is the minimum option count a selection kind needs.
func (k Kind) MinOptions() int {
	switch k {
	case KindRadioGroup:
		return 2
	case KindCheckboxGroup, KindSelect:
		return 1
	}
	return 0
}

// DefaultWidth is the layout width a new field of this kind starts with.
func (k Kind) DefaultWidth() Width {
	switch k {
	case KindFile, KindHeader, KindSpacer, "":
		return WidthFull
	}
	return WidthHalf
}
