// Package validation checks a single field value against the field's
// constraints. Validate is a pure function of its arguments: it never mutates
// the field, the form values or the field list, and it keeps no state between
// calls.
package validation

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-formbuilder/pkg/mask"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// stepEpsilon absorbs float error when checking step alignment.
const stepEpsilon = 1e-9

// Validate checks value against field. values holds the current form values
// by field name and fields the full schema; both are only consulted for
// cross-field rules. It returns nil when the value is acceptable and a
// *FieldError otherwise. Structural fields always pass.
func Validate(value string, field model.FieldSchema, values map[string]string, fields []model.FieldSchema) error {
	if !field.Kind.ValueBearing() {
		return nil
	}

	c := checker{
		field:  field,
		rules:  model.NormalizeBounds(field.Rules),
		value:  value,
		values: values,
		fields: fields,
	}
	rule, message := c.run()
	if rule == "" {
		return nil
	}
	if c.rules.CustomMessage != "" {
		message = c.rules.CustomMessage
	}
	return &FieldError{Field: field.Name, Rule: rule, Message: message}
}

type checker struct {
	field  model.FieldSchema
	rules  model.Constraints
	value  string
	values map[string]string
	fields []model.FieldSchema
}

func (c checker) run() (Rule, string) {
	steps := []func() (Rule, string){
		c.required,
		c.radioOptions,
		c.text,
		c.numeric,
		c.temporal,
		c.selectionCount,
		c.files,
		c.match,
	}
	for _, step := range steps {
		if rule, message := step(); rule != "" {
			return rule, message
		}
	}
	return "", ""
}

func (c checker) required() (Rule, string) {
	if !c.rules.Required {
		return "", ""
	}
	trimmed := strings.TrimSpace(c.value)
	switch {
	case c.field.Kind == model.KindSelect && c.field.Multiple:
		if len(model.SplitSelection(c.value)) == 0 {
			return RuleRequired, "Please select at least one option"
		}
	case c.field.Kind == model.KindSelect || c.field.Kind == model.KindRadioGroup:
		if trimmed == "" {
			return RuleRequired, "Please select an option"
		}
	case c.field.Kind == model.KindCheckboxGroup:
		if len(model.SplitSelection(c.value)) == 0 {
			return RuleRequired, "At least one option must be selected"
		}
	case c.field.Kind == model.KindFile:
		if len(model.ParseFiles(c.value)) == 0 {
			return RuleRequired, "Please upload a file"
		}
	default:
		if trimmed == "" {
			return RuleRequired, "This field is required"
		}
	}
	return "", ""
}

func (c checker) radioOptions() (Rule, string) {
	if c.field.Kind == model.KindRadioGroup && len(c.field.Options) < 2 {
		return RuleRadioOptions, "Radio groups must have at least two options"
	}
	return "", ""
}

func (c checker) text() (Rule, string) {
	if !c.field.Kind.TextLike() || c.value == "" {
		return "", ""
	}
	r, value := c.rules, c.value
	length := utf8.RuneCountInString(value)

	if r.ExactLength != nil && *r.ExactLength > 0 && length != *r.ExactLength {
		return RuleExactLength, fmt.Sprintf("Must be exactly %d characters", *r.ExactLength)
	}
	if r.MinLength != nil && *r.MinLength > 0 && length < *r.MinLength {
		return RuleMinLength, fmt.Sprintf("Must be at least %d characters", *r.MinLength)
	}
	if r.MaxLength != nil && *r.MaxLength > 0 && length > *r.MaxLength {
		return RuleMaxLength, fmt.Sprintf("Must be at most %d characters", *r.MaxLength)
	}

	if c.field.Kind == model.KindTextarea {
		words := len(strings.Fields(value))
		if r.MinWords != nil && *r.MinWords > 0 && words < *r.MinWords {
			return RuleMinWords, fmt.Sprintf("Must be at least %d words", *r.MinWords)
		}
		if r.MaxWords != nil && *r.MaxWords > 0 && words > *r.MaxWords {
			return RuleMaxWords, fmt.Sprintf("Must be at most %d words", *r.MaxWords)
		}
	}

	if r.AlphaOnly && !onlyRunes(value, isLetterOrBreak) {
		return RuleAlphaOnly, "Letters only (A–Z, spaces, and line breaks)"
	}
	if (r.AlphanumericOnly || c.field.Mask == mask.Alphanumeric) && !onlyRunes(value, isAlnumOrBreak) {
		return RuleAlphanumericOnly, "Letters and numbers only (spaces and line breaks allowed)"
	}
	if r.NoWhitespace && strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return RuleNoWhitespace, "No whitespace allowed"
	}
	if r.UppercaseOnly && value != strings.ToUpper(value) {
		return RuleUppercaseOnly, "Must be uppercase only"
	}
	if r.LowercaseOnly && value != strings.ToLower(value) {
		return RuleLowercaseOnly, "Must be lowercase only"
	}

	target := value
	switch c.field.Kind {
	case model.KindURL:
		lower := strings.ToLower(value)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			return RuleURLScheme, "URL must start with http:// or https://"
		}
		parsed, err := url.Parse(strings.TrimSpace(value))
		if err != nil || parsed.Host == "" {
			return RuleURLFormat, "Invalid URL format"
		}
		target = parsed.Hostname() + parsed.Path
	case model.KindEmail:
		target, _, _ = strings.Cut(value, "@")
	}

	if r.StartsWith != "" && !strings.HasPrefix(target, r.StartsWith) {
		return RuleStartsWith, fmt.Sprintf("Must start with %q", r.StartsWith)
	}
	if r.EndsWith != "" && !strings.HasSuffix(target, r.EndsWith) {
		return RuleEndsWith, fmt.Sprintf("Must end with %q", r.EndsWith)
	}
	if r.Contains != "" && !strings.Contains(target, r.Contains) {
		return RuleContains, fmt.Sprintf("Must contain %q", r.Contains)
	}

	if len(r.AllowedValues) > 0 && !containsEquivalent(r.AllowedValues, value, false) {
		return RuleAllowed, "Must be one of: " + strings.Join(r.AllowedValues, ", ")
	}
	if len(r.DisallowedValues) > 0 && containsEquivalent(r.DisallowedValues, value, false) {
		return RuleDisallowed, fmt.Sprintf("Value %q is not allowed", value)
	}

	if r.Pattern != "" {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return RulePatternInvalid, "Invalid format"
		}
		if !re.MatchString(value) {
			return RulePattern, "Invalid format"
		}
	}
	return "", ""
}

func (c checker) numeric() (Rule, string) {
	if !isNumericField(c.field) || strings.TrimSpace(c.value) == "" {
		return "", ""
	}
	r := c.rules
	num, ok := ParseNumber(c.value)
	if !ok {
		return RuleNumber, "Must be a valid number"
	}

	if r.MinValue != nil && num < *r.MinValue {
		return RuleMinValue, "Minimum is " + formatNumber(*r.MinValue)
	}
	if r.MaxValue != nil && num > *r.MaxValue {
		return RuleMaxValue, "Maximum is " + formatNumber(*r.MaxValue)
	}
	if r.NoNegative && num < 0 {
		return RuleNoNegative, "No negative numbers allowed"
	}
	if r.PositiveOnly && num <= 0 {
		return RulePositiveOnly, "Must be a positive number"
	}
	if r.IntegerOnly && num != math.Trunc(num) {
		return RuleIntegerOnly, "Must be an integer"
	}
	if r.DecimalPlaces != nil && fractionDigits(c.value) > *r.DecimalPlaces {
		return RuleDecimalPlaces, fmt.Sprintf("Maximum %d decimal places allowed", *r.DecimalPlaces)
	}
	if r.Step != nil && !alignsWithStep(num, *r.Step, r.MinValue) {
		return RuleStep, "Must align with step of " + formatNumber(*r.Step)
	}
	if len(r.AllowedValues) > 0 && !containsEquivalent(r.AllowedValues, c.value, true) {
		return RuleAllowed, "Allowed values: " + strings.Join(r.AllowedValues, ", ")
	}
	if len(r.DisallowedValues) > 0 && containsEquivalent(r.DisallowedValues, c.value, true) {
		return RuleDisallowed, fmt.Sprintf("Value %s is not allowed", formatNumber(num))
	}
	return "", ""
}

func (c checker) temporal() (Rule, string) {
	if !c.field.Kind.Temporal() || strings.TrimSpace(c.value) == "" {
		return "", ""
	}
	ts, ok := model.ParseDate(c.value)
	if !ok {
		return RuleDate, "Must be a valid date"
	}
	if minDate, ok := model.ParseDate(c.rules.MinDate); ok && ts.Before(minDate) {
		return RuleMinDate, "Must be on or after " + c.rules.MinDate
	}
	if maxDate, ok := model.ParseDate(c.rules.MaxDate); ok && ts.After(maxDate) {
		return RuleMaxDate, "Must be on or before " + c.rules.MaxDate
	}
	return "", ""
}

func (c checker) selectionCount() (Rule, string) {
	if !c.field.MultiSelect() {
		return "", ""
	}
	count := float64(len(model.SplitSelection(c.value)))
	if c.rules.MinValue != nil && count < *c.rules.MinValue {
		return RuleMinSelected, fmt.Sprintf("Select at least %s options", formatNumber(*c.rules.MinValue))
	}
	if c.rules.MaxValue != nil && count > *c.rules.MaxValue {
		return RuleMaxSelected, fmt.Sprintf("Select no more than %s options", formatNumber(*c.rules.MaxValue))
	}
	return "", ""
}

func (c checker) files() (Rule, string) {
	if c.field.Kind != model.KindFile || c.value == "" {
		return "", ""
	}
	files := model.ParseFiles(c.value)
	r := c.rules

	if accept := acceptedExtensions(r.Accept); len(accept) > 0 {
		for _, file := range files {
			if _, ok := accept[file.Extension()]; !ok {
				return RuleFileType, "File must be one of: " + r.Accept
			}
		}
	}
	if c.field.Multiple && r.MaxValue != nil && float64(len(files)) > *r.MaxValue {
		return RuleFileCount, fmt.Sprintf("You can upload a maximum of %s files", formatNumber(*r.MaxValue))
	}
	if r.MaxFileSizeMB != nil {
		for _, file := range files {
			if file.SizeMB > *r.MaxFileSizeMB {
				return RuleFileSize, fmt.Sprintf("Each file must be ≤ %s MB", formatNumber(*r.MaxFileSizeMB))
			}
		}
	}
	return "", ""
}

func (c checker) match() (Rule, string) {
	name := c.rules.MatchField
	if name == "" {
		return "", ""
	}
	target, ok := findField(c.fields, name)
	if !ok {
		return RuleMatchMissing, fmt.Sprintf("Match field %q not found in form", name)
	}
	numeric := isNumericField(c.field)
	if normalize(c.value, numeric) != normalize(c.values[name], numeric) {
		return RuleMatch, "Must match " + target.DisplayLabel()
	}
	return "", ""
}

func findField(fields []model.FieldSchema, name string) (model.FieldSchema, bool) {
	for _, field := range fields {
		if field.Kind.ValueBearing() && field.Name == name {
			return field, true
		}
	}
	return model.FieldSchema{}, false
}

func isNumericField(field model.FieldSchema) bool {
	return field.Kind.Numeric() || field.Mask.Numeric()
}

// ParseNumber reads a numeric field value the way the numeric rules do:
// currency symbols, separators and spaces are dropped before the leading
// number is parsed, so "$1,234.50" reads as 1234.5.
func ParseNumber(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	return mask.ParseLeadingFloat(cleaned)
}

// normalize canonicalises a value for equality checks. Numeric fields compare
// by parsed value; other fields compare trimmed text, except that two values
// which both read fully as numbers compare numerically.
func normalize(raw string, numeric bool) string {
	if numeric {
		if num, ok := ParseNumber(raw); ok {
			return formatNumber(num)
		}
		return strings.TrimSpace(raw)
	}
	trimmed := strings.TrimSpace(raw)
	if num, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(num, 0) && !math.IsNaN(num) {
		return formatNumber(num)
	}
	return trimmed
}

func containsEquivalent(list []string, value string, numeric bool) bool {
	want := normalize(value, numeric)
	for _, entry := range list {
		if normalize(entry, numeric) == want {
			return true
		}
	}
	return false
}

func alignsWithStep(num, step float64, lower *float64) bool {
	offset := 0.0
	if lower != nil {
		offset = *lower
	}
	remainder := math.Abs(math.Mod(num-offset, step))
	return remainder <= stepEpsilon || math.Abs(remainder-step) <= stepEpsilon
}

// fractionDigits counts the digits after the first decimal point of the raw
// input, so "1.50" has two even though it parses as 1.5.
func fractionDigits(raw string) int {
	_, frac, found := strings.Cut(raw, ".")
	if !found {
		return 0
	}
	count := 0
	for _, r := range frac {
		if r < '0' || r > '9' {
			break
		}
		count++
	}
	return count
}

func acceptedExtensions(accept string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, entry := range strings.Split(accept, ",") {
		entry = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(entry), ".", ""))
		if entry != "" {
			out[entry] = struct{}{}
		}
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func onlyRunes(s string, allow func(rune) bool) bool {
	for _, r := range s {
		if !allow(r) {
			return false
		}
	}
	return true
}

func isLetterOrBreak(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == ' ' || r == '\n' || r == '\r'
}

func isAlnumOrBreak(r rune) bool {
	return isLetterOrBreak(r) || (r >= '0' && r <= '9')
}
