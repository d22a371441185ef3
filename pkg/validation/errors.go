package validation

// Rule identifies which constraint rejected a value.
type Rule string

const (
	RuleRequired         Rule = "required"
	RuleRadioOptions     Rule = "radio_options"
	RuleExactLength      Rule = "exact_length"
	RuleMinLength        Rule = "min_length"
	RuleMaxLength        Rule = "max_length"
	RuleMinWords         Rule = "min_words"
	RuleMaxWords         Rule = "max_words"
	RuleAlphaOnly        Rule = "alpha_only"
	RuleAlphanumericOnly Rule = "alphanumeric_only"
	RuleNoWhitespace     Rule = "no_whitespace"
	RuleUppercaseOnly    Rule = "uppercase_only"
	RuleLowercaseOnly    Rule = "lowercase_only"
	RuleURLScheme        Rule = "url_scheme"
	RuleURLFormat        Rule = "url_format"
	RuleStartsWith       Rule = "starts_with"
	RuleEndsWith         Rule = "ends_with"
	RuleContains         Rule = "contains"
	RuleAllowed          Rule = "allowed"
	RuleDisallowed       Rule = "disallowed"
	RulePattern          Rule = "pattern"
	RulePatternInvalid   Rule = "pattern_invalid"
	RuleNumber           Rule = "number"
	RuleMinValue         Rule = "min_value"
	RuleMaxValue         Rule = "max_value"
	RuleNoNegative       Rule = "no_negative"
	RulePositiveOnly     Rule = "positive_only"
	RuleIntegerOnly      Rule = "integer_only"
	RuleDecimalPlaces    Rule = "decimal_places"
	RuleStep             Rule = "step"
	RuleDate             Rule = "date"
	RuleMinDate          Rule = "min_date"
	RuleMaxDate          Rule = "max_date"
	RuleMinSelected      Rule = "min_selected"
	RuleMaxSelected      Rule = "max_selected"
	RuleFileType         Rule = "file_type"
	RuleFileCount        Rule = "file_count"
	RuleFileSize         Rule = "file_size"
	RuleMatchMissing     Rule = "match_missing"
	RuleMatch            Rule = "match"
)

// Schema reports whether the rule rejects the field definition itself, so
// that no value can pass it.
func (r Rule) Schema() bool {
	switch r {
	case RuleRadioOptions, RulePatternInvalid, RuleMatchMissing:
		return true
	}
	return false
}

// FieldError is a rejected value. Message is the text shown next to the
// control; it already reflects the field's custom message, if any.
type FieldError struct {
	Field   string
	Rule    Rule
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}
