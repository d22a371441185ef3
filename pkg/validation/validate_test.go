package validation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/mask"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func field(kind model.Kind, name string, rules model.Constraints) model.FieldSchema {
	return model.FieldSchema{
		ID:    1,
		Kind:  kind,
		Name:  name,
		Label: name,
		Attributes: model.Attributes{
			Rules: rules,
		},
	}
}

func options(values ...string) []model.Option {
	out := make([]model.Option, 0, len(values))
	for _, v := range values {
		out = append(out, model.Option{Label: v, Value: v})
	}
	return out
}

func message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func TestValidate_Rules(t *testing.T) {
	radio := field(model.KindRadioGroup, "size", model.Constraints{Required: true})
	radio.Options = options("s", "m")
	lonelyRadio := field(model.KindRadioGroup, "size", model.Constraints{})
	lonelyRadio.Options = options("s")
	multiSelect := field(model.KindSelect, "tags", model.Constraints{Required: true, MaxValue: model.Float(2)})
	multiSelect.Multiple = true
	multiSelect.Options = options("a", "b", "c")
	multiFile := field(model.KindFile, "docs", model.Constraints{MaxValue: model.Float(1)})
	multiFile.Multiple = true
	alnum := field(model.KindText, "code", model.Constraints{})
	alnum.Mask = mask.Alphanumeric
	decimalText := field(model.KindText, "ratio", model.Constraints{MaxValue: model.Float(1)})
	decimalText.Mask = mask.Decimal

	tests := []struct {
		name  string
		value string
		field model.FieldSchema
		want  string
	}{
		{name: "required text", value: "   ", field: field(model.KindText, "a", model.Constraints{Required: true}), want: "This field is required"},
		{name: "optional empty text", value: "", field: field(model.KindText, "a", model.Constraints{MinLength: model.Int(3)}), want: ""},
		{name: "required radio", value: "", field: radio, want: "Please select an option"},
		{name: "required multi select", value: ",", field: multiSelect, want: "Please select at least one option"},
		{name: "required checkbox", value: "", field: field(model.KindCheckboxGroup, "c", model.Constraints{Required: true}), want: "At least one option must be selected"},
		{name: "required file", value: "", field: field(model.KindFile, "f", model.Constraints{Required: true}), want: "Please upload a file"},
		{name: "radio needs two options", value: "s", field: lonelyRadio, want: "Radio groups must have at least two options"},
		{name: "exact length", value: "abcd", field: field(model.KindText, "a", model.Constraints{ExactLength: model.Int(5)}), want: "Must be exactly 5 characters"},
		{name: "min length", value: "ab", field: field(model.KindText, "a", model.Constraints{MinLength: model.Int(3)}), want: "Must be at least 3 characters"},
		{name: "max length counts runes", value: "héllo", field: field(model.KindText, "a", model.Constraints{MaxLength: model.Int(5)}), want: ""},
		{name: "max length", value: "abcdef", field: field(model.KindText, "a", model.Constraints{MaxLength: model.Int(5)}), want: "Must be at most 5 characters"},
		{name: "min words textarea", value: "one two", field: field(model.KindTextarea, "bio", model.Constraints{MinWords: model.Int(3)}), want: "Must be at least 3 words"},
		{name: "max words textarea", value: "one two three four", field: field(model.KindTextarea, "bio", model.Constraints{MaxWords: model.Int(3)}), want: "Must be at most 3 words"},
		{name: "words ignored on text", value: "one", field: field(model.KindText, "a", model.Constraints{MinWords: model.Int(3)}), want: ""},
		{name: "alpha only", value: "abc1", field: field(model.KindText, "a", model.Constraints{AlphaOnly: true}), want: "Letters only (A–Z, spaces, and line breaks)"},
		{name: "alpha only allows spaces", value: "ab cd\nef", field: field(model.KindTextarea, "a", model.Constraints{AlphaOnly: true}), want: ""},
		{name: "alphanumeric mask", value: "ab_1", field: alnum, want: "Letters and numbers only (spaces and line breaks allowed)"},
		{name: "no whitespace", value: "a b", field: field(model.KindText, "a", model.Constraints{NoWhitespace: true}), want: "No whitespace allowed"},
		{name: "uppercase", value: "ABc", field: field(model.KindText, "a", model.Constraints{UppercaseOnly: true}), want: "Must be uppercase only"},
		{name: "lowercase", value: "abC", field: field(model.KindText, "a", model.Constraints{LowercaseOnly: true}), want: "Must be lowercase only"},
		{name: "url scheme", value: "example.com", field: field(model.KindURL, "site", model.Constraints{}), want: "URL must start with http:// or https://"},
		{name: "url format", value: "https://", field: field(model.KindURL, "site", model.Constraints{}), want: "Invalid URL format"},
		{name: "url starts with host", value: "https://docs.example.com/go", field: field(model.KindURL, "site", model.Constraints{StartsWith: "docs."}), want: ""},
		{name: "url ends with path", value: "https://example.com/blog", field: field(model.KindURL, "site", model.Constraints{EndsWith: "/docs"}), want: `Must end with "/docs"`},
		{name: "email local part", value: "admin@corp.com", field: field(model.KindEmail, "mail", model.Constraints{Contains: "corp"}), want: `Must contain "corp"`},
		{name: "starts with", value: "xyz", field: field(model.KindText, "a", model.Constraints{StartsWith: "ab"}), want: `Must start with "ab"`},
		{name: "allowed", value: "green", field: field(model.KindText, "a", model.Constraints{AllowedValues: []string{"red", "blue"}}), want: "Must be one of: red, blue"},
		{name: "allowed numeric text", value: "1.50", field: field(model.KindText, "a", model.Constraints{AllowedValues: []string{"1.5", "2"}}), want: ""},
		{name: "disallowed", value: "admin", field: field(model.KindText, "a", model.Constraints{DisallowedValues: []string{"admin", "root"}}), want: `Value "admin" is not allowed`},
		{name: "pattern", value: "12a", field: field(model.KindText, "a", model.Constraints{Pattern: `^\d+$`}), want: "Invalid format"},
		{name: "invalid pattern", value: "12", field: field(model.KindText, "a", model.Constraints{Pattern: `(?=x)`}), want: "Invalid format"},
		{name: "not a number", value: "abc", field: field(model.KindNumber, "n", model.Constraints{}), want: "Must be a valid number"},
		{name: "minimum", value: "5", field: field(model.KindNumber, "n", model.Constraints{MinValue: model.Float(10)}), want: "Minimum is 10"},
		{name: "maximum", value: "12.5", field: field(model.KindNumber, "n", model.Constraints{MaxValue: model.Float(12.25)}), want: "Maximum is 12.25"},
		{name: "no negative", value: "-1", field: field(model.KindNumber, "n", model.Constraints{NoNegative: true}), want: "No negative numbers allowed"},
		{name: "positive only", value: "0", field: field(model.KindNumber, "n", model.Constraints{PositiveOnly: true}), want: "Must be a positive number"},
		{name: "integer only", value: "2.5", field: field(model.KindNumber, "n", model.Constraints{IntegerOnly: true}), want: "Must be an integer"},
		{name: "decimal places from raw", value: "1.500", field: field(model.KindNumber, "n", model.Constraints{DecimalPlaces: model.Int(2)}), want: "Maximum 2 decimal places allowed"},
		{name: "currency decimal places", value: "$1,234.50", field: field(model.KindCurrency, "n", model.Constraints{DecimalPlaces: model.Int(2), MaxValue: model.Float(2000)}), want: ""},
		{name: "step misaligned", value: "7", field: field(model.KindNumber, "n", model.Constraints{MinValue: model.Float(1), Step: model.Float(5)}), want: "Must align with step of 5"},
		{name: "step aligned from min", value: "11", field: field(model.KindNumber, "n", model.Constraints{MinValue: model.Float(1), Step: model.Float(5)}), want: ""},
		{name: "step float error", value: "0.3", field: field(model.KindNumber, "n", model.Constraints{Step: model.Float(0.1)}), want: ""},
		{name: "step negative side", value: "-0.5", field: field(model.KindNumber, "n", model.Constraints{Step: model.Float(1)}), want: "Must align with step of 1"},
		{name: "numeric allowed trailing zeros", value: "10.00", field: field(model.KindNumber, "n", model.Constraints{AllowedValues: []string{"10", "20"}}), want: ""},
		{name: "numeric allowed", value: "15", field: field(model.KindNumber, "n", model.Constraints{AllowedValues: []string{"10", "20"}}), want: "Allowed values: 10, 20"},
		{name: "numeric disallowed", value: "$13.0", field: field(model.KindCurrency, "n", model.Constraints{DisallowedValues: []string{"13"}}), want: "Value 13 is not allowed"},
		{name: "decimal mask is numeric", value: "1.5", field: decimalText, want: "Maximum is 1"},
		{name: "invalid date", value: "31/12/2024", field: field(model.KindDate, "d", model.Constraints{}), want: "Must be a valid date"},
		{name: "min date", value: "2024-01-01", field: field(model.KindDate, "d", model.Constraints{MinDate: "2024-02-01"}), want: "Must be on or after 2024-02-01"},
		{name: "max datetime", value: "2024-03-01T10:30", field: field(model.KindDatetime, "d", model.Constraints{MaxDate: "2024-03-01T09:00"}), want: "Must be on or before 2024-03-01T09:00"},
		{name: "date on bound", value: "2024-02-01", field: field(model.KindDate, "d", model.Constraints{MinDate: "2024-02-01", MaxDate: "2024-02-01"}), want: ""},
		{name: "select max count", value: "a,b,c", field: multiSelect, want: "Select no more than 2 options"},
		{name: "file extension", value: `[{"name":"a.PDF","sizeMB":1},{"name":"b.exe","sizeMB":1}]`, field: field(model.KindFile, "f", model.Constraints{Accept: ".pdf, .png"}), want: "File must be one of: .pdf, .png"},
		{name: "file extension case insensitive", value: `[{"name":"a.PDF","sizeMB":1}]`, field: field(model.KindFile, "f", model.Constraints{Accept: ".pdf"}), want: ""},
		{name: "file count", value: `[{"name":"a.pdf","sizeMB":1},{"name":"b.pdf","sizeMB":1}]`, field: multiFile, want: "You can upload a maximum of 1 files"},
		{name: "file size", value: `[{"name":"a.pdf","sizeMB":2.5}]`, field: field(model.KindFile, "f", model.Constraints{MaxFileSizeMB: model.Float(2)}), want: "Each file must be ≤ 2 MB"},
		{name: "malformed file list", value: "resume.docx", field: field(model.KindFile, "f", model.Constraints{Accept: "pdf"}), want: "File must be one of: pdf"},
		{name: "custom message overrides", value: "", field: field(model.KindText, "a", model.Constraints{Required: true, CustomMessage: "Tell us your name"}), want: "Tell us your name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := message(validation.Validate(tt.value, tt.field, map[string]string{}, []model.FieldSchema{tt.field}))
			if got != tt.want {
				t.Fatalf("Validate(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidate_StructuralAlwaysPasses(t *testing.T) {
	header := model.FieldSchema{Kind: model.KindHeader, Name: "header_1", Label: "H", Attributes: model.Attributes{Rules: model.Constraints{Required: true}}}
	if err := validation.Validate("", header, nil, nil); err != nil {
		t.Fatalf("header should always pass, got %v", err)
	}
}

func TestValidate_RepairsBoundsWithoutMutation(t *testing.T) {
	number := field(model.KindNumber, "qty", model.Constraints{MinValue: model.Float(10), MaxValue: model.Float(0)})

	err := validation.Validate("5", number, nil, nil)
	if got := message(err); got != "Minimum is 10" {
		t.Fatalf("got %q, want minimum message", got)
	}
	if err := validation.Validate("10", number, nil, nil); err != nil {
		t.Fatalf("10 should pass after max repairs to 10: %v", err)
	}
	if *number.Rules.MaxValue != 0 {
		t.Fatalf("Validate mutated the field constraints")
	}
}

func TestValidate_FieldErrorDetail(t *testing.T) {
	f := field(model.KindText, "nick", model.Constraints{Pattern: "("})
	err := validation.Validate("x", f, nil, nil)
	var fieldErr *validation.FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected *FieldError, got %T", err)
	}
	want := &validation.FieldError{Field: "nick", Rule: validation.RulePatternInvalid, Message: "Invalid format"}
	if diff := cmp.Diff(want, fieldErr); diff != "" {
		t.Fatalf("field error mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_MatchField(t *testing.T) {
	pwd := model.FieldSchema{ID: 1, Kind: model.KindPassword, Name: "pwd", Label: "Password"}
	confirm := model.FieldSchema{ID: 2, Kind: model.KindPassword, Name: "confirm", Label: "Confirm",
		Attributes: model.Attributes{Rules: model.Constraints{MatchField: "pwd"}}}
	fields := []model.FieldSchema{pwd, confirm}

	values := map[string]string{"pwd": "abc", "confirm": "abd"}
	if got := message(validation.Validate("abd", confirm, values, fields)); got != "Must match Password" {
		t.Fatalf("mismatch message = %q", got)
	}
	values["pwd"] = "abd"
	if err := validation.Validate("abd", confirm, values, fields); err != nil {
		t.Fatalf("matching values should pass: %v", err)
	}

	orphan := confirm
	orphan.Rules.MatchField = "secret"
	err := validation.Validate("abd", orphan, values, fields)
	var fieldErr *validation.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Rule != validation.RuleMatchMissing {
		t.Fatalf("expected missing reference failure, got %v", err)
	}
	if fieldErr.Message != `Match field "secret" not found in form` {
		t.Fatalf("missing reference message = %q", fieldErr.Message)
	}
}

func TestValidate_NumericMatchIgnoresFormatting(t *testing.T) {
	total := model.FieldSchema{ID: 1, Kind: model.KindCurrency, Name: "total", Label: "Total"}
	again := model.FieldSchema{ID: 2, Kind: model.KindCurrency, Name: "again", Label: "Again",
		Attributes: model.Attributes{Rules: model.Constraints{MatchField: "total"}}}
	values := map[string]string{"total": "$1,200.00"}
	if err := validation.Validate("1200", again, values, []model.FieldSchema{total, again}); err != nil {
		t.Fatalf("numerically equal values should match: %v", err)
	}
}

func TestValidate_CheckboxMinSelected(t *testing.T) {
	group := field(model.KindCheckboxGroup, "toppings", model.Constraints{MinValue: model.Float(2)})
	group.Options = options("cheese", "ham", "olives")

	if got := message(validation.Validate("cheese", group, nil, nil)); got != "Select at least 2 options" {
		t.Fatalf("one selection: got %q", got)
	}
	if err := validation.Validate("cheese,ham", group, nil, nil); err != nil {
		t.Fatalf("two selections should pass: %v", err)
	}
}

func TestValidate_IsPure(t *testing.T) {
	f := field(model.KindText, "code", model.Constraints{
		MinLength:     model.Int(8),
		MaxLength:     model.Int(4),
		AllowedValues: []string{"abc", "def"},
		MatchField:    "other",
	})
	other := field(model.KindText, "other", model.Constraints{})
	other.ID = 2
	fields := []model.FieldSchema{f, other}
	values := map[string]string{"code": "abc", "other": "abc"}

	fieldBefore := f.Clone()
	fieldsBefore := []model.FieldSchema{f.Clone(), other.Clone()}
	valuesBefore := map[string]string{"code": "abc", "other": "abc"}

	first := validation.Validate("abc", f, values, fields)
	second := validation.Validate("abc", f, values, fields)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated validation differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(fieldBefore, f); diff != "" {
		t.Fatalf("field mutated (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(fieldsBefore, fields); diff != "" {
		t.Fatalf("fields mutated (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(valuesBefore, values); diff != "" {
		t.Fatalf("values mutated (-before +after):\n%s", diff)
	}
}
