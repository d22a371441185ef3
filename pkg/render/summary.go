package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/mask"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// EmptyValue is shown in a summary for a field without a value.
const EmptyValue = "—"

// SummaryEntry is one submitted value formatted for display. Items is set for
// list values (checkbox groups, multi-selects, files) and Value then holds the
// items joined with ", ".
type SummaryEntry struct {
	Name      string
	Label     string
	Value     string
	Items     []string
	Multiline bool
}

// Summarize formats the values of every value-bearing field, in field order.
func Summarize(fields []model.FieldSchema, values map[string]string) []SummaryEntry {
	entries := make([]SummaryEntry, 0, len(fields))
	for _, field := range fields {
		if !field.Kind.ValueBearing() {
			continue
		}
		value, items := FormatValue(field, values[field.Name])
		entries = append(entries, SummaryEntry{
			Name:      field.Name,
			Label:     field.DisplayLabel(),
			Value:     value,
			Items:     items,
			Multiline: field.Kind == model.KindTextarea && value != EmptyValue,
		})
	}
	return entries
}

// FormatValue renders a stored value for display. Option values become
// option labels, files become "name (size MB)", currency is shown in US
// dollars with the field's decimal places (two by default), and numbers are
// grouped by thousands. Values that do not parse are returned unchanged.
func FormatValue(field model.FieldSchema, raw string) (string, []string) {
	if strings.TrimSpace(raw) == "" {
		return EmptyValue, nil
	}

	switch {
	case field.MultiSelect():
		return listValue(selectedLabels(field, raw))
	case field.Kind == model.KindRadioGroup || field.Kind == model.KindSelect:
		return field.OptionLabel(raw), nil
	case field.Kind == model.KindFile:
		return listValue(fileLabels(raw))
	case field.Kind == model.KindCurrency:
		return formatCurrency(raw, field.Rules.DecimalPlaces), nil
	case field.Kind == model.KindNumber:
		return formatNumberValue(raw, field.Rules.DecimalPlaces), nil
	case field.Kind == model.KindDate:
		if t, ok := model.ParseDate(raw); ok {
			return t.Format("1/2/2006"), nil
		}
	case field.Kind == model.KindDatetime:
		if t, ok := model.ParseDate(raw); ok {
			return t.Format("1/2/2006, 3:04:05 PM"), nil
		}
	}
	return raw, nil
}

func listValue(items []string) (string, []string) {
	if len(items) == 0 {
		return EmptyValue, nil
	}
	return strings.Join(items, ", "), items
}

// selectedLabels lists the labels of the picked options in option order.
// Picked values that match no option are dropped.
func selectedLabels(field model.FieldSchema, raw string) []string {
	picked := make(map[string]struct{})
	for _, value := range model.SplitSelection(raw) {
		picked[value] = struct{}{}
	}
	var labels []string
	for _, opt := range field.Options {
		if _, ok := picked[opt.Value]; ok {
			labels = append(labels, opt.Label)
		}
	}
	return labels
}

func fileLabels(raw string) []string {
	files := model.ParseFiles(raw)
	labels := make([]string, 0, len(files))
	for _, file := range files {
		if file.SizeMB == 0 {
			labels = append(labels, file.Name)
			continue
		}
		labels = append(labels, file.Name+" ("+strconv.FormatFloat(file.SizeMB, 'f', -1, 64)+" MB)")
	}
	return labels
}

func formatCurrency(raw string, decimalPlaces *int) string {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	value, ok := mask.ParseLeadingFloat(clean)
	if !ok {
		return raw
	}
	places := 2
	if decimalPlaces != nil {
		places = *decimalPlaces
	}
	if value < 0 {
		return "-$" + groupedFixed(-value, places, places)
	}
	return "$" + groupedFixed(value, places, places)
}

func formatNumberValue(raw string, decimalPlaces *int) string {
	value, ok := mask.ParseLeadingFloat(raw)
	if !ok {
		return raw
	}
	if decimalPlaces != nil {
		return groupedFixed(value, *decimalPlaces, *decimalPlaces)
	}
	if strings.Contains(raw, ".") {
		return groupedFixed(value, 2, 6)
	}
	return groupedFixed(value, 0, 6)
}

// groupedFixed formats value with between minFrac and maxFrac fraction digits
// and comma-grouped thousands.
func groupedFixed(value float64, minFrac, maxFrac int) string {
	s := strconv.FormatFloat(value, 'f', maxFrac, 64)
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		end := len(s)
		for end > dot+1+minFrac && s[end-1] == '0' {
			end--
		}
		s = strings.TrimSuffix(s[:end], ".")
	}
	return mask.GroupThousands(s)
}
