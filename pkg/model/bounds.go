package model

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate parses the date and date-time formats produced by date inputs.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// NormalizeBounds returns a repaired copy of c: negative length, word and
// decimal-place bounds become 0, a min above its max pulls the max up to the
// min, and a non-positive step is dropped. Applying it twice is the same as
// applying it once.
func NormalizeBounds(c Constraints) Constraints {
	out := c.Clone()

	clampNonNegative(out.ExactLength)
	clampNonNegative(out.MinLength)
	clampNonNegative(out.MaxLength)
	clampNonNegative(out.MinWords)
	clampNonNegative(out.MaxWords)
	clampNonNegative(out.DecimalPlaces)

	if out.MinLength != nil && out.MaxLength != nil && *out.MinLength > *out.MaxLength {
		*out.MaxLength = *out.MinLength
	}
	if out.MinWords != nil && out.MaxWords != nil && *out.MinWords > *out.MaxWords {
		*out.MaxWords = *out.MinWords
	}
	if out.MinValue != nil && out.MaxValue != nil && *out.MinValue > *out.MaxValue {
		*out.MaxValue = *out.MinValue
	}
	if minDate, ok := ParseDate(out.MinDate); ok {
		if maxDate, ok := ParseDate(out.MaxDate); ok && minDate.After(maxDate) {
			out.MaxDate = out.MinDate
		}
	}
	if out.Step != nil && *out.Step <= 0 {
		out.Step = nil
	}
	return out
}

func clampNonNegative(v *int) {
	if v != nil && *v < 0 {
		*v = 0
	}
}
