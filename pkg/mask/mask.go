// Package mask implements the live input masks applied to field values as the
// user types. Every function is pure: the same kind and raw input always yield
// the same display string, and applying a mask to its own output is a no-op
// (custom masks excepted, they never rewrite).
package mask

import (
	"strconv"
	"strings"
)

// Kind identifies a masking policy.
type Kind string

const (
	None         Kind = ""
	CreditCard   Kind = "credit-card"
	SSN          Kind = "ssn"
	Zip          Kind = "zip"
	USPostal     Kind = "us-postal"
	Phone        Kind = "phone"
	Currency     Kind = "currency"
	Decimal      Kind = "decimal"
	Time         Kind = "time"
	Alphanumeric Kind = "alphanumeric"
	Slug         Kind = "slug"
	Alpha        Kind = "alpha"
	Email        Kind = "email"
	URL          Kind = "url"
	Custom       Kind = "custom"
)

var kinds = []Kind{
	CreditCard, SSN, Zip, USPostal, Phone, Currency, Decimal, Time,
	Alphanumeric, Slug, Alpha, Email, URL, Custom,
}

// Kinds lists every supported mask in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k is a known mask. The empty kind is valid and means
// "no mask".
func (k Kind) Valid() bool {
	if k == None {
		return true
	}
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Numeric reports whether the mask produces a number-like value.
func (k Kind) Numeric() bool {
	return k == Currency || k == Decimal
}

// Option tweaks how Apply treats the raw input.
type Option func(*config)

type config struct {
	multiline bool
	pattern   string
}

// WithMultiline keeps spaces and line breaks for the alphanumeric mask. Use it
// for textarea fields.
func WithMultiline() Option {
	return func(cfg *config) {
		cfg.multiline = true
	}
}

// WithPattern records the custom pattern paired with a custom mask. Custom
// masks never rewrite input; the pattern is enforced by validation.
func WithPattern(pattern string) Option {
	return func(cfg *config) {
		cfg.pattern = pattern
	}
}

// Apply shapes raw input according to kind and returns the display string.
func Apply(kind Kind, raw string, opts ...Option) string {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	switch kind {
	case CreditCard:
		return groupEvery(truncate(digitsOnly(raw), 16), 4, ' ')
	case SSN:
		return formatSSN(truncate(digitsOnly(raw), 9))
	case Zip:
		return truncate(digitsOnly(raw), 5)
	case USPostal:
		return formatPostal(truncate(digitsOnly(raw), 9))
	case Phone:
		return formatPhone(truncate(digitsOnly(raw), 10))
	case Currency:
		return formatCurrency(raw)
	case Decimal:
		return keep(raw, func(r rune) bool { return isDigit(r) || r == '.' })
	case Time:
		return formatTime(truncate(digitsOnly(raw), 4))
	case Alphanumeric:
		return keep(raw, func(r rune) bool {
			if isLetter(r) || isDigit(r) {
				return true
			}
			return cfg.multiline && (r == ' ' || r == '\n' || r == '\r')
		})
	case Slug:
		return slugify(raw)
	case Alpha:
		return keep(raw, isLetter)
	default:
		return raw
	}
}

func formatSSN(d string) string {
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 5:
		return d[:3] + "-" + d[3:]
	default:
		return d[:3] + "-" + d[3:5] + "-" + d[5:]
	}
}

func formatPostal(d string) string {
	if len(d) <= 5 {
		return d
	}
	return d[:5] + "-" + d[5:]
}

func formatPhone(d string) string {
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return "(" + d[:3] + ") " + d[3:]
	default:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	}
}

func formatTime(d string) string {
	if len(d) <= 2 {
		return d
	}
	return d[:2] + ":" + d[2:]
}

func formatCurrency(raw string) string {
	value, ok := ParseLeadingFloat(keep(raw, func(r rune) bool { return isDigit(r) || r == '.' }))
	if !ok {
		return ""
	}
	return "$" + GroupThousands(strconv.FormatFloat(value, 'f', 2, 64))
}

// GroupThousands inserts comma separators into the integer part of a plain
// decimal string such as "1234567.50" or "-1200".
func GroupThousands(number string) string {
	sign := ""
	if strings.HasPrefix(number, "-") {
		sign, number = "-", number[1:]
	}
	intPart, frac := number, ""
	if idx := strings.IndexByte(number, '.'); idx >= 0 {
		intPart, frac = number[:idx], number[idx:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}

// ParseLeadingFloat parses the longest numeric prefix of s: an optional sign,
// digits, and at most one decimal point followed by digits. It reports false
// when no digit is found. "1.2.3" parses as 1.2 and "-" does not parse.
func ParseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := 0
	for end < len(s) && isDigitByte(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && isDigitByte(s[frac]) {
			frac++
			digits++
		}
		if frac > end+1 {
			end = frac
		} else if digits > 0 {
			end++
		}
	}
	if digits == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func slugify(raw string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(raw) {
		if isDigit(r) || (r >= 'a' && r <= 'z') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

func digitsOnly(s string) string {
	return keep(s, isDigit)
}

func keep(s string, allow func(rune) bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if allow(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func groupEvery(s string, n int, sep byte) string {
	if len(s) <= n {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i += n {
		if i > 0 {
			b.WriteByte(sep)
		}
		end := i + n
		if end > len(s) {
			end = len(s)
		}
		b.WriteString(s[i:end])
	}
	return b.String()
}

func isDigit(r rune) bool     { return r >= '0' && r <= '9' }
func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }
func isLetter(r rune) bool    { return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') }
