package normalizer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var reNonNumeric = regexp.MustCompile(`[^0-9,.\-]`)

// ParseNumber converts a Latin-American formatted amount into a float.
//
// Everything except digits, commas, dots and minus signs is stripped. The
// later of the last comma and the last dot is the decimal separator and the
// other one is a thousands separator, so both "1.234.567,89" and
// "1,234,567.89" yield 1234567.89. Returns nil when no digits remain or the
// cleaned string is malformed. Never panics.
func ParseNumber(s string) *float64 {
	d, ok := ParseDecimal(s)
	if !ok {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

// ParseNumberString returns the canonical decimal string of s ("1234567.89"),
// or "" when s holds no parseable number.
func ParseNumberString(s string) string {
	d, ok := ParseDecimal(s)
	if !ok {
		return ""
	}
	return d.String()
}

// ParseDecimal is ParseNumber with an exact decimal result.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	cleaned := CanonicalNumber(s)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// CanonicalNumber rewrites s with a dot decimal separator and no thousands
// separators. It returns "" when s carries no digits. The result is not
// guaranteed to be a valid number ("1.2.3" stays as is).
func CanonicalNumber(s string) string {
	cleaned := reNonNumeric.ReplaceAllString(s, "")
	if !strings.ContainsAny(cleaned, "0123456789") {
		return ""
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma > lastDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case lastDot > lastComma:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	return cleaned
}

// IsNumericToken reports whether a whitespace-delimited token is a bare amount
// such as "741,300.84", "0.00" or "-5".
func IsNumericToken(tok string) bool {
	if tok == "" || !strings.ContainsAny(tok, "0123456789") {
		return false
	}
	for i, r := range tok {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
		case r == '-' && i == 0:
		default:
			return false
		}
	}
	last := tok[len(tok)-1]
	return last >= '0' && last <= '9'
}
