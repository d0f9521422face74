// Package money provides the decimal arithmetic used on extracted invoice
// amounts. Amounts arrive as optional float64 values (nil = not found); every
// operation here treats a missing operand as "unknown" and never guesses.
package money

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency codes (ISO-4217) seen on supported invoices.
const (
	CRC = "CRC" // Costa Rican colón
	COP = "COP" // Colombian peso
	USD = "USD" // US dollar
	EUR = "EUR" // Euro
)

// DefaultTolerance is the absolute difference accepted when comparing amounts
// printed with two decimals.
const DefaultTolerance = 0.01

// Style selects the separators used by FormatLocale.
type Style int

const (
	// CommaDecimal renders 1.234.567,89
	CommaDecimal Style = iota
	// DotDecimal renders 1,234,567.89
	DotDecimal
)

// Symbol returns the currency symbol for an ISO code, or "" if unknown.
func Symbol(code string) string {
	if code == "" {
		return ""
	}
	c := money.GetCurrency(strings.ToUpper(code))
	if c == nil {
		return ""
	}
	return c.Grapheme
}

// Known reports whether go-money has the currency code registered.
func Known(code string) bool {
	return code != "" && money.GetCurrency(strings.ToUpper(code)) != nil
}

// Display formats an optional amount with its currency, e.g. "₡837,669.95".
// Returns "" for a missing amount.
func Display(v *float64, code string) string {
	if v == nil {
		return ""
	}
	if !Known(code) {
		return decimal.NewFromFloat(*v).StringFixed(2)
	}
	return money.NewFromFloat(*v, strings.ToUpper(code)).Display()
}

// Add returns a+b, or nil when either operand is missing.
func Add(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return fromDecimal(decimal.NewFromFloat(*a).Add(decimal.NewFromFloat(*b)))
}

// Sub returns a-b, or nil when either operand is missing.
func Sub(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return fromDecimal(decimal.NewFromFloat(*a).Sub(decimal.NewFromFloat(*b)))
}

// Mul returns a*b rounded to two decimals, or nil when either operand is missing.
func Mul(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return fromDecimal(decimal.NewFromFloat(*a).Mul(decimal.NewFromFloat(*b)).Round(2))
}

// OrZero returns the amount or 0 when missing.
func OrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// ApproxEqual compares two amounts with an absolute tolerance.
func ApproxEqual(a, b, tolerance float64) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(tolerance))
}

// Within reports whether v lies in [low, high] allowing the tolerance on both ends.
func Within(v, low, high, tolerance float64) bool {
	return v >= low-tolerance && v <= high+tolerance
}

// FormatLocale renders d with two decimals in the requested Latin-American style.
func FormatLocale(d decimal.Decimal, style Style) string {
	thousands, dec := ",", "."
	if style == CommaDecimal {
		thousands, dec = ".", ","
	}

	fixed := d.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(thousands)
		}
		b.WriteRune(r)
	}
	b.WriteString(dec)
	b.WriteString(fracPart)
	return b.String()
}

func fromDecimal(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}
