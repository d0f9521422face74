package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/normalizer"
)

// Patterns compiles a field's fallback chain. Every expression is made
// case-insensitive; order the list from most specific to most generic.
func Patterns(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile("(?i)" + expr)
	}
	return compiled
}

// FindFirst returns the first capture group of the first pattern that
// matches text (the whole match when the pattern has no group), trimmed.
// The first pattern in the list wins, not the best match.
func FindFirst(patterns []*regexp.Regexp, text string) string {
	if text == "" {
		return ""
	}
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[0])
	}
	return ""
}

// FindGroups returns every capture group, trimmed, of the first pattern that
// matches text, or nil. Used where one field is printed as several tokens,
// such as a series prefix and a number on separate lines.
func FindGroups(patterns []*regexp.Regexp, text string) []string {
	if text == "" {
		return nil
	}
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		groups := make([]string, len(m)-1)
		for i, g := range m[1:] {
			groups[i] = strings.TrimSpace(g)
		}
		return groups
	}
	return nil
}

// FindAmount is FindFirst followed by the locale number parser.
func FindAmount(patterns []*regexp.Regexp, text string) *float64 {
	return normalizer.ParseNumber(FindFirst(patterns, text))
}

// amountExpr captures a printed amount such as 741,300.84 or 1.190.000,00.
const amountExpr = `(-?\d(?:[\d.,]*\d)?)`
