// Package normalizer turns raw PDF text and the values found in it into
// canonical forms: whitespace-normalized text, locale-independent numbers,
// currency codes, and re-joined wrapped lines.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"
)

// ScannedThreshold is the minimum count of non-whitespace characters a
// genuine text layer is expected to have.
const ScannedThreshold = 50

var (
	reHorizontalSpace = regexp.MustCompile(`[\t\f\r\x0B \p{Zs}]+`)
	reSpaceAtLineEdge = regexp.MustCompile(` ?\n ?`)
	reMultiBlank      = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses whitespace noise in extracted text:
// non-breaking and other horizontal spaces become one space, spaces around
// line breaks are dropped, three or more newlines become two, and the result
// is trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reHorizontalSpace.ReplaceAllString(s, " ")
	s = reSpaceAtLineEdge.ReplaceAllString(s, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// NormalizePtr is Normalize for optional text; nil yields "".
func NormalizePtr(s *string) string {
	if s == nil {
		return ""
	}
	return Normalize(*s)
}

// Lines splits normalized text into non-empty lines.
func Lines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// VisibleLength counts the non-whitespace characters in s.
func VisibleLength(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// LooksScanned reports whether the text layer is too thin to come from a
// digitally generated PDF.
func LooksScanned(s string) bool {
	return VisibleLength(s) < ScannedThreshold
}
