package normalizer

import (
	"regexp"
	"strings"
)

var (
	reItemNumberPrefix = regexp.MustCompile(`^\d{1,4}(?:\s|$)`)
	reTrailingNumber   = regexp.MustCompile(`(?:^|\s)-?[\d.,]*\d$`)
)

// HasItemPrefix reports whether a line starts with an item-number token
// ("001 ...", "12 ..."). Amount-looking tokens such as "741,300.84" do not count.
func HasItemPrefix(line string) bool {
	return reItemNumberPrefix.MatchString(strings.TrimSpace(line))
}

// EndsWithNumber reports whether the last token of a line is numeric.
func EndsWithNumber(line string) bool {
	return reTrailingNumber.MatchString(strings.TrimSpace(line))
}

// ConsolidateWrapped repairs item rows that the PDF text layer split across
// physical lines. A line without a leading item number is appended to the
// previous line when that line ends in a numeric token. Blank lines are
// kept and never merged. Lines for which boundary returns true (section
// headings, totals) are never merged either; boundary may be nil.
//
// The rule is a heuristic: it can over-merge on layouts it was not tuned for.
func ConsolidateWrapped(lines []string, boundary func(string) bool) []string {
	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			out = append(out, line)
			continue
		}
		if n := len(out); n > 0 &&
			out[n-1] != "" &&
			!HasItemPrefix(line) &&
			EndsWithNumber(out[n-1]) &&
			(boundary == nil || !boundary(line)) {
			out[n-1] = out[n-1] + " " + line
			continue
		}
		out = append(out, line)
	}
	return out
}
