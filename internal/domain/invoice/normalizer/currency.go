package normalizer

import (
	"regexp"

	"github.com/FACorreiaa/invoice-extractor/pkg/money"
)

// CurrencyHint maps a literal found in invoice text to an ISO currency code.
type CurrencyHint struct {
	Pattern *regexp.Regexp
	Code    string
}

// Hint tiers, checked in this order. A tier decides as soon as any of its
// hints matches; within a tier the earliest occurrence in the text wins.
var (
	currencyCodeHints = []CurrencyHint{
		{regexp.MustCompile(`\bCRC\b`), money.CRC},
		{regexp.MustCompile(`\bCOP\b`), money.COP},
		{regexp.MustCompile(`\bUSD\b`), money.USD},
		{regexp.MustCompile(`\bEUR\b`), money.EUR},
	}

	currencySymbolHints = []CurrencyHint{
		{regexp.MustCompile(`[₡¢]`), money.CRC},
		{regexp.MustCompile(`€`), money.EUR},
		{regexp.MustCompile(`(?i)\bUS\$`), money.USD},
		{regexp.MustCompile(`(?i)\bCOL\$`), money.COP},
	}

	currencyPhraseHints = []CurrencyHint{
		{regexp.MustCompile(`(?i)\bcol[oó]n(?:es)?\b`), money.CRC},
		{regexp.MustCompile(`(?i)\bpesos?\s+colombianos?\b`), money.COP},
		{regexp.MustCompile(`(?i)\bd[oó]lar(?:es)?\b`), money.USD},
		{regexp.MustCompile(`(?i)\beuros?\b`), money.EUR},
	}
)

// DetectCurrency inspects text for currency-indicating literals and returns
// the ISO code and its symbol, or ("", "") when undetermined.
//
// Precedence: currency-code token, then symbol glyph, then locale phrase.
// A bare "$" is shared by several currencies and never decides on its own.
func DetectCurrency(text string) (code, symbol string) {
	if text == "" {
		return "", ""
	}
	for _, tier := range [][]CurrencyHint{currencyCodeHints, currencySymbolHints, currencyPhraseHints} {
		if code = earliestHint(tier, text); code != "" {
			return code, money.Symbol(code)
		}
	}
	return "", ""
}

func earliestHint(hints []CurrencyHint, text string) string {
	best, bestPos := "", -1
	for _, h := range hints {
		loc := h.Pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if bestPos == -1 || loc[0] < bestPos {
			best, bestPos = h.Code, loc[0]
		}
	}
	return best
}
