// Package parser turns normalized invoice text into header and line records.
//
// Each supported template contributes a HeaderExtractor built from named
// pattern lists (one list per field, tried in order) and a LineExtractor
// built from one of two grammar engines. Templates without a match fall to
// the generic extractors. The Registry ties templates to the classifier.
package parser

import (
	"strings"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/normalizer"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/sniffer"
	"github.com/FACorreiaa/invoice-extractor/pkg/money"
)

// HeaderExtractor builds the header of one document from normalized text.
// Fields whose patterns miss stay at their defaults.
type HeaderExtractor func(text, documentID string) record.InvoiceHeader

// LineExtractor builds the items of one document. The header supplies the
// invoice number, currency and country copied onto every line.
type LineExtractor func(text string, header record.InvoiceHeader) []record.LineItem

// templateHeader starts a header with the fields every extractor sets.
func templateHeader(text, documentID, country, method, confidence string) record.InvoiceHeader {
	h := record.NewHeader(documentID).
		WithCountry(country).
		WithMethod(method, confidence).
		WithScanned(normalizer.LooksScanned(text))
	return h
}

// DefaultCurrency returns the local currency of a country, or "".
func DefaultCurrency(country string) string {
	switch country {
	case sniffer.CountryCostaRica:
		return money.CRC
	case sniffer.CountryColombia:
		return money.COP
	}
	return ""
}

// MaxTaxRate returns the highest VAT rate of a country, used to bound line
// totals that print no tax amount.
func MaxTaxRate(country string) float64 {
	if country == sniffer.CountryColombia {
		return money.MaxTaxRateCO
	}
	return money.MaxTaxRateCR
}

// BackfillCurrency fills a blank currency, first from literals in the text
// and then from the country default. A code without a symbol gets one.
func BackfillCurrency(h record.InvoiceHeader, text string) record.InvoiceHeader {
	if h.Currency != "" {
		if h.CurrencySymbol == "" {
			return h.WithCurrency(h.Currency, money.Symbol(h.Currency))
		}
		return h
	}
	if code, symbol := normalizer.DetectCurrency(text); code != "" {
		return h.WithCurrency(code, symbol)
	}
	if code := DefaultCurrency(h.Country); code != "" {
		return h.WithCurrency(code, money.Symbol(code))
	}
	return h
}

// currencyCode upper-cases a printed currency field and drops values that
// are not ISO codes.
func currencyCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if !money.Known(code) {
		return ""
	}
	return code
}
