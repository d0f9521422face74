package parser

import (
	"regexp"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/issuer"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
)

// GenericConfidence labels headers produced without a template.
const GenericConfidence = "Baja - parser generico"

var (
	// a letterhead line ending in a company-type suffix
	genericSeller = Patterns(
		`(?m)^([^\n]{3,80}?\b(?:S\.\s?A\.\s?S\.?|S\.\s?A\.|S\.\s?R\.\s?L\.|LTDA\.?|E\.\s?U\.|S\.\s?C\.))[ \t]*$`,
	)
	genericSellerTaxID = Patterns(
		`(?m)^NIT\s*:?\s*([0-9][0-9.\-]+)`,
		`C[eé]dula\s+Jur[ií]dica\s*:?\s*([0-9][0-9\-]+)`,
		`Ident\.\s*Jur[ií]dica\s*:?\s*([0-9][0-9\-]+)`,
		`(?:RUC|RFC|RUT)\s*:?\s*([0-9A-Z][0-9A-Z.\-]+)`,
	)
	genericBuyer = Patterns(
		`(?m)^(?:Cliente|Receptor|Se[ñn]or(?:es)?|Adquiriente)\s*:\s*([^\n]+)`,
	)
	genericInvoiceNumber = Patterns(
		`Factura\s+(?:Electr[oó]nica\s+)?(?:de\s+Venta\s+)?N(?:o\.?|[°º]|[uú]mero)\s*:?\s*([A-Z0-9][A-Z0-9\-]*)`,
		`Invoice\s+(?:No\.?|Number|#)\s*:?\s*([A-Z0-9][A-Z0-9\-]*)`,
		`Comprobante\s+N(?:o\.?|[°º])\s*:?\s*([0-9]+)`,
	)
	genericIssueDate = Patterns(
		`Fecha\s+de\s+(?:Emisi[oó]n|Expedici[oó]n)\s*:?\s*(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`,
		`Fecha\s*:\s*(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`,
	)
	genericCurrency = Patterns(
		`Moneda\s*:\s*([A-Z]{3})\b`,
	)
	genericSubtotal = Patterns(
		`Sub\s*total(?:\s+Neto)?\s*:?\s*[¢₡$€]?\s*`+amountExpr,
	)
	genericTax = Patterns(
		`Total\s+(?:Impuestos?|IVA)\s*:?\s*[¢₡$€]?\s*`+amountExpr,
		`(?m)^(?:IVA|Impuesto)(?:\s+\d{1,2}\s*%)?\s*:?\s*[¢₡$€]?\s*`+amountExpr,
	)
	genericTotal = Patterns(
		`Total\s+(?:Factura|Comprobante|a\s+Pagar)\s*:?\s*[¢₡$€]?\s*`+amountExpr,
		`(?m)^Total\s*:?\s*[¢₡$€]?\s*`+amountExpr+`\s*$`,
	)

	// line description qty price total
	genericLines = singleLineGrammar{
		pattern: regexp.MustCompile(`^(\d{1,4})\s+(.+?)\s+` +
			numTok + `\s+` + numTok + `\s+` + numTok + `$`),
		fields: []lineField{
			fieldLineNumber, fieldDescription, fieldQuantity, fieldUnitPrice, fieldTotal,
		},
		consolidate: true,
		boundary:    isSectionLine,
	}
)

// GenericHeader returns the fallback header extractor. When issuers is not
// nil, a known seller found in the letterhead supplies the seller fields and
// the country.
func GenericHeader(issuers *issuer.Directory) HeaderExtractor {
	return func(text, documentID string) record.InvoiceHeader {
		h := templateHeader(text, documentID, "", record.MethodGeneric, GenericConfidence)
		h.SellerName = FindFirst(genericSeller, text)
		h.SellerTaxID = FindFirst(genericSellerTaxID, text)
		if issuers != nil {
			if known, ok := issuers.Identify(text); ok {
				h.SellerName = known.Name
				if known.TaxID != "" {
					h.SellerTaxID = known.TaxID
				}
				h.Country = known.Country
			}
		}
		h.BuyerName = FindFirst(genericBuyer, text)
		h.InvoiceNumber = FindFirst(genericInvoiceNumber, text)
		h.IssueDate = FindFirst(genericIssueDate, text)
		h.Currency = currencyCode(FindFirst(genericCurrency, text))
		h.Subtotal = FindAmount(genericSubtotal, text)
		h.Tax = FindAmount(genericTax, text)
		h.Total = FindAmount(genericTotal, text)
		return BackfillCurrency(h, text)
	}
}

// GenericLines extracts loosely formatted item rows.
func GenericLines(text string, header record.InvoiceHeader) []record.LineItem {
	return genericLines.Extract(text, header)
}
