package parser

import (
	"regexp"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/sniffer"
	"github.com/FACorreiaa/invoice-extractor/pkg/money"
)

// NAVATEC INGENIERIA S.A., Costa Rica. One item per line, amounts in colones
// printed with the ¢ glyph.

const navatecConfidence = "Reglas NAVATEC"

var (
	navatecSeller = Patterns(
		`NAVATEC\s+INGENIER[IÍ]A\s+S\.A\.`,
		`NAVATECO`,
	)
	navatecSellerTaxID = Patterns(
		`Ident\.\s*Jur[ií]dica:\s*([0-9\-]+)`,
	)
	navatecBuyer = Patterns(
		`Cliente:\s*([^\n]+)`,
		`Receptor:\s*([^\n]+)`,
	)
	navatecBuyerTaxID = Patterns(
		`(?:C[eé]dula|Identificaci[oó]n)\s+(?:del\s+)?Cliente:\s*([0-9\-]+)`,
	)
	navatecInvoiceNumber = Patterns(
		`Factura\s+Electr[oó]nica\s+N[°º]\s*([0-9]+)`,
	)
	navatecSequenceNumber = Patterns(
		`Consecutivo:\s*([0-9]{20})`,
	)
	navatecNumericKey = Patterns(
		`Clave(?:\s+Num[eé]rica)?:\s*([0-9]{50})`,
	)
	navatecIssueDate = Patterns(
		`Fecha\s+de\s+Emisi[oó]n:\s*(\d{1,2}/\d{1,2}/\d{2,4}(?:[ \t]+\d{1,2}:\d{2}(?::\d{2})?(?:[ \t]*[ap]\.?[ \t]?m\.?)?)?)`,
	)
	navatecSaleCondition = Patterns(
		`Condici[oó]n\s+de\s+Venta:\s*([^\n]+)`,
	)
	navatecPaymentMethod = Patterns(
		`Medio\s+de\s+Pago:\s*([^\n]+)`,
	)
	navatecPurchaseOrder = Patterns(
		`Orden\s+de\s+Compra:\s*(\S+)`,
	)
	navatecSubtotal = Patterns(
		`Subtotal\s+Neto\s*[¢₡]\s*([0-9.,]+)`,
	)
	navatecTax = Patterns(
		`Total\s+Impuesto\s*[¢₡]\s*([0-9.,]+)`,
	)
	navatecTotal = Patterns(
		`Total\s+Factura:\s*[¢₡]\s*([0-9.,]+)`,
	)

	// line qty unit code description price discount subtotal tax
	navatecLines = singleLineGrammar{
		pattern: regexp.MustCompile(`^(\d{1,4})\s+` + numTok + `\s+(\S+)\s+(\S+)\s+(.+?)\s+` +
			numTok + `\s+` + numTok + `\s+` + numTok + `\s+` + numTok + `$`),
		fields: []lineField{
			fieldLineNumber, fieldQuantity, fieldUnit, fieldItemCode, fieldDescription,
			fieldUnitPrice, fieldDiscount, fieldSubtotal, fieldTax,
		},
	}
)

// NavatecHeader extracts the header of a NAVATEC invoice. Amounts are always
// colones.
func NavatecHeader(text, documentID string) record.InvoiceHeader {
	h := templateHeader(text, documentID, sniffer.CountryCostaRica, sniffer.TemplateNavatec, navatecConfidence)
	h.SellerName = FindFirst(navatecSeller, text)
	h.SellerTaxID = FindFirst(navatecSellerTaxID, text)
	h.BuyerName = FindFirst(navatecBuyer, text)
	h.BuyerTaxID = FindFirst(navatecBuyerTaxID, text)
	h.InvoiceNumber = FindFirst(navatecInvoiceNumber, text)
	h.SequenceNumber = FindFirst(navatecSequenceNumber, text)
	h.NumericKey = FindFirst(navatecNumericKey, text)
	h.IssueDate = FindFirst(navatecIssueDate, text)
	h.SaleCondition = FindFirst(navatecSaleCondition, text)
	h.PaymentMethod = FindFirst(navatecPaymentMethod, text)
	h.PurchaseOrder = FindFirst(navatecPurchaseOrder, text)
	h.Subtotal = FindAmount(navatecSubtotal, text)
	h.Tax = FindAmount(navatecTax, text)
	h.Total = FindAmount(navatecTotal, text)
	return h.WithCurrency(money.CRC, money.Symbol(money.CRC))
}

// NavatecLines extracts NAVATEC item rows. The line total is subtotal + tax.
func NavatecLines(text string, header record.InvoiceHeader) []record.LineItem {
	return navatecLines.Extract(text, header)
}
