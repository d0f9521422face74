package parser

import (
	"regexp"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/sniffer"
)

// Electronic vouchers printed by the Tribu-CR billing software (Costa Rica,
// Ministerio de Hacienda format). Items wrap: the code line carries the
// description, the amounts follow on the next lines.

const tribuConfidence = "Reglas TRIBU-CR"

// Hacienda numeric key layout: country(3) date(6) issuer id(12)
// consecutive(20) situation(1) security code(8).
const (
	hdaKeyLength          = 50
	hdaSecurityCodeOffset = 42
	hdaConsecutiveLength  = 20
	hdaInvoiceNumberDigit = 10 // trailing digits of the consecutive
)

var (
	tribuSeller = Patterns(
		`(?m)^([^\n]+)\n\s*C[eé]dula\s+Jur[ií]dica`,
		`Emisor:\s*([^\n]+)`,
	)
	tribuSellerTaxID = Patterns(
		`C[eé]dula\s+Jur[ií]dica:\s*([0-9\-]+)`,
		`Identificaci[oó]n\s+Emisor:\s*([0-9\-]+)`,
	)
	tribuBuyer = Patterns(
		`Receptor:\s*([^\n]+)`,
		`Cliente:\s*([^\n]+)`,
	)
	tribuBuyerTaxID = Patterns(
		`Receptor:[^\n]*\n\s*(?:C[eé]dula|Identificaci[oó]n)[^:\n]*:\s*([0-9\-]+)`,
		`Identificaci[oó]n\s+Receptor:\s*([0-9\-]+)`,
	)
	tribuSequenceNumber = Patterns(
		`Consecutivo:\s*([0-9]{20})`,
		`N[°º]\s*Consecutivo:\s*([0-9]+)`,
	)
	tribuInvoiceNumber = Patterns(
		`N[°º]\s*(?:de\s+)?Factura:\s*([0-9]+)`,
	)
	tribuNumericKey = Patterns(
		`Clave\s+Num[eé]rica:\s*([0-9]{50})`,
		`Clave:\s*([0-9]{50})`,
	)
	tribuSecurityCode = Patterns(
		`C[oó]digo\s+de\s+Seguridad:\s*([0-9]{8})`,
	)
	tribuIssueDate = Patterns(
		`Fecha\s+de\s+Emisi[oó]n:\s*(\d{1,2}/\d{1,2}/\d{2,4}(?:[ \t]+\d{1,2}:\d{2}(?::\d{2})?(?:[ \t]*[ap]\.?[ \t]?m\.?)?)?)`,
		`Fecha:\s*(\d{1,2}/\d{1,2}/\d{2,4})`,
	)
	tribuSaleCondition = Patterns(
		`Condici[oó]n\s+de\s+Venta:\s*([^\n]+)`,
	)
	tribuPaymentMethod = Patterns(
		`Medio\s+de\s+Pago:\s*([^\n]+)`,
	)
	tribuCurrency = Patterns(
		`C[oó]digo\s+de\s+Moneda:\s*([A-Z]{3})\b`,
		`Moneda:\s*([A-Z]{3})\b`,
	)
	tribuPurchaseOrder = Patterns(
		`Orden\s+de\s+Compra:\s*(\S+)`,
	)
	tribuSubtotal = Patterns(
		`Subtotal\s+Neto:?\s*[¢₡]?\s*`+amountExpr,
		`Total\s+Venta\s+Neta:?\s*[¢₡]?\s*`+amountExpr,
	)
	tribuTax = Patterns(
		`Total\s+Impuestos?:?\s*[¢₡]?\s*`+amountExpr,
	)
	tribuTotal = Patterns(
		`Total\s+Comprobante:?\s*[¢₡]?\s*`+amountExpr,
		`Total\s+Factura:?\s*[¢₡]?\s*`+amountExpr,
	)

	// price, subtotal, discount, total
	tribuLines = multiLineGrammar{
		itemHeader: regexp.MustCompile(`^(\d{1,3})\s+(\d{13})\s+(.*)$`),
		terminators: Patterns(
			`^Resumen\b`,
			`^Subtotal\b`,
			`^Total\b`,
			`^Observaciones\b`,
			`^Otros\s+Cargos\b`,
		),
		mapping: []lineField{fieldUnitPrice, fieldSubtotal, fieldDiscount, fieldTotal},
		country: sniffer.CountryCostaRica,
	}
)

// TribuHeader extracts the header of a Tribu-CR voucher. The invoice number
// and security code come from the consecutive and the numeric key when not
// printed on their own.
func TribuHeader(text, documentID string) record.InvoiceHeader {
	h := templateHeader(text, documentID, sniffer.CountryCostaRica, sniffer.TemplateTribuCR, tribuConfidence)
	h.SellerName = FindFirst(tribuSeller, text)
	h.SellerTaxID = FindFirst(tribuSellerTaxID, text)
	h.BuyerName = FindFirst(tribuBuyer, text)
	h.BuyerTaxID = FindFirst(tribuBuyerTaxID, text)
	h.SequenceNumber = FindFirst(tribuSequenceNumber, text)
	h.InvoiceNumber = FindFirst(tribuInvoiceNumber, text)
	if h.InvoiceNumber == "" && len(h.SequenceNumber) == hdaConsecutiveLength {
		h.InvoiceNumber = h.SequenceNumber[hdaConsecutiveLength-hdaInvoiceNumberDigit:]
	}
	h.NumericKey = FindFirst(tribuNumericKey, text)
	h.SecurityCode = FindFirst(tribuSecurityCode, text)
	if h.SecurityCode == "" && len(h.NumericKey) == hdaKeyLength {
		h.SecurityCode = h.NumericKey[hdaSecurityCodeOffset:]
	}
	h.IssueDate = FindFirst(tribuIssueDate, text)
	h.SaleCondition = FindFirst(tribuSaleCondition, text)
	h.PaymentMethod = FindFirst(tribuPaymentMethod, text)
	h.PurchaseOrder = FindFirst(tribuPurchaseOrder, text)
	h.Currency = currencyCode(FindFirst(tribuCurrency, text))
	h.Subtotal = FindAmount(tribuSubtotal, text)
	h.Tax = FindAmount(tribuTax, text)
	h.Total = FindAmount(tribuTotal, text)
	return BackfillCurrency(h, text)
}

// TribuLines extracts wrapped Tribu-CR items.
func TribuLines(text string, header record.InvoiceHeader) []record.LineItem {
	return tribuLines.Extract(text, header)
}
