package parser

import (
	"regexp"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/sniffer"
)

// Colombian electronic sales invoices generated with Alegra. Item
// descriptions wrap, pushing quantity, price and total onto later lines.

const alegraConfidence = "Reglas ALEGRA"

var (
	alegraSeller = Patterns(
		`(?m)^([^\n]+)\n\s*NIT\s*:?\s*\d`,
	)
	alegraSellerTaxID = Patterns(
		`(?m)^NIT\s*:?\s*([0-9][0-9.\-]+)`,
	)
	alegraBuyer = Patterns(
		`(?m)^Se[ñn]or(?:es)?\s*:\s*([^\n]+)`,
		`(?m)^Cliente\s*:\s*([^\n]+)`,
	)
	alegraBuyerTaxID = Patterns(
		`(?m)^(?:Se[ñn]or(?:es)?|Cliente)\s*:[^\n]*\n\s*(?:NIT|C\.?C\.?)\s*:?\s*([0-9][0-9.\-]+)`,
	)
	// prefix-number on the title line, e.g. "FV-77"
	alegraSeriesNumber = Patterns(
		`Factura\s+Electr[oó]nica\s+de\s+Venta\s+(?:No\.?\s*)?([A-Z]{1,5})[ \t]*-[ \t]*(\d+)`,
		`Factura\s+Electr[oó]nica\s+de\s+Venta\s+(?:No\.?\s*)?([A-Z]{1,5})\s+(\d+)`,
	)
	alegraIssueDate = Patterns(
		`Fecha(?:\s+de\s+(?:Expedici[oó]n|Emisi[oó]n))?\s*:\s*(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`,
	)
	alegraPaymentForm = Patterns(
		`Forma\s+de\s+Pago\s*:\s*([^\n]+)`,
	)
	alegraPaymentMethod = Patterns(
		`Medio\s+de\s+Pago\s*:\s*([^\n]+)`,
	)
	alegraPurchaseOrder = Patterns(
		`Orden\s+de\s+Compra\s*:\s*(\S+)`,
	)
	alegraCurrency = Patterns(
		`Moneda\s*:\s*([A-Z]{3})\b`,
	)
	alegraSubtotal = Patterns(
		`(?m)^Subtotal\s*:?\s*\$?\s*`+amountExpr,
	)
	alegraTax = Patterns(
		`(?m)^IVA(?:\s*\(?\d{1,2}(?:[.,]\d+)?\s*%\)?)?\s*:?\s*\$?\s*`+amountExpr,
	)
	alegraTotal = Patterns(
		`(?m)^Total(?:\s+a\s+Pagar)?\s*:?\s*\$?\s*`+amountExpr,
	)
	alegraAuthReference = Patterns(
		`CUFE\s*:?\s*([0-9a-f]{8,})`,
	)
	alegraResolution = Patterns(
		`Resoluci[oó]n\s+DIAN\s+(?:No\.?\s*)?(\d{10,16})`,
		`Autorizaci[oó]n\s+de\s+Numeraci[oó]n(?:\s+de\s+Facturaci[oó]n)?\s+(?:No\.?\s*)?(\d{10,16})`,
	)
	alegraQRCode = Patterns(
		`(https?://catalogo-vpfe[^\s]*)`,
	)

	// quantity, price, total
	alegraLines = multiLineGrammar{
		itemHeader: regexp.MustCompile(`^(\d{1,3})\s+(\d{13})\s+(.*)$`),
		terminators: Patterns(
			`^Sub\s*total\b`,
			`^Total\b`,
			`^IVA\b`,
			`^Retenci[oó]n\b`,
			`^Observaciones\b`,
			`^CUFE\b`,
			`^Resoluci[oó]n\b`,
		),
		mapping: []lineField{fieldQuantity, fieldUnitPrice, fieldTotal},
		country: sniffer.CountryColombia,
	}
)

// AlegraHeader extracts the header of an Alegra invoice.
func AlegraHeader(text, documentID string) record.InvoiceHeader {
	h := templateHeader(text, documentID, sniffer.CountryColombia, sniffer.TemplateAlegra, alegraConfidence)
	h.SellerName = FindFirst(alegraSeller, text)
	h.SellerTaxID = FindFirst(alegraSellerTaxID, text)
	h.BuyerName = FindFirst(alegraBuyer, text)
	h.BuyerTaxID = FindFirst(alegraBuyerTaxID, text)
	if g := FindGroups(alegraSeriesNumber, text); len(g) == 2 {
		h.Series = g[0]
		h.InvoiceNumber = g[1]
	}
	h.IssueDate = FindFirst(alegraIssueDate, text)
	h.PaymentForm = FindFirst(alegraPaymentForm, text)
	h.PaymentMethod = FindFirst(alegraPaymentMethod, text)
	h.PurchaseOrder = FindFirst(alegraPurchaseOrder, text)
	h.Currency = currencyCode(FindFirst(alegraCurrency, text))
	h.Subtotal = FindAmount(alegraSubtotal, text)
	h.Tax = FindAmount(alegraTax, text)
	h.Total = FindAmount(alegraTotal, text)
	h.AuthReference = FindFirst(alegraAuthReference, text)
	h.Resolution = FindFirst(alegraResolution, text)
	h.QRCode = FindFirst(alegraQRCode, text)
	return BackfillCurrency(h, text)
}

// AlegraLines extracts wrapped Alegra items.
func AlegraLines(text string, header record.InvoiceHeader) []record.LineItem {
	return alegraLines.Extract(text, header)
}
