package parser

import (
	"regexp"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/sniffer"
)

// Colombian electronic sales invoices rendered by Siigo. The invoice number
// is printed as a prefix token and a number on separate lines below the
// title, and long item rows wrap their last amount onto the next line.

const siigoConfidence = "Reglas SIIGO"

var (
	siigoSeller = Patterns(
		`(?m)^([^\n]+)\n\s*NIT\s*:`,
	)
	siigoSellerTaxID = Patterns(
		`(?m)^NIT\s*:\s*([0-9.\-]+)`,
	)
	siigoBuyer = Patterns(
		`(?m)^(?:Cliente|Adquiriente|Se[ñn]or(?:es)?)\s*:\s*([^\n]+)`,
	)
	siigoBuyerTaxID = Patterns(
		`NIT\s+(?:del\s+)?(?:Cliente|Adquiriente)\s*:\s*([0-9.\-]+)`,
		`C\.?C\.?\s+(?:Cliente|Adquiriente)\s*:\s*([0-9.\-]+)`,
	)
	// prefix and number, possibly on different lines
	siigoSeriesNumber = Patterns(
		`Factura\s+Electr[oó]nica\s+de\s+Venta\s+No\.?\s*\n\s*([A-Z]{1,5})\s*\n\s*(\d+)`,
		`Factura\s+Electr[oó]nica\s+de\s+Venta\s+No\.?\s*([A-Z]{1,5})[ \t]*-?[ \t]*(\d+)`,
	)
	siigoIssueDate = Patterns(
		`Fecha\s+(?:de\s+)?(?:Emisi[oó]n|Factura)\s*:\s*(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4})`,
	)
	siigoPaymentForm = Patterns(
		`Forma\s+de\s+Pago\s*:\s*([^\n]+)`,
	)
	siigoPaymentMethod = Patterns(
		`Medio\s+de\s+Pago\s*:\s*([^\n]+)`,
	)
	siigoPurchaseOrder = Patterns(
		`Orden\s+de\s+Compra\s*:\s*(\S+)`,
	)
	siigoCurrency = Patterns(
		`Moneda\s*:\s*([A-Z]{3})\b`,
	)
	siigoSubtotal = Patterns(
		`(?m)^Subtotal\s*:?\s*\$?\s*`+amountExpr,
		`Total\s+Bruto\s*:?\s*\$?\s*`+amountExpr,
	)
	siigoTax = Patterns(
		`(?m)^IVA(?:\s+\d{1,2}\s*%)?\s*:?\s*\$?\s*`+amountExpr,
		`Total\s+IVA\s*:?\s*\$?\s*`+amountExpr,
	)
	siigoTotal = Patterns(
		`Total\s+a\s+Pagar\s*:?\s*\$?\s*`+amountExpr,
		`Total\s+Factura\s*:?\s*\$?\s*`+amountExpr,
	)
	siigoPrepayment = Patterns(
		`Anticipos?\s*:?\s*\$?\s*`+amountExpr,
	)
	siigoBalanceDue = Patterns(
		`Saldo(?:\s+a\s+Pagar)?\s*:?\s*\$?\s*`+amountExpr,
	)
	siigoAuthReference = Patterns(
		`CUFE\s*:?\s*([0-9a-f]{8,})`,
	)
	siigoResolution = Patterns(
		`Resoluci[oó]n\s+(?:DIAN\s+)?(?:No\.?\s*)?(\d{10,16})`,
		`Autorizaci[oó]n\s+de\s+Numeraci[oó]n\s+(?:No\.?\s*)?(\d{10,16})`,
	)
	siigoQRCode = Patterns(
		`(https?://catalogo-vpfe[^\s]*)`,
		`(https?://[^\s]*dian\.gov\.co[^\s]*)`,
	)

	// line code description qty price tax total
	siigoLines = singleLineGrammar{
		pattern: regexp.MustCompile(`^(\d{1,4})\s+(\S+)\s+(.+?)\s+` +
			numTok + `\s+` + numTok + `\s+` + numTok + `\s+` + numTok + `$`),
		fields: []lineField{
			fieldLineNumber, fieldItemCode, fieldDescription,
			fieldQuantity, fieldUnitPrice, fieldTax, fieldTotal,
		},
		consolidate: true,
		boundary:    isSectionLine,
	}
)

// sectionLine matches totals and legal footers that follow the item table.
var sectionLine = Patterns(
	`^(?:Sub\s*total|Total|IVA|Impuesto|Descuento|Retenci[oó]n|ReteFuente|Anticipo|Saldo|Resoluci[oó]n|CUFE|Observaciones)\b`,
)

func isSectionLine(line string) bool {
	return sectionLine[0].MatchString(line)
}

// SiigoHeader extracts the header of a Siigo invoice. Serie and
// Factura_Numero come from one two-group match.
func SiigoHeader(text, documentID string) record.InvoiceHeader {
	h := templateHeader(text, documentID, sniffer.CountryColombia, sniffer.TemplateSiigo, siigoConfidence)
	h.SellerName = FindFirst(siigoSeller, text)
	h.SellerTaxID = FindFirst(siigoSellerTaxID, text)
	h.BuyerName = FindFirst(siigoBuyer, text)
	h.BuyerTaxID = FindFirst(siigoBuyerTaxID, text)
	if g := FindGroups(siigoSeriesNumber, text); len(g) == 2 {
		h.Series = g[0]
		h.InvoiceNumber = g[1]
	}
	h.IssueDate = FindFirst(siigoIssueDate, text)
	h.PaymentForm = FindFirst(siigoPaymentForm, text)
	h.PaymentMethod = FindFirst(siigoPaymentMethod, text)
	h.PurchaseOrder = FindFirst(siigoPurchaseOrder, text)
	h.Currency = currencyCode(FindFirst(siigoCurrency, text))
	h.Subtotal = FindAmount(siigoSubtotal, text)
	h.Tax = FindAmount(siigoTax, text)
	h.Total = FindAmount(siigoTotal, text)
	h.Prepayment = FindAmount(siigoPrepayment, text)
	h.BalanceDue = FindAmount(siigoBalanceDue, text)
	h.AuthReference = FindFirst(siigoAuthReference, text)
	h.Resolution = FindFirst(siigoResolution, text)
	h.QRCode = FindFirst(siigoQRCode, text)
	return BackfillCurrency(h, text)
}

// SiigoLines extracts Siigo item rows after re-joining wrapped amounts.
func SiigoLines(text string, header record.InvoiceHeader) []record.LineItem {
	return siigoLines.Extract(text, header)
}
