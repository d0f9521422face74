// Package record defines the rows produced by an invoice extraction run:
// one InvoiceHeader per document, its LineItems, and optional AuditRecords.
//
// Column order is part of the report contract. The csv tags below and the
// HeaderColumns/LineColumns/AuditColumns slices must stay aligned.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Extraction method labels that are not template names.
const (
	MethodGeneric = "generic"
	MethodError   = "ERROR"
)

const (
	DefaultDocumentType = "Invoice"

	// NoLinesMarker is written to the raw-text column of the placeholder line
	// emitted for a document with no detected items.
	NoLinesMarker = "no lines detected"
	// ErrorMarkerPrefix starts the raw-text column of an error placeholder line.
	ErrorMarkerPrefix = "ERROR: "

	// ReviewMarker starts the raw-text column of a line whose amounts do not
	// add up and should be checked by hand.
	ReviewMarker = "[revisar] "

	ScannedYes = "SI"
	ScannedNo  = "NO"
)

// InvoiceHeader is the one-per-document summary row.
//
// Treat values as immutable once an extractor has returned them; use the
// With* methods to derive a patched copy.
type InvoiceHeader struct {
	DocumentID     string   `csv:"Documento"`
	Country        string   `csv:"Pais"`
	DocumentType   string   `csv:"Tipo_Documento"`
	SellerName     string   `csv:"Proveedor"`
	SellerTaxID    string   `csv:"NIT_Proveedor"`
	BuyerName      string   `csv:"Cliente"`
	BuyerTaxID     string   `csv:"NIT_Cliente"`
	Series         string   `csv:"Serie"`
	InvoiceNumber  string   `csv:"Factura_Numero"`
	SequenceNumber string   `csv:"Consecutivo"`
	IssueDate      string   `csv:"Fecha_Emision"`
	SaleCondition  string   `csv:"Condicion_Venta"`
	PaymentForm    string   `csv:"Forma_Pago"`
	PaymentMethod  string   `csv:"Medio_Pago"`
	Currency       string   `csv:"Moneda"`
	CurrencySymbol string   `csv:"Simbolo_Moneda"`
	Subtotal       *float64 `csv:"Subtotal"`
	Tax            *float64 `csv:"Impuesto_IVA"`
	Total          *float64 `csv:"Total_Factura"`
	PurchaseOrder  string   `csv:"Orden_Compra"`
	AuthReference  string   `csv:"CUFE"`
	Resolution     string   `csv:"Resolucion"`
	QRCode         string   `csv:"Codigo_QR"`
	NumericKey     string   `csv:"Clave_Numerica"`
	SecurityCode   string   `csv:"Codigo_Seguridad"`
	Prepayment     *float64 `csv:"Anticipo"`
	BalanceDue     *float64 `csv:"Saldo"`
	CostCenter     string   `csv:"Centro_Costo"`
	Scanned        string   `csv:"Probable_Escaneado"`
	Method         string   `csv:"Metodo_Extraccion"`
	Confidence     string   `csv:"Confianza"`
	Error          string   `csv:"Error"`
}

// HeaderColumns lists the header table columns in report order.
var HeaderColumns = []string{
	"Documento", "Pais", "Tipo_Documento", "Proveedor", "NIT_Proveedor",
	"Cliente", "NIT_Cliente", "Serie", "Factura_Numero", "Consecutivo",
	"Fecha_Emision", "Condicion_Venta", "Forma_Pago", "Medio_Pago", "Moneda",
	"Simbolo_Moneda", "Subtotal", "Impuesto_IVA", "Total_Factura", "Orden_Compra",
	"CUFE", "Resolucion", "Codigo_QR", "Clave_Numerica", "Codigo_Seguridad",
	"Anticipo", "Saldo", "Centro_Costo", "Probable_Escaneado", "Metodo_Extraccion",
	"Confianza", "Error",
}

// NewHeader returns a header for documentID with every other field at its default.
func NewHeader(documentID string) InvoiceHeader {
	return InvoiceHeader{
		DocumentID:   documentID,
		DocumentType: DefaultDocumentType,
		Scanned:      ScannedNo,
	}
}

// ErrorHeader builds the flagged header emitted when a document fails.
func ErrorHeader(documentID string, err error) InvoiceHeader {
	return NewHeader(documentID).WithError(err)
}

// WithCurrency returns a copy with the currency code and symbol set.
func (h InvoiceHeader) WithCurrency(code, symbol string) InvoiceHeader {
	h.Currency = code
	h.CurrencySymbol = symbol
	return h
}

// WithCountry returns a copy with the country code set.
func (h InvoiceHeader) WithCountry(country string) InvoiceHeader {
	h.Country = country
	return h
}

// WithSeller returns a copy with the seller name set.
func (h InvoiceHeader) WithSeller(name string) InvoiceHeader {
	h.SellerName = name
	return h
}

// WithMethod returns a copy labelled with the extraction method and confidence hint.
func (h InvoiceHeader) WithMethod(method, confidence string) InvoiceHeader {
	h.Method = method
	h.Confidence = confidence
	return h
}

// WithScanned returns a copy with the looks-scanned flag set.
func (h InvoiceHeader) WithScanned(scanned bool) InvoiceHeader {
	h.Scanned = ScannedFlag(scanned)
	return h
}

// WithError returns a copy marked as failed.
func (h InvoiceHeader) WithError(err error) InvoiceHeader {
	h.Method = MethodError
	h.Confidence = ""
	if err != nil {
		h.Error = err.Error()
	}
	return h
}

// Failed reports whether the header was produced by the error path.
func (h InvoiceHeader) Failed() bool {
	return h.Method == MethodError
}

// Cells returns the row values in HeaderColumns order. Missing amounts are
// returned as empty strings so spreadsheet cells stay blank.
func (h InvoiceHeader) Cells() []any {
	return []any{
		h.DocumentID, h.Country, h.DocumentType, h.SellerName, h.SellerTaxID,
		h.BuyerName, h.BuyerTaxID, h.Series, h.InvoiceNumber, h.SequenceNumber,
		h.IssueDate, h.SaleCondition, h.PaymentForm, h.PaymentMethod, h.Currency,
		h.CurrencySymbol, amountCell(h.Subtotal), amountCell(h.Tax), amountCell(h.Total), h.PurchaseOrder,
		h.AuthReference, h.Resolution, h.QRCode, h.NumericKey, h.SecurityCode,
		amountCell(h.Prepayment), amountCell(h.BalanceDue), h.CostCenter, h.Scanned, h.Method,
		h.Confidence, h.Error,
	}
}

// LineItem is one billed row of an invoice.
type LineItem struct {
	InvoiceNumber string   `csv:"Factura_Numero"`
	DocumentID    string   `csv:"Documento"`
	LineNumber    string   `csv:"Linea"`
	ItemCode      string   `csv:"Codigo_Item"`
	Description   string   `csv:"Descripcion"`
	Quantity      *float64 `csv:"Cantidad"`
	Unit          string   `csv:"Unidad"`
	UnitPrice     *float64 `csv:"Precio_Unitario"`
	Discount      *float64 `csv:"Descuento"`
	Subtotal      *float64 `csv:"Subtotal_Linea"`
	Tax           *float64 `csv:"Impuesto_Linea"`
	Total         *float64 `csv:"Total_Linea"`
	Currency      string   `csv:"Moneda"`
	Country       string   `csv:"Pais"`
	CostCenter    string   `csv:"Centro_Costo"`
	LedgerAccount string   `csv:"Cuenta_Contable"`
	RawText       string   `csv:"Texto_Original"`
}

// LineColumns lists the line table columns in report order.
var LineColumns = []string{
	"Factura_Numero", "Documento", "Linea", "Codigo_Item", "Descripcion",
	"Cantidad", "Unidad", "Precio_Unitario", "Descuento", "Subtotal_Linea",
	"Impuesto_Linea", "Total_Linea", "Moneda", "Pais", "Centro_Costo",
	"Cuenta_Contable", "Texto_Original",
}

// NewLine starts a line carrying the header's keys, currency and country.
func NewLine(h InvoiceHeader) LineItem {
	return LineItem{
		InvoiceNumber: h.InvoiceNumber,
		DocumentID:    h.DocumentID,
		Currency:      h.Currency,
		Country:       h.Country,
	}
}

// NoLinesPlaceholder is the single row emitted for a document without items.
func NoLinesPlaceholder(h InvoiceHeader) LineItem {
	l := NewLine(h)
	l.RawText = NoLinesMarker
	return l
}

// ErrorPlaceholder is the single row emitted for a failed document.
func ErrorPlaceholder(h InvoiceHeader, err error) LineItem {
	l := NewLine(h)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	l.RawText = ErrorMarkerPrefix + msg
	return l
}

// IsPlaceholder reports whether the line was synthesized rather than parsed.
func (l LineItem) IsPlaceholder() bool {
	return l.RawText == NoLinesMarker || strings.HasPrefix(l.RawText, ErrorMarkerPrefix)
}

// NeedsReview reports whether the line was flagged for manual review.
func (l LineItem) NeedsReview() bool {
	return strings.HasPrefix(l.RawText, ReviewMarker)
}

// Cells returns the row values in LineColumns order.
func (l LineItem) Cells() []any {
	return []any{
		l.InvoiceNumber, l.DocumentID, l.LineNumber, l.ItemCode, l.Description,
		amountCell(l.Quantity), l.Unit, amountCell(l.UnitPrice), amountCell(l.Discount), amountCell(l.Subtotal),
		amountCell(l.Tax), amountCell(l.Total), l.Currency, l.Country, l.CostCenter,
		l.LedgerAccount, l.RawText,
	}
}

// AuditRecord keeps the raw extracted text of a document for manual review.
type AuditRecord struct {
	DocumentID string `csv:"Documento"`
	TextLength int    `csv:"Longitud_Texto"`
	Text       string `csv:"Texto"`
}

// AuditColumns lists the audit table columns in report order.
var AuditColumns = []string{"Documento", "Longitud_Texto", "Texto"}

// Cells returns the row values in AuditColumns order.
func (a AuditRecord) Cells() []any {
	return []any{a.DocumentID, a.TextLength, a.Text}
}

// Tables is the output of one batch run. Audit is nil when auditing is off.
type Tables struct {
	Headers []InvoiceHeader
	Lines   []LineItem
	Audit   []AuditRecord
}

// ScannedFlag renders the looks-scanned flag.
func ScannedFlag(scanned bool) string {
	if scanned {
		return ScannedYes
	}
	return ScannedNo
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// FormatAmount renders an optional amount without trailing zeros, or "".
func FormatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func amountCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// String implements fmt.Stringer for log output.
func (h InvoiceHeader) String() string {
	return fmt.Sprintf("%s[%s #%s]", h.DocumentID, h.Method, h.InvoiceNumber)
}
