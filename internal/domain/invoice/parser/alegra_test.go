package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlegraHeader(t *testing.T) {
	h := AlegraHeader(fixture(t, "alegra.txt"), "fv-77.pdf")

	assert.Equal(t, "CO", h.Country)
	assert.Equal(t, "SERVICIOS TECNICOS DEL CARIBE S.A.S.", h.SellerName)
	assert.Equal(t, "901.555.222-1", h.SellerTaxID)
	assert.Equal(t, "HOTEL BRISAS DEL MAR S.A.", h.BuyerName)
	assert.Equal(t, "890.111.333-9", h.BuyerTaxID)
	assert.Equal(t, "FV", h.Series)
	assert.Equal(t, "77", h.InvoiceNumber)
	assert.Equal(t, "12/02/2024", h.IssueDate)
	assert.Equal(t, "Contado", h.PaymentForm)
	assert.Equal(t, "COP", h.Currency, "country default when no currency is printed")
	assert.Equal(t, "99ab77cc01", h.AuthReference)
	assert.Equal(t, "18764000005678", h.Resolution)
	require.NotNil(t, h.Subtotal)
	require.NotNil(t, h.Tax)
	require.NotNil(t, h.Total)
	assert.InDelta(t, 345000, *h.Subtotal, 1e-9)
	assert.InDelta(t, 65550, *h.Tax, 1e-9)
	assert.InDelta(t, 410550, *h.Total, 1e-9)
	assert.Equal(t, "ALEGRA", h.Method)
}

func TestAlegraLines(t *testing.T) {
	text := fixture(t, "alegra.txt")
	items := AlegraLines(text, AlegraHeader(text, "fv-77.pdf"))
	require.Len(t, items, 2)

	tests := []struct {
		description string
		qty         float64
		price       float64
		total       float64
	}{
		{"Mantenimiento preventivo aire acondicionado", 2, 150000, 300000},
		{"Repuesto filtro", 1, 45000, 45000},
	}

	for i, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			l := items[i]
			assert.Equal(t, tt.description, l.Description)
			assert.Equal(t, "77", l.InvoiceNumber)
			require.NotNil(t, l.Quantity)
			require.NotNil(t, l.UnitPrice)
			require.NotNil(t, l.Total)
			assert.InDelta(t, tt.qty, *l.Quantity, 1e-9)
			assert.InDelta(t, tt.price, *l.UnitPrice, 1e-9)
			assert.InDelta(t, tt.total, *l.Total, 1e-9)
			assert.Nil(t, l.Subtotal)
			assert.False(t, l.NeedsReview())
		})
	}
}

func TestAlegraLines_AmountsOnHeaderLine(t *testing.T) {
	text := "1 7701234567890 Repuesto filtro 3 10.000,00 30.000,00\nSubtotal $ 30.000,00"
	items := AlegraLines(text, AlegraHeader(text, "x.pdf"))
	require.Len(t, items, 1)
	assert.Equal(t, "Repuesto filtro", items[0].Description)
	require.NotNil(t, items[0].Quantity)
	assert.InDelta(t, 3, *items[0].Quantity, 1e-9)
}

func TestAlegraLines_FlagsInconsistentTotal(t *testing.T) {
	text := "1 7701234567890 Repuesto filtro\n3 10.000,00 90.000,00\nTotal $ 90.000,00"
	items := AlegraLines(text, AlegraHeader(text, "x.pdf"))
	require.Len(t, items, 1)
	assert.True(t, items[0].NeedsReview())
	require.NotNil(t, items[0].Total)
	assert.InDelta(t, 90000, *items[0].Total, 1e-9, "values are kept as printed")
}
