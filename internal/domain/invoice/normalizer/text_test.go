package normalizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "non-breaking spaces",
			input: "Total\u00a0Factura:\u00a0\u00a0¢837,669.95",
			want:  "Total Factura: ¢837,669.95",
		},
		{
			name:  "tabs and runs of spaces",
			input: "001 \t 1.00   Unid\tMTR001",
			want:  "001 1.00 Unid MTR001",
		},
		{
			name:  "three or more newlines collapse to two",
			input: "NAVATEC\n\n\n\n\nFactura",
			want:  "NAVATEC\n\nFactura",
		},
		{
			name:  "two newlines are kept",
			input: "a\n\nb",
			want:  "a\n\nb",
		},
		{
			name:  "spaces around line breaks",
			input: "Subtotal  \n   Total",
			want:  "Subtotal\nTotal",
		},
		{
			name:  "blank line made of spaces",
			input: "a\n   \n\nb",
			want:  "a\n\nb",
		},
		{
			name:  "crlf",
			input: "a\r\nb\r\n",
			want:  "a\nb",
		},
		{
			name:  "trimmed",
			input: "  \n\n  Factura  \n ",
			want:  "Factura",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"NAVATEC INGENIERIA S.A.  \n\n\n\nFactura Electrónica N° 4503",
		"a \n \n \n b\t\tc",
		" lead thin spaces\n\n\n\n",
		"001 1.00 Unid MTR001 EL COCO ALAJUELA 741,300.84 0.00 741.300,84 96,369.11",
		"x\r\n\r\n\r\n\r\ny",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizePtr(t *testing.T) {
	assert.Empty(t, NormalizePtr(nil))
	s := "  a \n\n\n b "
	assert.Equal(t, "a\n\nb", NormalizePtr(&s))
}

func TestLines(t *testing.T) {
	got := Lines("a\n\nb\n  \nc")
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Empty(t, Lines(""))
}

func TestLooksScanned(t *testing.T) {
	assert.True(t, LooksScanned(""))
	assert.True(t, LooksScanned("Pagina 1 de 1"))
	assert.True(t, LooksScanned(strings.Repeat("x ", ScannedThreshold-1)))
	assert.False(t, LooksScanned(strings.Repeat("x", ScannedThreshold)))
}

func BenchmarkNormalize(b *testing.B) {
	page := strings.Repeat("001 1.00 Unid MTR001 EL COCO ALAJUELA 741,300.84   0.00\n\n\n\n", 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(page)
	}
}
