package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-extractor/pkg/money"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{"comma decimal", "1.234.567,89", ptr(1234567.89)},
		{"dot decimal", "1,234,567.89", ptr(1234567.89)},
		{"alphabetic", "abc", nil},
		{"empty", "", nil},
		{"only separators", ".,.-", nil},
		{"currency noise", "¢ 741,300.84", ptr(741300.84)},
		{"colones comma decimal", "741.300,84", ptr(741300.84)},
		{"no separators", "4503", ptr(4503)},
		{"zero with decimals", "0.00", ptr(0)},
		{"negative", "-96,369.11", ptr(-96369.11)},
		{"single comma decimal", "12,5", ptr(12.5)},
		{"unit suffix", "1.00 Unid", ptr(1)},
		{"dots only is ambiguous", "1.234.567", nil},
		{"several minus signs", "1-2-3", nil},
		{"lone minus", "-", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestParseNumber_NeverPanics(t *testing.T) {
	inputs := []string{
		"", " ", "abc", "--", "..", ",,", "1..2", "1,,2", "-.", ".-5", "1e10",
		"∞", "NaN", "٣٤٥", "1,2.3,4", "999999999999999999999999999999.99",
		string([]byte{0xff, 0xfe, '1'}),
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() { ParseNumber(in) }, "input %q", in)
	}
}

func TestParseNumber_LocaleRoundTrip(t *testing.T) {
	gen := money.NewTestDataGeneratorWithSeed(20260216)

	for _, sample := range gen.LocaleSamples(500, 0, 50000000) {
		want := sample.Value.InexactFloat64()

		comma := ParseNumber(sample.CommaDecimal)
		require.NotNil(t, comma, "comma style %q", sample.CommaDecimal)
		assert.InDelta(t, want, *comma, 1e-6, "comma style %q", sample.CommaDecimal)

		dot := ParseNumber(sample.DotDecimal)
		require.NotNil(t, dot, "dot style %q", sample.DotDecimal)
		assert.InDelta(t, want, *dot, 1e-6, "dot style %q", sample.DotDecimal)
	}
}

func TestCanonicalNumber(t *testing.T) {
	assert.Equal(t, "1234567.89", CanonicalNumber("1.234.567,89"))
	assert.Equal(t, "1234567.89", CanonicalNumber("1,234,567.89"))
	assert.Equal(t, "", CanonicalNumber("N/A"))
}

func TestParseNumberString(t *testing.T) {
	assert.Equal(t, "1234567.89", ParseNumberString("1.234.567,89"))
	assert.Equal(t, "741300.84", ParseNumberString("¢741,300.84"))
	assert.Empty(t, ParseNumberString("abc"))
	assert.Empty(t, ParseNumberString("1.2.3"))
}

func TestIsNumericToken(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"741,300.84", true},
		{"0.00", true},
		{"-5", true},
		{"001", true},
		{"MTR001", false},
		{"13%", false},
		{"1.", false},
		{"-", false},
		{"5-", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNumericToken(tt.tok))
		})
	}
}

func ptr(v float64) *float64 { return &v }
