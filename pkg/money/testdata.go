package money

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator produces realistic invoice amounts and identifiers for
// property-style tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(0)}
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

// LocaleSample is one amount rendered in both Latin-American styles.
type LocaleSample struct {
	Value        decimal.Decimal
	CommaDecimal string // 1.234.567,89
	DotDecimal   string // 1,234,567.89
}

// Amount returns a random amount in [min, max] with at most two decimals.
func (g *TestDataGenerator) Amount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(g.faker.Float64Range(min, max)).Round(2)
}

// LocaleSamples returns n random amounts with their formatted renderings.
func (g *TestDataGenerator) LocaleSamples(n int, min, max float64) []LocaleSample {
	samples := make([]LocaleSample, n)
	for i := range samples {
		d := g.Amount(min, max)
		samples[i] = LocaleSample{
			Value:        d,
			CommaDecimal: FormatLocale(d, CommaDecimal),
			DotDecimal:   FormatLocale(d, DotDecimal),
		}
	}
	return samples
}

// Company returns a random seller or buyer name.
func (g *TestDataGenerator) Company() string {
	return g.faker.Company()
}

// InvoiceNumber returns a random four to six digit invoice number.
func (g *TestDataGenerator) InvoiceNumber() string {
	return fmt.Sprintf("%d", g.faker.Number(1000, 999999))
}

// TaxID returns a random Costa Rican style legal id (3-101-XXXXXX).
func (g *TestDataGenerator) TaxID() string {
	return g.faker.Numerify("3-101-######")
}

// LineAmounts returns quantity, unit price, subtotal and a 13% tax for a
// random invoice line.
func (g *TestDataGenerator) LineAmounts() (qty, price, subtotal, tax decimal.Decimal) {
	qty = decimal.NewFromInt(int64(g.faker.Number(1, 20)))
	price = g.Amount(1, 500000)
	subtotal = qty.Mul(price).Round(2)
	tax = subtotal.Mul(decimal.NewFromFloat(0.13)).Round(2)
	return qty, price, subtotal, tax
}
