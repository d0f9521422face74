package money

// Tax ceilings used when a line carries no explicit tax amount.
const (
	MaxTaxRateCR = 0.13
	MaxTaxRateCO = 0.19
)

// Breakdown is the set of amounts printed for one invoice line. Any of them
// may be missing.
type Breakdown struct {
	Quantity  *float64
	UnitPrice *float64
	Discount  *float64
	Subtotal  *float64
	Tax       *float64
	Total     *float64
}

// Reconciles reports whether the amounts of a line are arithmetically
// consistent. Only relations whose operands are all present are checked, so
// a line with too little data reconciles trivially.
//
//   - quantity * price must equal the subtotal, before or after discount
//   - (subtotal - discount) + tax must equal the total
//   - without a tax amount, the total must lie between the net amount and
//     the net amount taxed at maxTaxRate
func Reconciles(b Breakdown, maxTaxRate float64) bool {
	extended := Mul(b.Quantity, b.UnitPrice)

	gross := b.Subtotal
	if gross == nil {
		gross = extended
	} else if extended != nil {
		if !ApproxEqual(*extended, *gross, DefaultTolerance) &&
			!ApproxEqual(*extended, OrZero(b.Subtotal)+OrZero(b.Discount), DefaultTolerance) {
			return false
		}
	}

	if gross == nil || b.Total == nil {
		return true
	}

	net := *Sub(gross, zeroIfNil(b.Discount))
	if b.Tax != nil {
		return ApproxEqual(net+*b.Tax, *b.Total, DefaultTolerance)
	}
	return Within(*b.Total, net, net*(1+maxTaxRate), DefaultTolerance)
}

func zeroIfNil(v *float64) *float64 {
	if v == nil {
		z := 0.0
		return &z
	}
	return v
}
