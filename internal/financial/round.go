package financial

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// roundMetric rounds a final metric to 2 decimal places, half away from zero.
func roundMetric(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// percentOf returns part/whole*100 at full precision.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	return part.Mul(hundred).Div(whole)
}
