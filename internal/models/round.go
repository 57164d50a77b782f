package models

import "github.com/shopspring/decimal"

// Round1 rounds half away from zero to one fractional digit.
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// Fixed formats v with exactly places fractional digits.
func Fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
