// Package rounding holds the numeric precision rules shared by every
// compliance calculation. Physical quantities (gCO2eq, MJ, gCO2eq/MJ) are kept
// at 5 decimal places and monetary penalties at whole EUR, so any two
// components that store or compare the same figure agree on it exactly.
package rounding

import (
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of decimals kept for physical quantities.
const Places int32 = 5

// Round5 rounds x to 5 decimal places, half away from zero.
//
// The value is converted through its shortest decimal representation first,
// so 1.123454999 stays 1.12345 instead of drifting on binary noise.
func Round5(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(Places).InexactFloat64()
}

// RoundPenaltyEUR rounds a penalty amount to the nearest whole euro.
func RoundPenaltyEUR(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(0).InexactFloat64()
}

// Round2 rounds to 2 decimal places. Used for percentages shown to users.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Sum5 adds the values with decimal arithmetic and rounds the total to 5
// decimal places.
func Sum5(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return v
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(Places).InexactFloat64()
}

// Add5 returns round5(a + b) computed in decimal.
func Add5(a, b float64) float64 {
	return Sum5(a, b)
}
