// Package round rounds values to a fixed number of decimal places. Every value a fit or
// simulation reports passes through here so results are reproducible across runs.
package round

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultPlaces is the precision used when none is configured
const DefaultPlaces = 4

var half = decimal.NewFromFloat(0.5)

// Precision rounds x to the given number of decimal places. The value is scaled in
// floating point and ties round toward positive infinity, so 1.005 rounds to 1 at two
// places and -2.5 rounds to -2. Stored coefficient tables were produced with this
// rounding. NaN and infinities are returned unchanged.
func Precision(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	scaled := x * math.Pow(10, float64(places))
	if math.IsInf(scaled, 0) {
		return x
	}
	v, _ := decimal.NewFromFloat(scaled).Add(half).Floor().Shift(int32(-places)).Float64()
	return v
}

// Slice rounds every value of x in place and returns it
func Slice(x []float64, places int) []float64 {
	for i, v := range x {
		x[i] = Precision(v, places)
	}
	return x
}
