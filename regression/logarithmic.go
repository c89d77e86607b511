package regression

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-reservoir/round"
)

// Logarithmic fits y = a + b·ln(x). Only points with x > 0 contribute to the sums, while
// n is the length of the whole input. Coefficients are [a, b].
func Logarithmic(data []Point, opt *Options) *Result {
	o := opt.normalize()

	n := float64(len(data))
	var sumLnX, sumYLnX, sumY, sumLnX2 float64
	for _, d := range data {
		if IsMissing(d.Y) || d.X <= 0 {
			continue
		}
		lnX := math.Log(d.X)
		sumLnX += lnX
		sumYLnX += d.Y * lnX
		sumY += d.Y
		sumLnX2 += lnX * lnX
	}

	b := (n*sumYLnX - sumY*sumLnX) / (n*sumLnX2 - sumLnX*sumLnX)
	coeffB := round.Precision(b, o.Precision)
	coeffA := round.Precision((sumY-coeffB*sumLnX)/n, o.Precision)

	r := newResult(FamilyLogarithmic, data, o.Precision, []float64{coeffA, coeffB}, func(x float64) float64 {
		return coeffA + coeffB*math.Log(x)
	})
	r.Equation = fmt.Sprintf("y = %s + %s ln(x)", formatFloat(coeffA), formatFloat(coeffB))
	return r
}
