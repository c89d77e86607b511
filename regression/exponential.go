package regression

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-reservoir/round"
)

// Exponential fits y = a·e^(b·x) with a log linearisation weighted by y (Caruana). Only
// points with y > 0 are used. Coefficients are [a, b].
func Exponential(data []Point, opt *Options) *Result {
	o := opt.normalize()

	var sumY, sumXXY, sumYLnY, sumXYLnY, sumXY float64
	for _, d := range data {
		if IsMissing(d.Y) || d.Y <= 0 {
			continue
		}
		lnY := math.Log(d.Y)
		sumY += d.Y
		sumXXY += d.X * d.X * d.Y
		sumYLnY += d.Y * lnY
		sumXYLnY += d.X * d.Y * lnY
		sumXY += d.X * d.Y
	}

	denominator := sumY*sumXXY - sumXY*sumXY
	a := math.Exp((sumXXY*sumYLnY - sumXY*sumXYLnY) / denominator)
	b := (sumY*sumXYLnY - sumXY*sumYLnY) / denominator

	coeffA := round.Precision(a, o.Precision)
	coeffB := round.Precision(b, o.Precision)

	r := newResult(FamilyExponential, data, o.Precision, []float64{coeffA, coeffB}, func(x float64) float64 {
		return coeffA * math.Exp(coeffB*x)
	})
	r.Equation = fmt.Sprintf("y = %se^(%sx)", formatFloat(coeffA), formatFloat(coeffB))
	return r
}
