package regression

import (
	"github.com/aouyang1/go-reservoir/round"
)

// Linear fits y = m·x + b by ordinary least squares. Coefficients are [m, b]. The slope is
// 0 when all x values coincide.
func Linear(data []Point, opt *Options) *Result {
	o := opt.normalize()

	var n, sumX, sumY, sumXX, sumXY float64
	for _, d := range data {
		if IsMissing(d.Y) {
			continue
		}
		n++
		sumX += d.X
		sumY += d.Y
		sumXX += d.X * d.X
		sumXY += d.X * d.Y
	}

	run := n*sumXX - sumX*sumX
	rise := n*sumXY - sumX*sumY

	var gradient float64
	if run != 0 {
		gradient = round.Precision(rise/run, o.Precision)
	}
	intercept := round.Precision(sumY/n-gradient*sumX/n, o.Precision)

	r := newResult(FamilyLinear, data, o.Precision, []float64{gradient, intercept}, func(x float64) float64 {
		return gradient*x + intercept
	})
	if intercept == 0 {
		r.Equation = "y = " + formatFloat(gradient) + "x"
	} else {
		r.Equation = "y = " + formatFloat(gradient) + "x + " + formatFloat(intercept)
	}
	return r
}
