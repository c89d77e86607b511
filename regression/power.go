package regression

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-reservoir/round"
)

// Power fits y = k·x^n through a log-log linearisation. Any log term that is not finite
// (x or y not positive) contributes 0 to its sum. Missing points are skipped from the sums
// but still count toward n. Coefficients are [k, n].
func Power(data []Point, opt *Options) *Result {
	o := opt.normalize()

	cnt := float64(len(data))
	var sumLogX, sumLogY, sumLogXY, sumLogX2 float64
	for _, d := range data {
		if IsMissing(d.Y) {
			continue
		}
		logX := math.Log(d.X)
		logY := math.Log(d.Y)
		sumLogX += finiteOrZero(logX)
		sumLogY += finiteOrZero(logY)
		sumLogXY += finiteOrZero(logX * logY)
		sumLogX2 += finiteOrZero(logX * logX)
	}

	b := (cnt*sumLogXY - sumLogX*sumLogY) / (cnt*sumLogX2 - sumLogX*sumLogX)
	a := (sumLogY - b*sumLogX) / cnt

	k := round.Precision(math.Exp(a), o.Precision)
	n := round.Precision(b, o.Precision)

	r := newResult(FamilyPower, data, o.Precision, []float64{k, n}, func(x float64) float64 {
		return k * math.Pow(x, n)
	})
	r.Equation = fmt.Sprintf("y = %sx^%s", formatFloat(k), formatFloat(n))
	return r
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
