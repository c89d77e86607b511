package regression

import (
	"math"
	"strings"

	"github.com/aouyang1/go-reservoir/mat"
	"github.com/aouyang1/go-reservoir/round"
)

// Polynomial fits a polynomial of degree opt.Order by solving the least squares normal
// equations with Gaussian elimination. Coefficients are ordered from the constant term up
// and Terms from the highest degree down, ending with the constant.
func Polynomial(data []Point, opt *Options) *Result {
	o := opt.normalize()
	k := o.Order + 1

	xs := make([]float64, 0, len(data))
	ys := make([]float64, 0, len(data))
	for _, d := range data {
		if IsMissing(d.Y) {
			continue
		}
		xs = append(xs, d.X)
		ys = append(ys, d.Y)
	}

	coef, err := solveNormalEquations(xs, ys, o.Order)
	if err != nil {
		coef = make([]float64, k)
		for i := range coef {
			coef[i] = math.NaN()
		}
	}
	round.Slice(coef, o.Precision)

	r := newResult(FamilyPolynomial, data, o.Precision, coef, func(x float64) float64 {
		var y float64
		for p, c := range coef {
			y += c * math.Pow(x, float64(p))
		}
		return y
	})

	r.Terms = make([]Term, 0, len(coef))
	for i := len(coef) - 1; i >= 0; i-- {
		if i == 0 {
			r.Terms = append(r.Terms, Constant(coef[i]))
			continue
		}
		r.Terms = append(r.Terms, NewTerm(coef[i], float64(i)))
	}
	r.Equation = polynomialEquation(coef)
	return r
}

func solveNormalEquations(xs, ys []float64, order int) ([]float64, error) {
	if len(xs) == 0 {
		return nil, mat.ErrRowMismatch
	}
	v, err := mat.Vandermonde(xs, order)
	if err != nil {
		return nil, err
	}
	a, b, err := mat.NormalEquations(v, ys)
	if err != nil {
		return nil, err
	}
	return mat.GaussianElimination(a, b)
}

func polynomialEquation(coef []float64) string {
	var sb strings.Builder
	sb.WriteString("y = ")
	for i := len(coef) - 1; i >= 0; i-- {
		switch {
		case i > 1:
			sb.WriteString(formatFloat(coef[i]) + "x^" + formatFloat(float64(i)) + " + ")
		case i == 1:
			sb.WriteString(formatFloat(coef[i]) + "x + ")
		default:
			sb.WriteString(formatFloat(coef[i]))
		}
	}
	return sb.String()
}
