// Package regression is a collection of closed form least squares curve fits. Each fit
// takes (x, y) pairs, skips missing observations, and returns a Result with rounded
// coefficients, a goodness of fit and a pure predictor.
package regression

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aouyang1/go-reservoir/round"
)

var ErrUnknownFamily = errors.New("unknown regression family")

const (
	DefaultOrder     = 1
	DefaultPrecision = round.DefaultPlaces
)

// Family names a curve fitting method
type Family string

const (
	FamilyLinear      Family = "linear"
	FamilyExponential Family = "exponential"
	FamilyLogarithmic Family = "logarithmic"
	FamilyPower       Family = "power"
	FamilyPolynomial  Family = "polynomial"
)

// Families lists every supported family in a stable order
func Families() []Family {
	return []Family{
		FamilyLinear,
		FamilyExponential,
		FamilyLogarithmic,
		FamilyPower,
		FamilyPolynomial,
	}
}

// ParseFamily maps a case insensitive family name to a Family
func ParseFamily(name string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Families() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q, %w", name, ErrUnknownFamily)
}

// FitFunc is the signature shared by every fit in this package
type FitFunc func(data []Point, opt *Options) *Result

// Lookup returns the fit function of a family
func Lookup(f Family) (FitFunc, error) {
	switch f {
	case FamilyLinear:
		return Linear, nil
	case FamilyExponential:
		return Exponential, nil
	case FamilyLogarithmic:
		return Logarithmic, nil
	case FamilyPower:
		return Power, nil
	case FamilyPolynomial:
		return Polynomial, nil
	default:
		return nil, fmt.Errorf("%q, %w", f, ErrUnknownFamily)
	}
}

// Point is a single observation. A NaN Y marks a missing observation which is skipped
// by every fit.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsMissing reports whether y is the missing observation sentinel
func IsMissing(y float64) bool {
	return math.IsNaN(y)
}

// Options configures a fit. Order only applies to polynomial fits and Precision is the
// number of decimal places every output is rounded to.
type Options struct {
	Order     int `json:"order"`
	Precision int `json:"precision"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Order:     DefaultOrder,
		Precision: DefaultPrecision,
	}
}

func (o *Options) normalize() Options {
	if o == nil {
		return *NewDefaultOptions()
	}
	out := *o
	if out.Order < 0 {
		out.Order = DefaultOrder
	}
	if out.Precision < 0 {
		out.Precision = DefaultPrecision
	}
	return out
}

// Predictor maps an input to an (input, output) pair
type Predictor interface {
	Predict(x float64) (float64, float64)
}

// PredictorFunc adapts a plain function to a Predictor
type PredictorFunc func(x float64) (float64, float64)

func (f PredictorFunc) Predict(x float64) (float64, float64) {
	return f(x)
}

// Term is one addend of a polynomial. Either K and N are set for k·x^n, or C is set for
// a constant.
type Term struct {
	K *float64 `json:"k,omitempty"`
	N *float64 `json:"n,omitempty"`
	C *float64 `json:"c,omitempty"`
}

// NewTerm returns the term k·x^n
func NewTerm(k, n float64) Term {
	return Term{K: &k, N: &n}
}

// Constant returns a constant term
func Constant(c float64) Term {
	return Term{C: &c}
}

// Eval evaluates the term at x. A term with neither a finite (k, n) pair nor a finite
// constant contributes 0.
func (t Term) Eval(x float64) float64 {
	if isNumber(t.K) && isNumber(t.N) {
		return *t.K * math.Pow(x, *t.N)
	}
	if isNumber(t.C) {
		return *t.C
	}
	return 0
}

func isNumber(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Result is the output of a fit
type Result struct {
	Family       Family    `json:"family"`
	Coefficients []float64 `json:"coefficients"`
	Terms        []Term    `json:"terms,omitempty"`
	R2           float64   `json:"r_squared"`
	Equation     string    `json:"equation"`
	Points       []Point   `json:"points"`
	Precision    int       `json:"precision"`

	fn func(x float64) float64
}

func newResult(family Family, data []Point, precision int, coef []float64, fn func(float64) float64) *Result {
	r := &Result{
		Family:       family,
		Coefficients: coef,
		Precision:    precision,
		fn:           fn,
	}
	r.Points = make([]Point, len(data))
	for i, d := range data {
		x, y := r.Predict(d.X)
		r.Points[i] = Point{X: x, Y: y}
	}
	r.R2 = round.Precision(DeterminationCoefficient(data, r.Points), precision)
	return r
}

// Predict evaluates the fitted curve at x, rounding both the echoed input and the output
func (r *Result) Predict(x float64) (float64, float64) {
	if r == nil || r.fn == nil {
		return x, math.NaN()
	}
	return round.Precision(x, r.Precision), round.Precision(r.fn(x), r.Precision)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
