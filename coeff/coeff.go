// Package coeff stores previously fit coefficients keyed by join type, version, profile
// code and function type, and resolves the best available curve for a new profile by
// trying profile fields in a fixed fallback order.
package coeff

import (
	"math"

	"github.com/aouyang1/go-reservoir/regression"
)

// FunctionType tags the curve family of a coefficient record
type FunctionType string

const (
	FunctionPoly  FunctionType = "poly"
	FunctionExp   FunctionType = "exp"
	FunctionPower FunctionType = "power"
)

// Coefficients is the persisted parameter payload of a record. Power and exponential
// curves use K and N, polynomials use Poly.
type Coefficients struct {
	FunctionType FunctionType      `json:"functionType,omitempty"`
	K            *float64          `json:"k,omitempty"`
	N            *float64          `json:"n,omitempty"`
	Poly         []regression.Term `json:"poly,omitempty"`
}

// Function is one of Polynomial, Exponential or Power
type Function interface {
	isFunction()
}

// Polynomial is Σ k·x^n + c clamped at 0
type Polynomial struct {
	Terms []regression.Term
}

// Exponential is k·e^(x·n)
type Exponential struct {
	K *float64
	N *float64
}

// Power is k·x^n
type Power struct {
	K *float64
	N *float64
}

func (Polynomial) isFunction()  {}
func (Exponential) isFunction() {}
func (Power) isFunction()       {}

// Function returns the curve described by the coefficients, or nil when the function type
// is unknown or a polynomial carries no terms
func (c Coefficients) Function() Function {
	switch c.FunctionType {
	case FunctionPoly:
		if c.Poly == nil {
			return nil
		}
		return Polynomial{Terms: c.Poly}
	case FunctionExp:
		return Exponential{K: c.K, N: c.N}
	case FunctionPower:
		return Power{K: c.K, N: c.N}
	default:
		return nil
	}
}

// Evaluate computes the function at x. Missing parameters and a nil function evaluate
// to 0.
func Evaluate(f Function, x float64) float64 {
	switch fn := f.(type) {
	case Polynomial:
		var y float64
		for _, t := range fn.Terms {
			y += t.Eval(x)
		}
		return math.Max(y, 0)
	case Exponential:
		if !isNumber(fn.K) || !isNumber(fn.N) {
			return 0
		}
		return *fn.K * math.Exp(x*(*fn.N))
	case Power:
		if !isNumber(fn.K) || !isNumber(fn.N) {
			return 0
		}
		return *fn.K * math.Pow(x, *fn.N)
	default:
		return 0
	}
}

func isNumber(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Provenance identifies the stored fit a record came from
type Provenance struct {
	ID               int64  `json:"id"`
	TimestampCreated string `json:"timestampCreated"`
	ProfileCode      string `json:"profileCode"`
	IDJoin           int64  `json:"idJoin"`
	IDTestLo         int64  `json:"idTestLo"`
	IDTestHi         int64  `json:"idTestHi"`
}

// Record is a coefficient payload with the metadata of the join row it was read from
type Record struct {
	JoinType      string       `json:"joinType"`
	NamesVersions []string     `json:"namesVersions"`
	Notes         string       `json:"notes,omitempty"`
	String        string       `json:"string"`
	Message       string       `json:"message,omitempty"`
	Coefficients  Coefficients `json:"coeff"`
	Provenance    *Provenance  `json:"provenance,omitempty"`
}

// Function returns the curve of the record, nil when it cannot be read
func (r Record) Function() Function {
	return r.Coefficients.Function()
}

// ID returns the provenance id and whether the record has one
func (r Record) ID() (int64, bool) {
	if r.Provenance == nil {
		return 0, false
	}
	return r.Provenance.ID, true
}
