// Package mat builds and solves the least squares normal equations used by the
// polynomial fit.
package mat

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch   = errors.New("column size mismatch")
	ErrRowMismatch   = errors.New("row size mismatch")
	ErrNotSquare     = errors.New("coefficient matrix is not square")
	ErrNegativeOrder = errors.New("negative polynomial order not allowed")
)

// NewDenseFromArray flattens a row major 2D slice into a gonum dense matrix. Every row
// must have the same length.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n < 0 {
		n = 0
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// Vandermonde returns the len(x) by order+1 design matrix where column j holds x^j
func Vandermonde(x []float64, order int) (*mat.Dense, error) {
	if order < 0 {
		return nil, ErrNegativeOrder
	}
	rows := make([][]float64, len(x))
	for i, xi := range x {
		row := make([]float64, order+1)
		for j := range row {
			row[j] = math.Pow(xi, float64(j))
		}
		rows[i] = row
	}
	return NewDenseFromArray(rows)
}

// NormalEquations computes VᵀV and Vᵀy for the design matrix v and observations y
func NormalEquations(v mat.Matrix, y []float64) (*mat.Dense, []float64, error) {
	m, n := v.Dims()
	if len(y) != m {
		return nil, nil, fmt.Errorf("design matrix has %d rows and target has %d, %w", m, len(y), ErrRowMismatch)
	}

	var vtv mat.Dense
	vtv.Mul(v.T(), v)

	yVec := mat.NewVecDense(m, y)
	var vty mat.VecDense
	vty.MulVec(v.T(), yVec)

	b := make([]float64, n)
	for i := range b {
		b[i] = vty.AtVec(i)
	}
	return &vtv, b, nil
}

// GaussianElimination solves a·x = b by forward elimination with partial pivoting and
// back substitution. A singular system is not reported as an error; the zero pivot
// propagates as NaN or ±Inf in the solution.
func GaussianElimination(a mat.Matrix, b []float64) ([]float64, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("got %dx%d, %w", r, c, ErrNotSquare)
	}
	n := r
	if len(b) != n {
		return nil, fmt.Errorf("coefficient matrix has %d rows and target has %d, %w", n, len(b), ErrRowMismatch)
	}

	// augmented matrix [a | b]
	aug := mat.NewDense(n, n+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			aug.Set(i, j, a.At(i, j))
		}
		aug.Set(i, n, b[i])
	}

	for i := 0; i < n; i++ {
		maxRow := i
		for j := i + 1; j < n; j++ {
			if math.Abs(aug.At(j, i)) > math.Abs(aug.At(maxRow, i)) {
				maxRow = j
			}
		}

		for k := i; k <= n; k++ {
			tmp := aug.At(i, k)
			aug.Set(i, k, aug.At(maxRow, k))
			aug.Set(maxRow, k, tmp)
		}

		// walk columns right to left so the pivot column is reduced last
		for j := i + 1; j < n; j++ {
			for k := n; k >= i; k-- {
				aug.Set(j, k, aug.At(j, k)-aug.At(i, k)*aug.At(j, i)/aug.At(i, i))
			}
		}
	}

	x := make([]float64, n)
	for j := n - 1; j >= 0; j-- {
		var total float64
		for k := j + 1; k < n; k++ {
			total += aug.At(j, k) * x[k]
		}
		x[j] = (aug.At(j, n) - total) / aug.At(j, j)
	}
	return x, nil
}
