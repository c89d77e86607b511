package mat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewDenseFromArray(t *testing.T) {
	testData := map[string]struct {
		err error
		x   [][]float64
		m   int
		n   int
	}{
		"nil input": {
			mat.ErrZeroLength,
			nil,
			0, 0,
		},
		"single element": {
			nil,
			[][]float64{{1}},
			1, 1,
		},
		"multiple rows and cols": {
			nil,
			[][]float64{{1, 2, 3}, {4, 5, 6}},
			2, 3,
		},
		"inconsistent cols": {
			ErrColMismatch,
			[][]float64{{1, 2, 3}, {4, 5}},
			0, 0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				if td.err != nil && r != nil {
					err, ok := r.(error)
					require.True(t, ok, "panic is not an error")
					assert.ErrorAs(t, err, &td.err)
				}
			}()
			mx, err := NewDenseFromArray(td.x)
			if td.err != nil {
				require.ErrorAs(t, err, &td.err)
				return
			}
			require.Nil(t, err)

			m, n := mx.Dims()
			assert.Equal(t, td.m, m, "m")
			assert.Equal(t, td.n, n, "n")
		})
	}
}

func TestVandermonde(t *testing.T) {
	v, err := Vandermonde([]float64{0, 1, 2, 3}, 2)
	require.Nil(t, err)

	m, n := v.Dims()
	assert.Equal(t, 4, m)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{1, 0, 0}, mat.Row(nil, 0, v))
	assert.Equal(t, []float64{1, 3, 9}, mat.Row(nil, 3, v))

	_, err = Vandermonde([]float64{1}, -1)
	assert.ErrorIs(t, err, ErrNegativeOrder)
}

func TestNormalEquations(t *testing.T) {
	v, err := Vandermonde([]float64{1, 2, 3}, 1)
	require.Nil(t, err)

	a, b, err := NormalEquations(v, []float64{2, 4, 6})
	require.Nil(t, err)

	// [[n, Σx], [Σx, Σx²]] and [Σy, Σxy]
	assert.Equal(t, []float64{3, 6}, mat.Row(nil, 0, a))
	assert.Equal(t, []float64{6, 14}, mat.Row(nil, 1, a))
	assert.Equal(t, []float64{12, 28}, b)

	_, _, err = NormalEquations(v, []float64{1})
	assert.ErrorIs(t, err, ErrRowMismatch)
}

func TestGaussianElimination(t *testing.T) {
	testData := map[string]struct {
		a        [][]float64
		b        []float64
		expected []float64
		err      error
	}{
		"identity": {
			a:        [][]float64{{1, 0}, {0, 1}},
			b:        []float64{3, 4},
			expected: []float64{3, 4},
		},
		"needs pivot": {
			a:        [][]float64{{0, 1}, {1, 0}},
			b:        []float64{2, 5},
			expected: []float64{5, 2},
		},
		"three unknowns": {
			a:        [][]float64{{2, 1, -1}, {-3, -1, 2}, {-2, 1, 2}},
			b:        []float64{8, -11, -3},
			expected: []float64{2, 3, -1},
		},
		"not square": {
			a:   [][]float64{{1, 2, 3}, {4, 5, 6}},
			b:   []float64{1, 2},
			err: ErrNotSquare,
		},
		"target mismatch": {
			a:   [][]float64{{1, 0}, {0, 1}},
			b:   []float64{1},
			err: ErrRowMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			a, err := NewDenseFromArray(td.a)
			require.Nil(t, err)

			x, err := GaussianElimination(a, td.b)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDeltaSlice(t, td.expected, x, 1e-9)
		})
	}
}

func TestGaussianEliminationSingular(t *testing.T) {
	a, err := NewDenseFromArray([][]float64{{1, 1}, {1, 1}})
	require.Nil(t, err)

	x, err := GaussianElimination(a, []float64{2, 2})
	require.Nil(t, err)
	assert.True(t, math.IsNaN(x[1]) || math.IsInf(x[1], 0))
}
