package score

import (
	"math"
	"testing"

	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNSE(t *testing.T) {
	testData := map[string]struct {
		observed  []float64
		predicted []float64
		start     int
		end       int
		mean      float64
		expected  float64
	}{
		"perfect fit": {
			observed:  []float64{1, 3, 2, 5},
			predicted: []float64{1, 3, 2, 5},
			start:     0,
			end:       4,
			mean:      2.75,
			expected:  1,
		},
		"mean baseline": {
			observed:  []float64{1, 3, 2, 6},
			predicted: []float64{3, 3, 3, 3},
			start:     0,
			end:       4,
			mean:      3,
			expected:  0,
		},
		"worse than mean": {
			observed:  []float64{1, 2, 3},
			predicted: []float64{3, 2, 1},
			start:     0,
			end:       3,
			mean:      2,
			expected:  -3,
		},
		"sub window": {
			observed:  []float64{100, 1, 2, 3, -100},
			predicted: []float64{0, 1, 2, 3, 0},
			start:     1,
			end:       4,
			mean:      2,
			expected:  1,
		},
		"missing prediction counts as zero": {
			observed:  []float64{2, 4},
			predicted: []float64{math.NaN(), 4},
			start:     0,
			end:       2,
			mean:      3,
			expected:  -1,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := NSE(NSEInput{
				Observed:     td.observed,
				Predicted:    td.predicted,
				Start:        td.start,
				End:          td.end,
				ObservedMean: td.mean,
			})
			assert.InDelta(t, td.expected, res.NSE, 1e-9)
			assert.Len(t, res.Trace, td.end-td.start)
		})
	}
}

func TestNSETrace(t *testing.T) {
	res := NSE(NSEInput{
		Observed:     []float64{1, 3},
		Predicted:    []float64{2, 3},
		Start:        0,
		End:          2,
		ObservedMean: 2,
	})
	require.Len(t, res.Trace, 2)
	assert.Equal(t, NSEStep{Numerator: 1, Denominator: 1, NumeratorSum: 1, DenominatorSum: 1}, res.Trace[0])
	assert.Equal(t, NSEStep{Numerator: 0, Denominator: 1, NumeratorSum: 1, DenominatorSum: 2}, res.Trace[1])
	assert.Equal(t, 0.5, res.NSE)
}

func TestNSEDegenerate(t *testing.T) {
	empty := NSE(NSEInput{Observed: []float64{1}, Predicted: []float64{1}, Start: 1, End: 1})
	assert.True(t, math.IsNaN(empty.NSE))
	assert.Empty(t, empty.Trace)

	noVariance := NSE(NSEInput{
		Observed:     []float64{2, 2},
		Predicted:    []float64{1, 1},
		Start:        0,
		End:          2,
		ObservedMean: 2,
	})
	assert.True(t, math.IsInf(noVariance.NSE, -1))

	perfectNoVariance := NSE(NSEInput{
		Observed:     []float64{2, 2},
		Predicted:    []float64{2, 2},
		Start:        0,
		End:          2,
		ObservedMean: 2,
	})
	assert.True(t, math.IsNaN(perfectNoVariance.NSE))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}, 0, 3))
	assert.Equal(t, 2.5, Mean([]float64{9, 2, math.NaN(), 3}, 1, 4))
	assert.True(t, math.IsNaN(Mean([]float64{math.NaN()}, 0, 1)))
	assert.True(t, math.IsNaN(Mean(nil, 0, 4)))
}

func TestScoreTests(t *testing.T) {
	model, err := timeseries.FromColumns(map[timeseries.Field][]float64{
		timeseries.FieldDrain:  {1, 2, 3, 4},
		timeseries.FieldRunoff: {2, 2, 2, 2},
	})
	require.Nil(t, err)

	exact, err := timeseries.FromColumns(map[timeseries.Field][]float64{
		timeseries.FieldDrain:  {1, 2, 3},
		timeseries.FieldRunoff: {1, 2, 3},
	})
	require.Nil(t, err)

	scores := ScoreTests(model, map[string]timeseries.Series{"b": exact, "a": exact})
	require.Len(t, scores, 2)
	assert.Equal(t, "a", scores[0].ID)
	assert.Equal(t, "b", scores[1].ID)
	assert.Equal(t, 1.0, scores[0].NSEDrain)
	assert.Equal(t, 0.0, scores[0].NSERunoff)
}
