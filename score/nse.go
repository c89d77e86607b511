// Package score computes goodness of fit measures for fitted and simulated series: Nash–
// Sutcliffe Efficiency and per window flow statistics.
package score

import (
	"math"
	"sort"

	"github.com/aouyang1/go-reservoir/round"
	"github.com/aouyang1/go-reservoir/timeseries"
	"gonum.org/v1/gonum/stat"
)

// NSEInput holds an observed and predicted channel and the half open window to score.
// ObservedMean is the baseline chosen by the caller. Fits and simulations pass the per
// step depth mean of their Flow statistics.
type NSEInput struct {
	Observed     []float64
	Predicted    []float64
	Start        int
	End          int
	ObservedMean float64
}

// NSEStep is one step of the cumulative NSE trace
type NSEStep struct {
	Numerator      float64 `json:"numerator"`
	Denominator    float64 `json:"denominator"`
	NumeratorSum   float64 `json:"numerator_sum"`
	DenominatorSum float64 `json:"denominator_sum"`
}

// NSEResult is the efficiency along with the per step running sums it was computed from
type NSEResult struct {
	NSE   float64   `json:"nse"`
	Trace []NSEStep `json:"trace"`
}

// NSE computes the Nash–Sutcliffe Efficiency 1 - Σ(p-o)²/Σ(o-mean)² over the window. The
// value comes from the final cumulative sums only. 1 is a perfect fit, 0 is no better
// than the mean, and a zero denominator yields NaN or ±Inf. Missing values count as 0.
func NSE(in NSEInput) NSEResult {
	n := min(len(in.Observed), len(in.Predicted))
	start, end := timeseries.Clamp(in.Start, in.End, n)

	trace := make([]NSEStep, 0, end-start)
	var numSum, denSum float64
	for i := start; i < end; i++ {
		observed := zeroIfMissing(in.Observed[i])
		predicted := zeroIfMissing(in.Predicted[i])

		numerator := math.Pow(predicted-observed, 2)
		denominator := math.Pow(observed-in.ObservedMean, 2)
		numSum += numerator
		denSum += denominator
		trace = append(trace, NSEStep{
			Numerator:      numerator,
			Denominator:    denominator,
			NumeratorSum:   numSum,
			DenominatorSum: denSum,
		})
	}

	if len(trace) == 0 {
		return NSEResult{NSE: math.NaN(), Trace: trace}
	}
	last := trace[len(trace)-1]
	return NSEResult{
		NSE:   1 - last.NumeratorSum/last.DenominatorSum,
		Trace: trace,
	}
}

// Mean averages the non missing values in [start, end). It is NaN when there are none.
func Mean(values []float64, start, end int) float64 {
	start, end = timeseries.Clamp(start, end, len(values))
	present := make([]float64, 0, end-start)
	for _, v := range values[start:end] {
		if timeseries.IsNumber(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN()
	}
	return stat.Mean(present, nil)
}

func zeroIfMissing(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// TestScore is the efficiency of a model series against one observed test
type TestScore struct {
	ID        string  `json:"id"`
	NSEDrain  float64 `json:"nse_drain"`
	NSERunoff float64 `json:"nse_runoff"`
}

// ScoreTests scores the drainage and runoff rates of the model series against every
// observed test series over their common length. Scores are rounded to 2 places and
// ordered by test id.
func ScoreTests(model timeseries.Series, tests map[string]timeseries.Series) []TestScore {
	ids := make([]string, 0, len(tests))
	for id := range tests {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	scores := make([]TestScore, 0, len(ids))
	for _, id := range ids {
		test := tests[id]
		n := min(len(model), len(test))
		scores = append(scores, TestScore{
			ID:        id,
			NSEDrain:  channelNSE(model, test, timeseries.FieldDrain, n),
			NSERunoff: channelNSE(model, test, timeseries.FieldRunoff, n),
		})
	}
	return scores
}

func channelNSE(model, test timeseries.Series, f timeseries.Field, n int) float64 {
	observed := test.Column(f)
	res := NSE(NSEInput{
		Observed:     observed,
		Predicted:    model.Column(f),
		Start:        0,
		End:          n,
		ObservedMean: Mean(observed, 0, n),
	})
	return round.Precision(res.NSE, 2)
}
