package reservoir

import (
	"math"

	"github.com/aouyang1/go-reservoir/regression"
	"github.com/aouyang1/go-reservoir/timeseries"
)

// ModeledPoint is an observed point paired with a fitted value. Predicted is NaN where
// the point was not modeled.
type ModeledPoint struct {
	timeseries.Point
	Predicted float64
}

// Embed places the fitted y values of a window fit back into the full series. points[j]
// is the fit of series index start+j. Indices outside [start, end) and non numeric fits
// are not modeled. The first point is never modeled unless its prediction is a non zero
// number, which lets consumers detect a series without a model by looking at index 0.
func Embed(series timeseries.Series, start, end int, points []regression.Point) []ModeledPoint {
	start, end = timeseries.Clamp(start, end, len(series))

	modeled := make([]ModeledPoint, len(series))
	for i, p := range series {
		predicted := math.NaN()
		if j := i - start; i >= start && i < end && j < len(points) && timeseries.IsNumber(points[j].Y) {
			predicted = points[j].Y
		}
		modeled[i] = ModeledPoint{Point: p, Predicted: predicted}
	}

	if len(modeled) > 0 && (modeled[0].Predicted == 0 || math.IsNaN(modeled[0].Predicted)) {
		modeled[0].Predicted = math.NaN()
	}
	return modeled
}

// PredictedColumn returns the fitted values of a modeled series
func PredictedColumn(modeled []ModeledPoint) []float64 {
	col := make([]float64, len(modeled))
	for i, m := range modeled {
		col[i] = m.Predicted
	}
	return col
}
