package regression

import (
	"gonum.org/v1/gonum/stat"
)

// DeterminationCoefficient computes r² = 1 - SSE/SSYY of the predicted points against the
// observed data, ignoring missing observations. The result may be negative when the fit
// is worse than the mean, or NaN when the observations have no variance.
func DeterminationCoefficient(data, predicted []Point) float64 {
	observed := make([]float64, 0, len(data))
	estimates := make([]float64, 0, len(data))
	for i, d := range data {
		if IsMissing(d.Y) || i >= len(predicted) {
			continue
		}
		observed = append(observed, d.Y)
		estimates = append(estimates, predicted[i].Y)
	}
	return stat.RSquaredFrom(estimates, observed, nil)
}
