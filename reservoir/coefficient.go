package reservoir

import (
	"math"

	"github.com/aouyang1/go-reservoir/coeff"
	"github.com/aouyang1/go-reservoir/timeseries"
)

// FromCoefficient builds a simulation model from a resolved coefficient record instead of
// a window fit. The model has no goodness of fit so R2 is NaN.
func FromCoefficient(m coeff.Match, x, y timeseries.Field, subset string) Model {
	return Model{
		XField:    x,
		YField:    y,
		Subset:    subset,
		Equation:  m.Record.String,
		R2:        math.NaN(),
		Predictor: m,
	}
}
