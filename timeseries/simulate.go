package timeseries

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Values is a single channel of values used to assemble synthetic series
type Values []float64

func (v Values) Add(src Values) Values {
	floats.Add(v, src)
	return v
}

// SetRange sets every value in [start, end) to val
func (v Values) SetRange(val float64, start, end int) Values {
	start, end = Clamp(start, end, len(v))
	for i := start; i < end; i++ {
		v[i] = val
	}
	return v
}

func GenerateConst(n int, val float64) Values {
	v := make(Values, 0, n)
	for i := 0; i < n; i++ {
		v = append(v, val)
	}
	return v
}

// GenerateStorm routes a rainfall hyetograph through a reservoir whose drainage rate in
// mm/hr is k·storage^n, starting from storage0. Each step is one minute long. The series
// is self consistent: storage drains by the previous step's rate converted to a depth.
func GenerateStorm(rain Values, storage0, k, n float64) Series {
	s := make(Series, len(rain))
	storage := storage0
	var drainTotal float64
	for i := range rain {
		if i > 0 {
			storage += rain[i] - s[i-1].Drain/60.0
			drainTotal += s[i-1].Drain / 60.0
		}
		drain := k * math.Pow(storage, n)
		s[i] = Point{
			Rain:       rain[i],
			Minutes:    float64(i),
			Absorb:     storage,
			Drain:      drain,
			Runoff:     drain,
			DrainTotal: drainTotal,
			SheetTotal: 0,
		}
	}
	return s
}
