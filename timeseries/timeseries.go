// Package timeseries holds the fixed step hydrologic series that every fit and simulation
// reads. The index of a point is its time step.
package timeseries

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownField       = errors.New("unknown series field")
	ErrDatasetLenMismatch = errors.New("column has a different length than the series")
)

// Field names a numeric channel of a Point
type Field int

const (
	FieldRain Field = iota
	FieldMinutes
	FieldAbsorb
	FieldDrain
	FieldRunoff
	FieldDrainTotal
	FieldSheetTotal
)

var fieldNames = map[Field]string{
	FieldRain:       "rainMm",
	FieldMinutes:    "minsTotal",
	FieldAbsorb:     "absorbDeltaMmTotal",
	FieldDrain:      "runoffDrainMmHr",
	FieldRunoff:     "runoffMmHr",
	FieldDrainTotal: "runoffDrainMmTotal",
	FieldSheetTotal: "runoffSheetMmTotal",
}

// Fields lists every field in declaration order
func Fields() []Field {
	return []Field{FieldRain, FieldMinutes, FieldAbsorb, FieldDrain, FieldRunoff, FieldDrainTotal, FieldSheetTotal}
}

func (f Field) String() string {
	if name, exists := fieldNames[f]; exists {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField maps a column name to its Field
func ParseField(name string) (Field, error) {
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%q, %w", name, ErrUnknownField)
}

// Point is a single time step. Missing values are NaN.
type Point struct {
	Rain       float64 // rainfall depth this step, mm
	Minutes    float64 // elapsed minutes
	Absorb     float64 // observed storage, mm
	Drain      float64 // observed drainage rate, mm/hr
	Runoff     float64 // observed runoff rate, mm/hr
	DrainTotal float64 // cumulative drainage, mm
	SheetTotal float64 // cumulative sheet flow, mm
}

// MissingPoint returns a point with every field missing
func MissingPoint() Point {
	nan := math.NaN()
	return Point{nan, nan, nan, nan, nan, nan, nan}
}

// Value returns the value of field f, NaN for an unknown field
func (p Point) Value(f Field) float64 {
	switch f {
	case FieldRain:
		return p.Rain
	case FieldMinutes:
		return p.Minutes
	case FieldAbsorb:
		return p.Absorb
	case FieldDrain:
		return p.Drain
	case FieldRunoff:
		return p.Runoff
	case FieldDrainTotal:
		return p.DrainTotal
	case FieldSheetTotal:
		return p.SheetTotal
	default:
		return math.NaN()
	}
}

// With returns a copy of p with field f set to v
func (p Point) With(f Field, v float64) Point {
	switch f {
	case FieldRain:
		p.Rain = v
	case FieldMinutes:
		p.Minutes = v
	case FieldAbsorb:
		p.Absorb = v
	case FieldDrain:
		p.Drain = v
	case FieldRunoff:
		p.Runoff = v
	case FieldDrainTotal:
		p.DrainTotal = v
	case FieldSheetTotal:
		p.SheetTotal = v
	}
	return p
}

// IsNumber reports whether v is a finite number
func IsNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Series is an ordered, fixed step sequence of points. Functions in this module never
// modify a Series they are given.
type Series []Point

// New returns a copy of the points as a Series
func New(points []Point) Series {
	s := make(Series, len(points))
	copy(s, points)
	return s
}

// FromColumns assembles a series from per field columns. Every column must have the same
// length and fields without a column are missing.
func FromColumns(cols map[Field][]float64) (Series, error) {
	n := -1
	for f, col := range cols {
		if n >= 0 && len(col) != n {
			return nil, fmt.Errorf("%s has length %d, expected %d, %w", f, len(col), n, ErrDatasetLenMismatch)
		}
		n = len(col)
	}
	if n < 0 {
		return Series{}, nil
	}

	s := make(Series, n)
	for i := range s {
		p := MissingPoint()
		for f, col := range cols {
			p = p.With(f, col[i])
		}
		s[i] = p
	}
	return s, nil
}

func (s Series) Len() int {
	return len(s)
}

// Copy returns a deep copy of the series
func (s Series) Copy() Series {
	return New(s)
}

// Column returns a copy of the values of field f
func (s Series) Column(f Field) []float64 {
	col := make([]float64, len(s))
	for i, p := range s {
		col[i] = p.Value(f)
	}
	return col
}

// Slice returns a copy of the points in [start, end), clamping the bounds to the series
func (s Series) Slice(start, end int) Series {
	start, end = Clamp(start, end, len(s))
	return New(s[start:end])
}

// Clamp bounds a half open range to [0, n] keeping start <= end
func Clamp(start, end, n int) (int, int) {
	if end > n {
		end = n
	}
	if end < 0 {
		end = 0
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	return start, end
}
