package reservoir

import (
	"math"

	"github.com/aouyang1/go-reservoir/regression"
	"github.com/aouyang1/go-reservoir/score"
	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/rs/zerolog/log"
)

// SimulationMethod labels every simulated series
const SimulationMethod = "predict"

// Model is a storage to drainage rate curve along with the fields it was fit on
type Model struct {
	XField    timeseries.Field
	YField    timeseries.Field
	Subset    string
	Equation  string
	R2        float64
	Predictor regression.Predictor
}

// Accumulator carries the state of the simulation from one step to the next
type Accumulator struct {
	Storage    float64
	DrainTotal float64
	SheetTotal float64
}

// StepTrace keeps the intermediate values of a step
type StepTrace struct {
	PredictX   float64 `json:"predict_x"`
	PredictY   float64 `json:"predict_y"`
	DrainDepth float64 `json:"drain_mm"`
	SheetDepth float64 `json:"sheet_mm"`
}

// SimulatedPoint is an observed point along with the simulated storage (mm), drainage
// rate (mm/hr) and running totals (mm)
type SimulatedPoint struct {
	timeseries.Point
	Storage    float64   `json:"storage_mm"`
	DrainRate  float64   `json:"drain_mm_hr"`
	DrainTotal float64   `json:"drain_total_mm"`
	SheetTotal float64   `json:"sheet_total_mm"`
	Trace      StepTrace `json:"trace"`
}

// Simulation is a full length simulated series scored against the observations
type Simulation struct {
	Method   string           `json:"method"`
	Subset   string           `json:"subset"`
	Equation string           `json:"equation"`
	R2       float64          `json:"r_squared"`
	Points   []SimulatedPoint `json:"points"`
	Flow     score.FlowStats  `json:"flow"`
	NSE      score.NSEResult  `json:"nse"`
}

// StorageColumn returns the simulated storage of every step
func (s *Simulation) StorageColumn() []float64 {
	col := make([]float64, len(s.Points))
	for i, p := range s.Points {
		col[i] = p.Storage
	}
	return col
}

// DrainRateColumn returns the simulated drainage rate of every step
func (s *Simulation) DrainRateColumn() []float64 {
	col := make([]float64, len(s.Points))
	for i, p := range s.Points {
		col[i] = p.DrainRate
	}
	return col
}

// Seed starts a simulation from the first observed point. Storage and drainage rate are
// the observed x and y values, and the totals are the observed totals.
func (m Model) Seed(p timeseries.Point) (SimulatedPoint, Accumulator) {
	acc := Accumulator{
		Storage:    p.Value(m.XField),
		DrainTotal: zeroIfMissing(p.DrainTotal),
		SheetTotal: zeroIfMissing(p.SheetTotal),
	}
	return SimulatedPoint{
		Point:      p,
		Storage:    acc.Storage,
		DrainRate:  p.Value(m.YField),
		DrainTotal: acc.DrainTotal,
		SheetTotal: acc.SheetTotal,
	}, acc
}

// Step advances the reservoir by one minute. The drainage rate is predicted from the prior
// storage and converted to a depth, sheet flow is always 0, and the new storage is the
// prior storage plus this step's rain less the drained depth. A missing prediction drains
// nothing.
func Step(acc Accumulator, p timeseries.Point, predictor regression.Predictor) (SimulatedPoint, Accumulator) {
	px, rate := predictor.Predict(acc.Storage)
	trace := StepTrace{PredictX: px, PredictY: rate}
	if math.IsNaN(rate) {
		rate = 0
	}
	drain := rate / score.MinutesPerHour
	sheet := 0.0
	trace.DrainDepth = drain
	trace.SheetDepth = sheet

	next := Accumulator{
		Storage:    acc.Storage + zeroIfMissing(p.Rain) - drain - sheet,
		DrainTotal: acc.DrainTotal + drain,
		SheetTotal: acc.SheetTotal + sheet,
	}
	return SimulatedPoint{
		Point:      p,
		Storage:    next.Storage,
		DrainRate:  rate,
		DrainTotal: next.DrainTotal,
		SheetTotal: next.SheetTotal,
		Trace:      trace,
	}, next
}

// Simulate routes the rainfall of the series through the model's reservoir and scores
// the simulated drainage rate against the observed one over the whole series. Each step
// depends on the storage of the previous one.
func Simulate(series timeseries.Series, m Model) *Simulation {
	sim := &Simulation{
		Method:   SimulationMethod,
		Subset:   m.Subset,
		Equation: m.Equation,
		R2:       m.R2,
		Points:   make([]SimulatedPoint, 0, len(series)),
	}

	var acc Accumulator
	for i, p := range series {
		var sp SimulatedPoint
		if i == 0 {
			sp, acc = m.Seed(p)
		} else {
			sp, acc = Step(acc, p, m.Predictor)
		}
		sim.Points = append(sim.Points, sp)
	}

	observedRate := series.Column(m.YField)
	predictedRate := sim.DrainRateColumn()
	n := len(series)
	sim.Flow = score.Flow(score.FlowInput{
		ObservedRate:     observedRate,
		PredictedRate:    predictedRate,
		ObservedStorage:  series.Column(m.XField),
		PredictedStorage: sim.StorageColumn(),
		Start:            0,
		End:              n,
	})
	sim.NSE = score.NSE(score.NSEInput{
		Observed:     observedRate,
		Predicted:    predictedRate,
		Start:        0,
		End:          n,
		ObservedMean: sim.Flow.Observed.Mean,
	})

	log.Trace().
		Str("subset", m.Subset).
		Str("equation", m.Equation).
		Int("steps", n).
		Float64("drain_total", sim.Flow.Predicted.Total).
		Float64("nse", sim.NSE.NSE).
		Msg("simulated reservoir")
	return sim
}

func zeroIfMissing(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
