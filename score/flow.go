package score

import (
	"math"

	"github.com/aouyang1/go-reservoir/round"
	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// MinutesPerHour converts an hourly rate into a per step depth for one minute steps
const MinutesPerHour = 60.0

// FlowInput holds the rate channels (mm/hr) and the optional storage channels (mm) of a
// window. A nil storage channel is treated as all missing.
type FlowInput struct {
	ObservedRate     []float64
	PredictedRate    []float64
	ObservedStorage  []float64
	PredictedStorage []float64
	Start            int
	End              int
}

// ChannelStats summarises one rate channel over a window as per step depths
type ChannelStats struct {
	Total    float64 `json:"total_mm"`
	PeakRate float64 `json:"peak_mm"`
	Mean     float64 `json:"mean_mm"`
}

// FlowStats summarises the observed and predicted channels of a window
type FlowStats struct {
	Observed            ChannelStats `json:"observed"`
	Predicted           ChannelStats `json:"predicted"`
	AbsorbPeak          float64      `json:"absorb_peak_mm"`
	AbsorbPeakPredicted float64      `json:"absorb_peak_predicted_mm"`
}

// Flow converts each rate in the window to a one minute depth rounded to 4 places and
// tracks the running peak and total, and the mean once the window is scanned. Storage
// channels only track their peak. Missing rates are logged and counted as 0.
func Flow(in FlowInput) FlowStats {
	n := min(len(in.ObservedRate), len(in.PredictedRate))
	start, end := timeseries.Clamp(in.Start, in.End, n)

	var fs FlowStats
	observedMm := make([]float64, 0, end-start)
	predictedMm := make([]float64, 0, end-start)
	for i := start; i < end; i++ {
		observedRate := in.ObservedRate[i]
		if !timeseries.IsNumber(observedRate) {
			log.Warn().Int("index", i).Float64("value", observedRate).Msg("observed rate is missing")
			observedRate = 0
		}
		predictedRate := in.PredictedRate[i]
		if !timeseries.IsNumber(predictedRate) {
			log.Warn().Int("index", i).Float64("value", predictedRate).Msg("predicted rate is missing")
			predictedRate = 0
		}

		mmObserved := round.Precision(observedRate/MinutesPerHour, 4)
		mmPredicted := round.Precision(predictedRate/MinutesPerHour, 4)
		observedMm = append(observedMm, mmObserved)
		predictedMm = append(predictedMm, mmPredicted)

		fs.Observed.PeakRate = math.Max(fs.Observed.PeakRate, mmObserved)
		fs.Predicted.PeakRate = math.Max(fs.Predicted.PeakRate, mmPredicted)
		fs.Observed.Total += mmObserved
		fs.Predicted.Total += mmPredicted

		fs.AbsorbPeak = math.Max(fs.AbsorbPeak, valueOrZero(in.ObservedStorage, i))
		fs.AbsorbPeakPredicted = math.Max(fs.AbsorbPeakPredicted, valueOrZero(in.PredictedStorage, i))
	}

	fs.Observed.Mean = mean(observedMm)
	fs.Predicted.Mean = mean(predictedMm)
	return fs
}

func valueOrZero(values []float64, i int) float64 {
	if i >= len(values) || !timeseries.IsNumber(values[i]) {
		return 0
	}
	return values[i]
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}
