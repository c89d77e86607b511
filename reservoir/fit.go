// Package reservoir fits a storage to drainage curve on the valid window of an observed
// series and routes rainfall through a linear reservoir driven by that curve. Per fit and
// per simulation details are logged at trace level.
package reservoir

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-reservoir/regression"
	"github.com/aouyang1/go-reservoir/score"
	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/aouyang1/go-reservoir/window"
	"github.com/rs/zerolog/log"
)

var ErrInsufficientData = errors.New("insufficient data points for regression")

const (
	// MinFitPoints is the smallest window that is fit
	MinFitPoints = 4

	// FitOrder is the polynomial order used for every window fit
	FitOrder = 2
)

// FitInput describes a single window fit of YField against XField. FitFunc takes
// precedence over Method when set.
type FitInput struct {
	TestID    string
	Series    timeseries.Series
	XField    timeseries.Field
	YField    timeseries.Field
	StartUser int
	EndUser   int
	Subset    string
	Precision int
	Method    regression.Family
	FitFunc   regression.FitFunc
}

// ObserveRegression bundles a window fit with its re-embedded series and scores
type ObserveRegression struct {
	TestID  string             `json:"test_id"`
	Subset  string             `json:"subset"`
	Method  regression.Family  `json:"method"`
	XField  timeseries.Field   `json:"-"`
	YField  timeseries.Field   `json:"-"`
	Window  window.Window      `json:"window"`
	Result  *regression.Result `json:"result"`
	Modeled []ModeledPoint     `json:"-"`
	Flow    score.FlowStats    `json:"flow"`
	NSE     score.NSEResult    `json:"nse"`
}

// Fit selects the valid window of the series, fits it and scores the fit over the window.
// A window with fewer than MinFitPoints points returns ErrInsufficientData.
func Fit(in FitInput) (*ObserveRegression, error) {
	fit := in.FitFunc
	if fit == nil {
		var err error
		if fit, err = regression.Lookup(in.Method); err != nil {
			return nil, err
		}
	}

	w := window.Select(window.Input{
		Series:    in.Series,
		StartUser: in.StartUser,
		EndUser:   in.EndUser,
		XField:    in.XField,
		YField:    in.YField,
	})
	if w.Len() < MinFitPoints {
		return nil, fmt.Errorf("only %d data points for test %s method %s subset %s, %w",
			w.Len(), in.TestID, in.Method, in.Subset, ErrInsufficientData)
	}

	data := make([]regression.Point, 0, w.Len())
	for _, p := range in.Series[w.Start:w.End] {
		data = append(data, regression.Point{X: p.Value(in.XField), Y: p.Value(in.YField)})
	}
	res := fit(data, &regression.Options{Order: FitOrder, Precision: in.Precision})

	modeled := Embed(in.Series, w.Start, w.End, res.Points)
	observed := in.Series.Column(in.YField)
	predicted := PredictedColumn(modeled)

	flow := score.Flow(score.FlowInput{
		ObservedRate:  observed,
		PredictedRate: predicted,
		Start:         w.Start,
		End:           w.End,
	})
	nse := score.NSE(score.NSEInput{
		Observed:     observed,
		Predicted:    predicted,
		Start:        w.Start,
		End:          w.End,
		ObservedMean: flow.Observed.Mean,
	})

	log.Trace().
		Str("test_id", in.TestID).
		Str("method", string(in.Method)).
		Str("subset", in.Subset).
		Int("start", w.Start).
		Int("end", w.End).
		Float64("r2", res.R2).
		Float64("nse", nse.NSE).
		Msg("fit observed window")

	return &ObserveRegression{
		TestID:  in.TestID,
		Subset:  in.Subset,
		Method:  res.Family,
		XField:  in.XField,
		YField:  in.YField,
		Window:  w,
		Result:  res,
		Modeled: modeled,
		Flow:    flow,
		NSE:     nse,
	}, nil
}

// Model returns the fitted curve as a simulation model
func (o *ObserveRegression) Model() Model {
	return Model{
		XField:    o.XField,
		YField:    o.YField,
		Subset:    o.Subset,
		Equation:  o.Result.Equation,
		R2:        o.Result.R2,
		Predictor: o.Result,
	}
}
