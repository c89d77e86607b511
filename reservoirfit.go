// Package reservoirfit analyzes an observed storm series: it fits a storage to drainage
// curve on the valid window of the series, routes the rainfall through a linear reservoir
// driven by that curve, and scores both against the observations.
package reservoirfit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aouyang1/go-reservoir/coeff"
	"github.com/aouyang1/go-reservoir/regression"
	"github.com/aouyang1/go-reservoir/reservoir"
	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoCoefficient    = errors.New("no coefficient resolved for profile")
	ErrNoPredictor      = errors.New("model has no predictor")
	ErrInvalidPrecision = errors.New("precision must not be negative")
)

// Analyzer runs analyses of observed series with a fixed set of options
type Analyzer struct {
	opt *Options
	fit regression.FitFunc
}

// New creates an Analyzer from the provided options. If no options are provided a default
// is used.
func New(opt *Options) (*Analyzer, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if opt.Precision < 0 {
		return nil, fmt.Errorf("%d, %w", opt.Precision, ErrInvalidPrecision)
	}

	fit, err := regression.Lookup(opt.Method)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize analyzer, %w", err)
	}
	return &Analyzer{opt: opt, fit: fit}, nil
}

// Options returns the options of the analyzer
func (a *Analyzer) Options() Options {
	return *a.opt
}

// Analyze fits the configured method on the valid window of the series and simulates the
// whole series with the fitted curve
func (a *Analyzer) Analyze(series timeseries.Series) (*Analysis, error) {
	return a.analyze(series, a.opt.Method, a.fit)
}

func (a *Analyzer) analyze(series timeseries.Series, method regression.Family, fit regression.FitFunc) (*Analysis, error) {
	runID := uuid.NewString()
	obs, err := reservoir.Fit(reservoir.FitInput{
		TestID:    a.opt.TestID,
		Series:    series,
		XField:    a.opt.XField,
		YField:    a.opt.YField,
		StartUser: a.opt.StartUser,
		EndUser:   a.opt.endFor(series),
		Subset:    a.opt.Subset,
		Precision: a.opt.Precision,
		Method:    method,
		FitFunc:   fit,
	})
	if err != nil {
		log.Warn().Err(err).Str("run_id", runID).Str("method", string(method)).Msg("unable to fit series")
		return nil, fmt.Errorf("unable to fit %s, %w", method, err)
	}

	return &Analysis{
		RunID:      runID,
		Options:    *a.opt,
		Fit:        obs,
		Simulation: reservoir.Simulate(series, obs.Model()),
		series:     series,
	}, nil
}

// AnalyzeWithModel simulates the series with an existing model and skips the fit
func (a *Analyzer) AnalyzeWithModel(series timeseries.Series, model reservoir.Model) (*Analysis, error) {
	if model.Predictor == nil {
		return nil, ErrNoPredictor
	}
	return &Analysis{
		RunID:      uuid.NewString(),
		Options:    *a.opt,
		Simulation: reservoir.Simulate(series, model),
		series:     series,
	}, nil
}

// CoefficientQuery selects a previously fit curve for a profile
type CoefficientQuery struct {
	JoinType  string
	Profile   coeff.Profile
	Table     coeff.Table
	Versions  []string
	Fallbacks coeff.Fallbacks
}

// AnalyzeResolved resolves a stored curve for the query profile and simulates the series
// with it. ErrNoCoefficient is returned when nothing resolves.
func (a *Analyzer) AnalyzeResolved(series timeseries.Series, q CoefficientQuery) (*Analysis, error) {
	match, found := coeff.Resolve(q.JoinType, q.Profile, q.Table, q.Versions, q.Fallbacks)
	if !found {
		return nil, fmt.Errorf("join type %s versions %v, %w", q.JoinType, q.Versions, ErrNoCoefficient)
	}
	log.Trace().Str("join_type", q.JoinType).Str("match", match.Found).Str("version", match.Version).Msg("resolved coefficients")

	model := reservoir.FromCoefficient(match, a.opt.XField, a.opt.YField, a.opt.Subset)
	analysis, err := a.AnalyzeWithModel(series, model)
	if err != nil {
		return nil, err
	}
	analysis.Match = &match
	return analysis, nil
}

// Comparison is the outcome of one method in Compare
type Comparison struct {
	Method   regression.Family
	Analysis *Analysis
	Err      error
}

// Compare analyzes the series with each method concurrently. Results are in the order of
// the methods. An unknown method or a failed fit is reported on its own comparison.
func (a *Analyzer) Compare(series timeseries.Series, methods ...regression.Family) []Comparison {
	results := make([]Comparison, len(methods))

	var wg sync.WaitGroup
	for i, method := range methods {
		results[i].Method = method
		fit, err := regression.Lookup(method)
		if err != nil {
			results[i].Err = err
			continue
		}

		wg.Add(1)
		go func(i int, method regression.Family, fit regression.FitFunc) {
			defer wg.Done()
			results[i].Analysis, results[i].Err = a.analyze(series, method, fit)
		}(i, method, fit)
	}
	wg.Wait()
	return results
}
