package reservoirfit

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/aouyang1/go-reservoir/coeff"
	"github.com/aouyang1/go-reservoir/regression"
	"github.com/aouyang1/go-reservoir/reservoir"
	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStorm() timeseries.Series {
	rain := timeseries.GenerateConst(60, 0).SetRange(0.8, 5, 20)
	return timeseries.GenerateStorm(rain, 6, 2, 1.5)
}

func TestNew(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"default":            {opt: nil},
		"explicit":           {opt: &Options{Method: regression.FamilyPolynomial, Precision: 2}},
		"unknown method":     {opt: &Options{Method: "spline"}, err: regression.ErrUnknownFamily},
		"negative precision": {opt: &Options{Method: regression.FamilyPower, Precision: -1}, err: ErrInvalidPrecision},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			a, err := New(td.opt)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			require.NotNil(t, a)
		})
	}

	a, err := New(nil)
	require.Nil(t, err)
	assert.Equal(t, *NewDefaultOptions(), a.Options())
}

func TestAnalyze(t *testing.T) {
	series := setupStorm()
	a, err := New(nil)
	require.Nil(t, err)

	res, err := a.Analyze(series)
	require.Nil(t, err)

	_, err = uuid.Parse(res.RunID)
	assert.Nil(t, err)
	require.NotNil(t, res.Fit)
	assert.Nil(t, res.Match)
	assert.Equal(t, "y = 2x^1.5", res.Fit.Result.Equation)
	assert.Equal(t, 1.0, res.Fit.Result.R2)
	assert.Equal(t, 0, res.Fit.Window.Start)
	assert.Equal(t, len(series), res.Fit.Window.End)
	assert.Len(t, res.Simulation.Points, len(series))
	assert.Equal(t, series, res.Series())

	for i, p := range res.Simulation.Points {
		assert.InDelta(t, series[i].Absorb, p.Storage, 1e-3, "storage at %d", i)
	}
}

func TestSimulatedSeries(t *testing.T) {
	series := setupStorm()
	a, err := New(nil)
	require.Nil(t, err)
	res, err := a.Analyze(series)
	require.Nil(t, err)

	model, err := res.SimulatedSeries()
	require.Nil(t, err)
	require.Len(t, model, len(series))
	for i, p := range model {
		sp := res.Simulation.Points[i]
		assert.Equal(t, series[i].Rain, p.Rain)
		assert.Equal(t, sp.Storage, p.Absorb)
		assert.Equal(t, sp.DrainRate, p.Drain)
		assert.Equal(t, sp.DrainRate, p.Runoff)
		assert.Equal(t, sp.DrainTotal, p.DrainTotal)
		assert.Equal(t, sp.SheetTotal, p.SheetTotal)
	}
}

func TestAnalysisScoreTests(t *testing.T) {
	series := setupStorm()
	a, err := New(nil)
	require.Nil(t, err)
	res, err := a.Analyze(series)
	require.Nil(t, err)

	model, err := res.SimulatedSeries()
	require.Nil(t, err)
	scores, err := res.ScoreTests(map[string]timeseries.Series{
		"observed": series,
		"self":     model,
	})
	require.Nil(t, err)
	require.Len(t, scores, 2)

	assert.Equal(t, "observed", scores[0].ID)
	assert.Less(t, scores[0].NSEDrain, 1.0)
	assert.Greater(t, scores[0].NSEDrain, 0.0)
	assert.Equal(t, "self", scores[1].ID)
	assert.Equal(t, 1.0, scores[1].NSEDrain)
	assert.Equal(t, 1.0, scores[1].NSERunoff)
}

func TestAnalyzeWindow(t *testing.T) {
	series := setupStorm()
	a, err := New(&Options{
		Method:    regression.FamilyPower,
		Precision: 4,
		StartUser: 10,
		EndUser:   30,
		XField:    timeseries.FieldAbsorb,
		YField:    timeseries.FieldDrain,
	})
	require.Nil(t, err)

	res, err := a.Analyze(series)
	require.Nil(t, err)
	assert.Equal(t, 10, res.Fit.Window.Start)
	assert.Equal(t, 30, res.Fit.Window.End)
	assert.True(t, math.IsNaN(res.Fit.Modeled[0].Predicted))
	assert.Len(t, res.Simulation.Points, len(series))
}

func TestAnalyzeInsufficientData(t *testing.T) {
	a, err := New(&Options{
		TestID:    "t9",
		Method:    regression.FamilyLinear,
		Precision: 4,
		StartUser: 0,
		EndUser:   3,
		XField:    timeseries.FieldAbsorb,
		YField:    timeseries.FieldDrain,
	})
	require.Nil(t, err)

	_, err = a.Analyze(setupStorm())
	assert.ErrorIs(t, err, reservoir.ErrInsufficientData)
}

func TestAnalyzeWithModel(t *testing.T) {
	a, err := New(nil)
	require.Nil(t, err)

	series := setupStorm()
	_, err = a.AnalyzeWithModel(series, reservoir.Model{})
	assert.ErrorIs(t, err, ErrNoPredictor)

	res, err := a.AnalyzeWithModel(series, reservoir.Model{
		XField:    timeseries.FieldAbsorb,
		YField:    timeseries.FieldDrain,
		Equation:  "y = 0",
		R2:        math.NaN(),
		Predictor: regression.PredictorFunc(func(x float64) (float64, float64) { return x, 0 }),
	})
	require.Nil(t, err)
	assert.Nil(t, res.Fit)

	s := res.Summary()
	assert.Nil(t, s.R2)
	assert.Nil(t, s.Start)
	assert.Nil(t, s.FitNSE)
	assert.Equal(t, "y = 0", s.Equation)
	require.NotNil(t, s.DrainSim)
	assert.InDelta(t, series[0].Drain/60, *s.DrainSim, 1e-4)
}

func coefficientTable() coeff.Table {
	return coeff.NewTable([]coeff.JoinRow{{
		ID:            3,
		JoinType:      coeff.JoinQFromI,
		NamesVersions: []string{"v1"},
		ProfileCode:   "20+20x10",
		Value:         []byte(`{"coeff":{"functionType":"power","k":2,"n":1.5}}`),
	}}, true, coeff.JSONParser, coeff.KindJSON)
}

func TestAnalyzeResolved(t *testing.T) {
	series := setupStorm()
	a, err := New(nil)
	require.Nil(t, err)

	res, err := a.AnalyzeResolved(series, CoefficientQuery{
		JoinType: coeff.JoinQFromI,
		Profile:  coeff.Profile{"profile_code_10_t": "20+20x10"},
		Table:    coefficientTable(),
		Versions: []string{"v2", "v1"},
	})
	require.Nil(t, err)
	require.NotNil(t, res.Match)
	assert.Equal(t, "profile_code_10_t = 20+20x10", res.Match.Found)
	assert.Equal(t, "Power: 2 * (x ^ 1.5)", res.Simulation.Equation)
	for i, p := range res.Simulation.Points {
		assert.InDelta(t, series[i].Absorb, p.Storage, 1e-9, "storage at %d", i)
	}

	s := res.Summary()
	assert.Equal(t, "power", s.Method)
	assert.Equal(t, res.Match.Found, s.Match)

	_, err = a.AnalyzeResolved(series, CoefficientQuery{
		JoinType: coeff.JoinIFromS,
		Profile:  coeff.Profile{"profileCodeExact": "20+20x10"},
		Table:    coefficientTable(),
		Versions: []string{"v1"},
	})
	assert.ErrorIs(t, err, ErrNoCoefficient)
}

func TestCompare(t *testing.T) {
	a, err := New(nil)
	require.Nil(t, err)

	methods := []regression.Family{regression.FamilyPower, "spline", regression.FamilyLinear, regression.FamilyPolynomial}
	results := a.Compare(setupStorm(), methods...)
	require.Len(t, results, len(methods))

	for i, res := range results {
		assert.Equal(t, methods[i], res.Method)
	}
	assert.ErrorIs(t, results[1].Err, regression.ErrUnknownFamily)
	assert.Nil(t, results[1].Analysis)

	for _, i := range []int{0, 2, 3} {
		require.Nil(t, results[i].Err)
		assert.Equal(t, methods[i], results[i].Analysis.Fit.Method)
	}
	assert.Equal(t, 1.0, results[0].Analysis.Fit.Result.R2)
	assert.NotEqual(t, results[0].Analysis.RunID, results[2].Analysis.RunID)
}

func TestOptionsTablePrint(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, NewDefaultOptions().TablePrint(&buf, "", "  ", 0))

	expected := "Options:\n" +
		"   Method Subset Precision Start End" + strings.Repeat(" ", 18) + "X" + strings.Repeat(" ", 15) + "Y\n" +
		"    power    all         4     0   0 absorbDeltaMmTotal runoffDrainMmHr\n"
	assert.Equal(t, expected, buf.String())
}

func TestAnalysisTablePrint(t *testing.T) {
	a, err := New(nil)
	require.Nil(t, err)
	res, err := a.Analyze(setupStorm())
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, res.TablePrint(&buf, "", "  ", 0))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Analysis: "+res.RunID+"\n"))
	assert.Contains(t, out, "  Fit:\n")
	assert.Contains(t, out, "y = 2x^1.5")
	assert.Contains(t, out, "  Simulation: y = 2x^1.5\n")
	assert.Contains(t, out, "Observed")
	assert.Contains(t, out, "Predicted")
	assert.Contains(t, out, "    NSE: ")

	resolved, err := a.AnalyzeResolved(setupStorm(), CoefficientQuery{
		JoinType: coeff.JoinQFromI,
		Profile:  coeff.Profile{"profileCode10T": "20+20x10"},
		Table:    coefficientTable(),
		Versions: []string{"v1"},
	})
	require.Nil(t, err)

	buf.Reset()
	require.Nil(t, resolved.TablePrint(&buf, "", "  ", 0))
	assert.Contains(t, buf.String(), "  Fit: None\n")
	assert.Contains(t, buf.String(), "  Coefficient: profileCode10T = 20+20x10 (v1)\n")
}

func TestPlotFit(t *testing.T) {
	a, err := New(nil)
	require.Nil(t, err)
	res, err := a.Analyze(setupStorm())
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, res.PlotFit(&buf))
	html := buf.String()
	assert.Contains(t, html, "Window Fit")
	assert.Contains(t, html, "Simulated Storage")
	assert.Contains(t, html, "Simulated Drainage")
}
