package reservoirfit

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aouyang1/go-reservoir/coeff"
	"github.com/aouyang1/go-reservoir/regression"
	"github.com/aouyang1/go-reservoir/reservoir"
	"github.com/aouyang1/go-reservoir/score"
	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/aouyang1/go-reservoir/util"
	"github.com/go-echarts/go-echarts/v2/components"
)

// Analysis is the outcome of a single analyzer run. Fit is nil when the series was
// simulated with an existing or resolved model and Match is only set for resolved models.
type Analysis struct {
	RunID      string
	Options    Options
	Fit        *reservoir.ObserveRegression
	Match      *coeff.Match
	Simulation *reservoir.Simulation

	series timeseries.Series
}

// Series returns the observed series the analysis was run on
func (a *Analysis) Series() timeseries.Series {
	return a.series
}

// SimulatedSeries returns the simulation as a series on the observed time steps. The
// storage and drainage rate go to the configured fields, the runoff rate equals the
// drainage rate as the reservoir has no sheet flow, and rainfall and minutes are copied
// from the observations.
func (a *Analysis) SimulatedSeries() (timeseries.Series, error) {
	sim := a.Simulation
	drainTotal := make([]float64, len(sim.Points))
	sheetTotal := make([]float64, len(sim.Points))
	for i, p := range sim.Points {
		drainTotal[i] = p.DrainTotal
		sheetTotal[i] = p.SheetTotal
	}

	cols := map[timeseries.Field][]float64{
		timeseries.FieldRain:       a.series.Column(timeseries.FieldRain),
		timeseries.FieldMinutes:    a.series.Column(timeseries.FieldMinutes),
		timeseries.FieldRunoff:     sim.DrainRateColumn(),
		timeseries.FieldDrainTotal: drainTotal,
		timeseries.FieldSheetTotal: sheetTotal,
	}
	cols[a.Options.XField] = sim.StorageColumn()
	cols[a.Options.YField] = sim.DrainRateColumn()
	return timeseries.FromColumns(cols)
}

// ScoreTests scores the simulated drainage and runoff rates against observed test series
func (a *Analysis) ScoreTests(tests map[string]timeseries.Series) ([]score.TestScore, error) {
	model, err := a.SimulatedSeries()
	if err != nil {
		return nil, err
	}
	return score.ScoreTests(model, tests), nil
}

// Summary is a flat report of an analysis. Non finite values are reported as null.
type Summary struct {
	RunID     string   `json:"run_id"`
	TestID    string   `json:"test_id,omitempty"`
	Method    string   `json:"method"`
	Subset    string   `json:"subset"`
	Equation  string   `json:"equation"`
	R2        *float64 `json:"r2"`
	Match     string   `json:"match_found,omitempty"`
	Start     *int     `json:"index_start,omitempty"`
	End       *int     `json:"index_end,omitempty"`
	Messages  []string `json:"messages,omitempty"`
	FitNSE    *float64 `json:"fit_nse,omitempty"`
	SimNSE    *float64 `json:"simulation_nse"`
	DrainMm   *float64 `json:"drain_total_mm"`
	DrainSim  *float64 `json:"drain_total_mm_predict"`
	PeakMm    *float64 `json:"drain_peak_mm"`
	PeakSim   *float64 `json:"drain_peak_mm_predict"`
	AbsorbMm  *float64 `json:"absorb_peak_mm"`
	AbsorbSim *float64 `json:"absorb_peak_mm_predict"`
}

// Summary flattens the analysis for reporting
func (a *Analysis) Summary() Summary {
	sim := a.Simulation
	s := Summary{
		RunID:     a.RunID,
		TestID:    a.Options.TestID,
		Method:    string(a.method()),
		Subset:    sim.Subset,
		Equation:  sim.Equation,
		R2:        finite(sim.R2),
		SimNSE:    finite(sim.NSE.NSE),
		DrainMm:   finite(sim.Flow.Observed.Total),
		DrainSim:  finite(sim.Flow.Predicted.Total),
		PeakMm:    finite(sim.Flow.Observed.PeakRate),
		PeakSim:   finite(sim.Flow.Predicted.PeakRate),
		AbsorbMm:  finite(sim.Flow.AbsorbPeak),
		AbsorbSim: finite(sim.Flow.AbsorbPeakPredicted),
	}
	if a.Fit != nil {
		start, end := a.Fit.Window.Start, a.Fit.Window.End
		s.Start = &start
		s.End = &end
		s.Messages = a.Fit.Window.Messages
		s.FitNSE = finite(a.Fit.NSE.NSE)
	}
	if a.Match != nil {
		s.Match = a.Match.Found
	}
	return s
}

func (a *Analysis) method() regression.Family {
	if a.Fit != nil {
		return a.Fit.Method
	}
	if a.Match != nil {
		return regression.Family(a.Match.Record.Coefficients.FunctionType)
	}
	return ""
}

func finite(v float64) *float64 {
	if !timeseries.IsNumber(v) {
		return nil
	}
	return &v
}

// TablePrint writes a human readable report of the fit and the simulation
func (a *Analysis) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	places := a.Options.Precision
	fmt.Fprintf(w, "%s%sAnalysis: %s\n", prefix, util.IndentExpand(indent, indentGrowth), a.RunID)

	if a.Fit == nil {
		fmt.Fprintf(w, "%s%sFit: None\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	} else {
		fit := a.Fit
		fmt.Fprintf(w, "%s%sFit:\n", prefix, util.IndentExpand(indent, indentGrowth+1))
		tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tbl, "%s%sMethod\tSubset\tEquation\tR2\tStart\tEnd\tNSE\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+2))
		fmt.Fprintf(tbl, "%s%s%s\t%s\t%s\t%s\t%d\t%d\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+2),
			fit.Method, fit.Subset, fit.Result.Equation, util.FormatFloat(fit.Result.R2, places),
			fit.Window.Start, fit.Window.End, util.FormatFloat(fit.NSE.NSE, places))
		if err := tbl.Flush(); err != nil {
			return err
		}
		for _, msg := range fit.Window.Messages {
			fmt.Fprintf(w, "%s%s%s\n", prefix, util.IndentExpand(indent, indentGrowth+2), msg)
		}
	}

	if a.Match != nil {
		fmt.Fprintf(w, "%s%sCoefficient: %s (%s)\n",
			prefix, util.IndentExpand(indent, indentGrowth+1), a.Match.Found, a.Match.Version)
	}

	sim := a.Simulation
	fmt.Fprintf(w, "%s%sSimulation: %s\n", prefix, util.IndentExpand(indent, indentGrowth+1), sim.Equation)
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%s\tTotal (mm)\tPeak (mm)\tMean (mm)\tStorage Peak (mm)\t\n",
		prefix, util.IndentExpand(indent, indentGrowth+2))
	fmt.Fprintf(tbl, "%s%sObserved\t%s\t%s\t%s\t%s\t\n",
		prefix, util.IndentExpand(indent, indentGrowth+2),
		util.FormatFloat(sim.Flow.Observed.Total, places),
		util.FormatFloat(sim.Flow.Observed.PeakRate, places),
		util.FormatFloat(sim.Flow.Observed.Mean, places),
		util.FormatFloat(sim.Flow.AbsorbPeak, places))
	fmt.Fprintf(tbl, "%s%sPredicted\t%s\t%s\t%s\t%s\t\n",
		prefix, util.IndentExpand(indent, indentGrowth+2),
		util.FormatFloat(sim.Flow.Predicted.Total, places),
		util.FormatFloat(sim.Flow.Predicted.PeakRate, places),
		util.FormatFloat(sim.Flow.Predicted.Mean, places),
		util.FormatFloat(sim.Flow.AbsorbPeakPredicted, places))
	if err := tbl.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s%sNSE: %s\n", prefix, util.IndentExpand(indent, indentGrowth+2), util.FormatFloat(sim.NSE.NSE, places))
	return nil
}

// PlotFit uses the Apache Echarts library to render an html page showing the window fit,
// the simulated storage and the simulated drainage rate against the observations
func (a *Analysis) PlotFit(w io.Writer) error {
	x, y := a.Options.XField, a.Options.YField
	page := components.NewPage()
	if a.Fit != nil {
		page.AddCharts(
			LineSeries(
				"Window Fit: "+a.Fit.Result.Equation,
				[]string{"Observed " + y.String(), "Fitted " + y.String()},
				[][]float64{a.series.Column(y), reservoir.PredictedColumn(a.Fit.Modeled)},
			),
		)
	}
	page.AddCharts(
		LineSeries(
			"Simulated Storage",
			[]string{"Observed " + x.String(), "Simulated storage"},
			[][]float64{a.series.Column(x), a.Simulation.StorageColumn()},
		),
		LineSeries(
			"Simulated Drainage: "+a.Simulation.Equation,
			[]string{"Observed " + y.String(), "Simulated " + y.String()},
			[][]float64{a.series.Column(y), a.Simulation.DrainRateColumn()},
		),
	)
	return page.Render(w)
}
