package reservoirfit

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aouyang1/go-reservoir/regression"
	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/aouyang1/go-reservoir/util"
)

const (
	DefaultMethod = regression.FamilyPower
	DefaultSubset = "all"
)

// Options configures an Analyzer. EndUser of 0 or less analyzes through the end of the
// series.
type Options struct {
	TestID    string            `json:"test_id"`
	Method    regression.Family `json:"method"`
	Subset    string            `json:"subset"`
	Precision int               `json:"precision"`
	StartUser int               `json:"start"`
	EndUser   int               `json:"end"`
	XField    timeseries.Field  `json:"x_field"`
	YField    timeseries.Field  `json:"y_field"`
}

// NewDefaultOptions fits storage to drainage rate with a power curve over the whole series
func NewDefaultOptions() *Options {
	return &Options{
		Method:    DefaultMethod,
		Subset:    DefaultSubset,
		Precision: regression.DefaultPrecision,
		XField:    timeseries.FieldAbsorb,
		YField:    timeseries.FieldDrain,
	}
}

func (o Options) endFor(series timeseries.Series) int {
	if o.EndUser <= 0 || o.EndUser > len(series) {
		return len(series)
	}
	return o.EndUser
}

func (o Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s%sOptions:\n", prefix, util.IndentExpand(indent, indentGrowth))
	fmt.Fprintf(tbl, "%s%sMethod\tSubset\tPrecision\tStart\tEnd\tX\tY\t\n",
		prefix, util.IndentExpand(indent, indentGrowth+1))
	fmt.Fprintf(tbl, "%s%s%s\t%s\t%d\t%d\t%d\t%s\t%s\t\n",
		prefix, util.IndentExpand(indent, indentGrowth+1),
		o.Method, o.Subset, o.Precision, o.StartUser, o.EndUser, o.XField, o.YField)
	return tbl.Flush()
}
