package reservoirfit

import (
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineSeries generates an echart multi-line chart over the step index. Every series in y
// must be as long as the first one; missing values leave a gap in their line.
func LineSeries(title string, seriesName []string, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	var n int
	if len(y) > 0 {
		n = len(y[0])
	}
	steps := make([]string, 0, n)
	for i := 0; i < n; i++ {
		steps = append(steps, strconv.Itoa(i))
	}
	line = line.SetXAxis(steps)

	for i, name := range seriesName {
		if i >= len(y) {
			break
		}
		lineData := make([]opts.LineData, 0, n)
		for j := 0; j < n && j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) || math.IsInf(y[i][j], 0) {
				lineData = append(lineData, opts.LineData{Value: "-"})
				continue
			}
			lineData = append(lineData, opts.LineData{Value: y[i][j]})
		}
		line = line.AddSeries(name, lineData)
	}
	return line
}
