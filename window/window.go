// Package window selects the contiguous range of a series that is valid for curve
// fitting. Rainfall and drainage quantities must be positive before a log or power fit is
// meaningful, so leading invalid steps are skipped and the range is cut at the first
// invalid step after the start.
package window

import (
	"fmt"
	"strconv"

	"github.com/aouyang1/go-reservoir/timeseries"
)

const (
	StartHeader = "START:"
	EndHeader   = "END:"
)

// Input describes the user requested range [StartUser, EndUser) and the fields to check
type Input struct {
	Series    timeseries.Series
	StartUser int
	EndUser   int
	XField    timeseries.Field
	YField    timeseries.Field
}

// Window is a half open valid range of a series with diagnostics explaining exclusions.
// 0 <= Start <= End <= len(series).
type Window struct {
	Start    int      `json:"index_start"`
	End      int      `json:"index_end"`
	Messages []string `json:"messages"`
}

// Len returns the number of points in the window
func (w Window) Len() int {
	return w.End - w.Start
}

// Select runs the start scan and then the end scan. An input with no valid point yields
// the empty window [len, len).
func Select(in Input) Window {
	start, startMsgs := FindStart(in)
	end, endMsgs := FindEnd(in, start)

	var messages []string
	if len(startMsgs) > 0 {
		messages = append(messages, StartHeader)
		messages = append(messages, startMsgs...)
	}
	if len(endMsgs) > 0 {
		messages = append(messages, EndHeader)
		messages = append(messages, endMsgs...)
	}

	return Window{
		Start:    start,
		End:      end,
		Messages: messages,
	}
}

// FindStart returns the first index in the requested range where both fields are
// positive numbers, or the series length when there is none. Every index that fails the
// check is reported and the scan continues.
func FindStart(in Input) (int, []string) {
	n := len(in.Series)
	lo, hi := timeseries.Clamp(in.StartUser, in.EndUser, n)

	start := n
	var messages []string
	for i := lo; i < hi; i++ {
		if msg, ok := check(in, i); !ok {
			messages = append(messages, msg)
			continue
		}
		start = min(start, i)
	}
	return start, messages
}

// FindEnd scans forward from start and contracts the end of the range to the first index
// where either field is not a positive number. The end never grows back.
func FindEnd(in Input, start int) (int, []string) {
	n := len(in.Series)
	_, end := timeseries.Clamp(in.StartUser, in.EndUser, n)
	if start > end {
		return start, nil
	}

	var messages []string
	for i := start; i < end; i++ {
		if msg, ok := check(in, i); !ok {
			messages = append(messages, msg)
			end = min(end, i)
		}
	}
	return end, messages
}

func check(in Input, i int) (string, bool) {
	p := in.Series[i]
	x := p.Value(in.XField)
	y := p.Value(in.YField)
	switch {
	case !timeseries.IsNumber(x):
		return fmt.Sprintf("x (%s) is %s, not a number at index %d", in.XField, formatValue(x), i), false
	case !timeseries.IsNumber(y):
		return fmt.Sprintf("y (%s) is %s, not a number at index %d", in.YField, formatValue(y), i), false
	case x <= 0:
		return fmt.Sprintf("x (%s) is %s, not a positive number at index %d", in.XField, formatValue(x), i), false
	case y <= 0:
		return fmt.Sprintf("y (%s) is %s, not a positive number at index %d", in.YField, formatValue(y), i), false
	}
	return "", true
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
