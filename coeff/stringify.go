package coeff

import (
	"strconv"
	"strings"
)

const (
	noDataMessage     = "Error: no data!"
	unreadableMessage = "Error: unable to read function!"
)

// Stringify renders the curve of a coefficient payload for display
func Stringify(c *Coefficients) string {
	if c == nil {
		return noDataMessage
	}

	switch fn := c.Function().(type) {
	case Polynomial:
		var sb strings.Builder
		sb.WriteString("Polynomial: ")
		for i, t := range fn.Terms {
			operator := ""
			if i > 0 {
				operator = " + "
			}
			switch {
			case isNumber(t.K) && isNumber(t.N):
				sb.WriteString(operator + formatParam(t.K) + " * (x^" + formatParam(t.N) + ")")
			case isNumber(t.C):
				sb.WriteString(operator + formatParam(t.C))
			}
		}
		return sb.String()
	case Exponential:
		return "Exponential: " + formatParam(fn.K) + " * e(x * " + formatParam(fn.N) + ")"
	case Power:
		return "Power: " + formatParam(fn.K) + " * (x ^ " + formatParam(fn.N) + ")"
	default:
		return unreadableMessage
	}
}

func formatParam(v *float64) string {
	if v == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
