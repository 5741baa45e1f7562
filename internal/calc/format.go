package calc

import (
	"fmt"
	"strconv"
	"strings"
)

// Trim strips trailing zeros, then a trailing point, from a fixed-point
// numeral: "2.5000000" becomes "2.5" and "3.0000000" becomes "3". Strings
// without a point are returned unchanged.
func Trim(s string) string {
	if strings.IndexByte(s, '.') < 0 {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func formatFixed(v float64, digits int) string {
	s := Trim(strconv.FormatFloat(v, 'f', digits, 64))
	if s == "-0" {
		return "0"
	}
	return s
}

// Format renders a result value with the engine's result precision.
func (e *Engine) Format(v float64) string {
	return formatFixed(v, e.opt.Digits)
}

// FormatEstimate renders an integral error estimate, e.g. "R:1.2500e-07".
func FormatEstimate(v float64) string {
	return fmt.Sprintf("R:%.4e", v)
}
