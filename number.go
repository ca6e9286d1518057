package flatcsv

import (
	"math"
	"strconv"
	"strings"
)

// formatNumber renders a JSON number literal according to mode. In canonical
// mode literals beyond the float64 range render as Infinity or -Infinity.
func formatNumber(lit string, mode NumberMode) string {
	if mode == NumberLiteral {
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if math.IsInf(f, 0) {
		if f > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	if err != nil {
		return lit
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// numberJSON renders a number inside serialized JSON text. Infinite values
// have no JSON form and become null in canonical mode.
func numberJSON(lit string, mode NumberMode) string {
	if mode == NumberCanonical {
		if f, _ := strconv.ParseFloat(lit, 64); math.IsInf(f, 0) {
			return "null"
		}
	}
	return formatNumber(lit, mode)
}
