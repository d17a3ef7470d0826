package sheet

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// maxCount caps coerced counts at the largest integer a float64 holds exactly.
const maxCount = 1 << 53

// Number coerces an arbitrary decoded JSON value to a finite float64.
// Numbers and numeric strings convert; booleans are 1 or 0; everything else
// (nil, empty strings, objects, arrays, NaN, ±Inf) is 0.
func Number(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case json.Number:
		f = parseFloat(string(x))
	case string:
		f = parseFloat(x)
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Percent coerces a rate that may be a 0–1 fraction or a 0–100 percentage.
// Values at or below 1 are treated as fractions and scaled by 100. The
// result is clamped to [0, 100].
func Percent(v any) float64 {
	f := Number(v)
	if f <= 1 {
		f *= 100
	}
	return math.Min(math.Max(f, 0), 100)
}

// Count coerces a value to a non-negative integer, rounding half away from zero.
func Count(v any) int {
	f := math.Round(Number(v))
	if f <= 0 {
		return 0
	}
	if f > maxCount {
		return maxCount
	}
	return int(f)
}

// Money coerces a value to a decimal amount. Numeric strings keep their exact
// decimal representation; anything else goes through Number.
func Money(v any) decimal.Decimal {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = string(x)
	case string:
		s = strings.TrimSpace(x)
	}
	if s != "" {
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.NewFromFloat(Number(v))
}

// Text coerces a value to a label. Strings are trimmed; numbers render in
// their shortest form; nil, objects and arrays are empty.
func Text(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// truthy mirrors the loose truthiness the upstream's own clients apply to
// the top-level success flag.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number, float64, int:
		return Number(x) != 0
	default:
		return true
	}
}
