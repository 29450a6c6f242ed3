package pricing

import (
	"strconv"
	"strings"
)

// ParsePrice reads a loosely formatted price such as "₹1,29,999.00".
// Every character other than digits and '.' is dropped; anything that still
// fails to parse yields zero.
func ParsePrice(raw string) float64 {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// PriceOf accepts the price shapes seen in untrusted JSON: numbers and strings.
// Negative values become zero.
func PriceOf(v any) (float64, bool) {
	var f float64
	switch p := v.(type) {
	case float64:
		f = p
	case float32:
		f = float64(p)
	case int:
		f = float64(p)
	case int64:
		f = float64(p)
	case string:
		if strings.TrimSpace(p) == "" {
			return 0, false
		}
		f = ParsePrice(p)
	default:
		return 0, false
	}
	if f < 0 {
		f = 0
	}
	return f, true
}
