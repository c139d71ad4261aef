package chat

import (
	"math"
	"regexp"

	"freightquote/internal/rate"
)

var numberToken = regexp.MustCompile(`\d[\d.,]*`)

// parseDecimal extracts the first number in s. Anything unreadable, and any
// negative value, reads as zero.
func parseDecimal(s string) float64 {
	tok := numberToken.FindString(s)
	if tok == "" {
		return 0
	}
	f, ok := rate.ParseAmount(tok)
	if !ok || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// parseWhole is parseDecimal truncated to an integer and capped at
// rate.MaxKg.
func parseWhole(s string) int {
	f := math.Trunc(parseDecimal(s))
	if f > rate.MaxKg {
		return rate.MaxKg
	}
	return int(f)
}
