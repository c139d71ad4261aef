package rate

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount reads a number as typed in a sheet or a chat: currency marks,
// units and spaces are ignored. With both separators present the last one is
// the decimal mark. A lone separator followed by exactly three digits groups
// thousands ("1.250", "1,250") unless the integer part is zero; any other lone
// separator is the decimal mark.
func ParseAmount(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	num := strings.Trim(b.String(), ".,")
	if num == "" {
		return 0, false
	}
	dot, comma := strings.LastIndex(num, "."), strings.LastIndex(num, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			num = strings.ReplaceAll(num, ".", "")
			num = strings.Replace(num, ",", ".", 1)
		} else {
			num = strings.ReplaceAll(num, ",", "")
		}
	case comma >= 0:
		num = loneSeparator(num, ",")
	case dot >= 0:
		num = loneSeparator(num, ".")
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// loneSeparator rewrites num, which holds only sep as separator, into a form
// strconv understands.
func loneSeparator(num, sep string) string {
	if strings.Count(num, sep) > 1 {
		return strings.ReplaceAll(num, sep, "")
	}
	i := strings.Index(num, sep)
	intPart := strings.TrimLeft(num[:i], "-")
	if len(num)-i-1 == 3 && strings.Trim(intPart, "0") != "" {
		return strings.Replace(num, sep, "", 1)
	}
	return strings.Replace(num, sep, ".", 1)
}

// MaxKg caps weights so they always fit an int.
const MaxKg = math.MaxInt32

// Chargeable is the greater of actual and volumetric weight, each rounded up
// and capped at MaxKg.
func Chargeable(kg, volKg float64) int {
	c := math.Max(math.Ceil(kg), math.Ceil(volKg))
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > MaxKg:
		return MaxKg
	}
	return int(c)
}

// Billable floors chargeable at 1 kg and raises it to minKg when below it.
// The flag reports whether the minimum was applied.
func Billable(chargeable, minKg int) (int, bool) {
	b := chargeable
	if b < 1 {
		b = 1
	}
	if b < minKg {
		return minKg, true
	}
	return b, false
}

// FormatAmount renders a price with two decimals.
func FormatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
