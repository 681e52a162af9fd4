package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// neutralRatios are the sentinel texts meaning "no correction".
var neutralRatios = map[string]struct{}{
	"不修正": {},
	"无修正": {},
	"-":   {},
	"—":   {},
}

// percentThreshold is the magnitude above which a bare number is read as a percentage.
const percentThreshold = 10

// ParseRatio reads a 1.0-basis coefficient. It accepts plain decimals,
// percentages ("105%", or a bare 105), fractions ("108/103") and the
// neutral sentinels. Unparseable text returns ok=false.
func ParseRatio(raw string) (float64, bool) {
	s := Compact(raw)
	if s == "" {
		return 0, false
	}
	if _, ok := neutralRatios[s]; ok {
		return 1.0, true
	}
	if strings.HasSuffix(s, "%") {
		v, ok := parseFinite(strings.TrimSuffix(s, "%"))
		if !ok {
			return 0, false
		}
		return v / 100, true
	}
	if num, den, ok := splitFraction(s); ok {
		v := num / den
		if den == 0 || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	if IsFraction(s) {
		return 0, false
	}
	v, ok := parseFinite(s)
	if !ok {
		return 0, false
	}
	return RatioFromNumber(v), true
}

// RatioFromNumber applies the percentage heuristic to an already numeric value.
func RatioFromNumber(v float64) float64 {
	if math.Abs(v) > percentThreshold {
		return v / 100
	}
	return v
}

// IsFraction reports whether raw has the "a/b" shape, whatever its operands.
func IsFraction(raw string) bool {
	s := Compact(raw)
	i := strings.IndexByte(s, '/')
	return i > 0 && i < len(s)-1 && strings.Count(s, "/") == 1
}

// FormatRatio renders a ratio text for display. Fractions show their value,
// e.g. "108/103 (≈1.0485)"; anything else is returned folded and compacted.
func FormatRatio(raw string) string {
	s := Compact(raw)
	num, den, ok := splitFraction(s)
	if !ok || den == 0 {
		return s
	}
	return fmt.Sprintf("%s (≈%.4f)", s, num/den)
}

func splitFraction(s string) (float64, float64, bool) {
	if !IsFraction(s) {
		return 0, 0, false
	}
	i := strings.IndexByte(s, '/')
	num, ok := parseFinite(s[:i])
	if !ok {
		return 0, 0, false
	}
	den, ok := parseFinite(s[i+1:])
	if !ok {
		return 0, 0, false
	}
	return num, den, true
}

// parseFinite rejects NaN and the infinities that ParseFloat accepts by name.
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
