package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var numberRe = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// ParseNumber strips every character except digits and '.' and parses the rest.
func ParseNumber(raw string) (float64, bool) {
	s := Fold(raw)
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FirstNumber returns the first signed decimal found in raw.
func FirstNumber(raw string) (float64, bool) {
	m := numberRe.FindString(Fold(raw))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SumNumbers adds every decimal found in raw, for multi-part areas such as "80.5+12.3".
func SumNumbers(raw string) (float64, bool) {
	ms := numberRe.FindAllString(Fold(raw), -1)
	if len(ms) == 0 {
		return 0, false
	}
	total := 0.0
	for _, m := range ms {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		if v < 0 {
			v = -v
		}
		total += v
	}
	return total, true
}

// ParseInt parses the first integer in raw.
func ParseInt(raw string) (int, bool) {
	v, ok := FirstNumber(raw)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// ParseIndex reads a 100-basis factor index.
func ParseIndex(raw string) (float64, bool) {
	return FirstNumber(raw)
}

var yearRe = regexp.MustCompile(`(1[89]\d{2}|20\d{2})`)

// ParseYear extracts a four digit year between 1800 and 2099.
func ParseYear(raw string) (int, bool) {
	m := yearRe.FindString(Fold(raw))
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}

var (
	fullDateRe  = regexp.MustCompile(`(\d{4})\s*[年\-/.]\s*(\d{1,2})\s*[月\-/.]\s*(\d{1,2})`)
	monthDateRe = regexp.MustCompile(`(\d{4})\s*[年\-/.]\s*(\d{1,2})\s*月?`)
)

// ParseDate finds a date substring and renders it as YYYY-MM-DD, or YYYY-MM
// when only a month is given.
func ParseDate(raw string) (string, bool) {
	s := Fold(raw)
	if m := fullDateRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + pad2(m[2]) + "-" + pad2(m[3]), true
	}
	if m := monthDateRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + pad2(m[2]), true
	}
	return "", false
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
