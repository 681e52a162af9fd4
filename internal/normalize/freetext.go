package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var buildYearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`建成于(\d{4})年`),
	regexp.MustCompile(`约(\d{4})年建成`),
	regexp.MustCompile(`建成年代[：:]\s*(\d{4})`),
	regexp.MustCompile(`(\d{4})年建成`),
	regexp.MustCompile(`约建成于本世纪初`),
	regexp.MustCompile(`建成于上世纪(\d{2})年代`),
}

// BuildYear finds the construction year stated in running text.
func BuildYear(text string) (int, bool) {
	for _, re := range buildYearPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) == 1 {
			return 2000, true
		}
		y, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		if len(m[1]) == 2 {
			y += 1900
		}
		return y, true
	}
	return 0, false
}

var valueDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`价值时点[：:]\s*(\d{4})[年.](\d{1,2})[月.](\d{1,2})`),
	regexp.MustCompile(`价值时点(\d{4})\.(\d{1,2})\.(\d{1,2})`),
	regexp.MustCompile(`价值时点为(\d{4})年(\d{1,2})月(\d{1,2})日`),
}

// ValueDate finds the valuation date and renders it as YYYY-MM-DD.
func ValueDate(text string) (string, bool) {
	for _, re := range valueDatePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1] + "-" + pad2(m[2]) + "-" + pad2(m[3]), true
		}
	}
	return "", false
}

var purposePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)估价目的[：:是为]*(.{5,50}?)(?:。|$)`),
	regexp.MustCompile(`(?m)本次估价目的是(.{5,50}?)(?:。|$)`),
}

// AppraisalPurpose finds the stated purpose of the appraisal.
func AppraisalPurpose(text string) (string, bool) {
	for _, re := range purposePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

var floorMultiplierRe = regexp.MustCompile(`×\s*(\d+(?:\.\d+)?)%\s*[＝=]`)

// FloorMultiplier reads the "×NN%=" floor correction written in the text.
func FloorMultiplier(text string) (float64, bool) {
	m := floorMultiplierRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v / 100, true
}

var slashDateRe = regexp.MustCompile(`\d{4}/\d{1,2}/\d{1,2}`)

// SlashDate returns the first YYYY/M/D date in s.
func SlashDate(s string) (string, bool) {
	m := slashDateRe.FindString(Fold(s))
	return m, m != ""
}
