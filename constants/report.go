package constants

import (
	"path/filepath"
	"strings"
)

// ReportFamily tags one of the appraisal report template groups.
type ReportFamily string

const (
	Shezhi       ReportFamily = "shezhi"
	Zujin        ReportFamily = "zujin"
	Biaozhunfang ReportFamily = "biaozhunfang"
	Xianzhi      ReportFamily = "xianzhi"
)

var allFamilies = []ReportFamily{
	Shezhi,
	Zujin,
	Biaozhunfang,
	Xianzhi,
}

// Families returns every supported family in a stable order.
func Families() []ReportFamily {
	out := make([]ReportFamily, len(allFamilies))
	copy(out, allFamilies)
	return out
}

func FamiliesAsStrings() []string {
	result := make([]string, len(allFamilies))
	for i, f := range allFamilies {
		result[i] = string(f)
	}
	return result
}

// familyHints are checked in order against a file name; the first hit wins.
var familyHints = []struct {
	keyword string
	family  ReportFamily
}{
	{"涉执", Shezhi},
	{"shezhi", Shezhi},
	{"租金", Zujin},
	{"zujin", Zujin},
	{"标准房", Biaozhunfang},
	{"biaozhunfang", Biaozhunfang},
	{"现状", Xianzhi},
	{"批量", Xianzhi},
	{"xianzhi", Xianzhi},
}

// ParseFamily accepts a family tag or one of its Chinese names.
func ParseFamily(input string) (ReportFamily, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]ReportFamily{
		"涉执":   Shezhi,
		"涉执报告": Shezhi,
		"租金":   Zujin,
		"租金报告": Zujin,
		"标准房":  Biaozhunfang,
		"现状":   Xianzhi,
		"批量":   Xianzhi,
		"现状价值": Xianzhi,
	}
	if f, ok := synonyms[normalized]; ok {
		return f, true
	}
	for _, f := range allFamilies {
		if normalized == string(f) {
			return f, true
		}
	}
	return "", false
}

// DetectFamily guesses the family from a file name. Unknown names are
// reported as not ok rather than defaulted.
func DetectFamily(filename string) (ReportFamily, bool) {
	base := strings.ToLower(filepath.Base(filename))
	for _, h := range familyHints {
		if strings.Contains(base, h.keyword) {
			return h.family, true
		}
	}
	return "", false
}

const caseAlphabet = "ABCD"

// CaseIDs returns the first n ordered case labels, capped at the alphabet size.
func CaseIDs(n int) []string {
	if n > len(caseAlphabet) {
		n = len(caseAlphabet)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = caseAlphabet[i : i+1]
	}
	return out
}

// Price units used in the summary tables.
const (
	PriceUnitSale   = "元/㎡"
	PriceUnitRental = "元/㎡·年"
)
