package normalize

import (
	"math"
	"testing"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

func TestParseRatio(t *testing.T) {
	cases := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"108/103", 108.0 / 103.0, true},
		{"1.05", 1.05, true},
		{"105", 1.05, true},
		{"98", 0.98, true},
		{"102%", 1.02, true},
		{"１０５", 1.05, true},
		{"108／103", 108.0 / 103.0, true},
		{"不修正", 1.0, true},
		{"无修正", 1.0, true},
		{"-", 1.0, true},
		{"—", 1.0, true},
		{" 1.00 ", 1.0, true},
		{"abc", 0, false},
		{"", 0, false},
		{"1/0", 0, false},
		{"1/2/3", 0, false},
		{"NaN", 0, false},
		{"nan%", 0, false},
		{"Inf", 0, false},
		{"-infinity", 0, false},
		{"1/inf", 0, false},
		{"NaN/1", 0, false},
		{"1e308/1e-308", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseRatio(c.in)
		if ok != c.wantOK {
			t.Fatalf("ParseRatio(%q) ok=%v, want %v", c.in, ok, c.wantOK)
		}
		if ok && math.Abs(got-c.want) > 1e-9 {
			t.Errorf("ParseRatio(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	if got, _ := ParseRatio("108/103"); math.Abs(got-1.0485) > 1e-4 {
		t.Errorf("108/103 = %v, want about 1.0485", got)
	}
}

func TestRatioFromNumber(t *testing.T) {
	if got := RatioFromNumber(105); got != 1.05 {
		t.Errorf("RatioFromNumber(105) = %v", got)
	}
	if got := RatioFromNumber(0.97); got != 0.97 {
		t.Errorf("RatioFromNumber(0.97) = %v", got)
	}
	if got := RatioFromNumber(10); got != 10 {
		t.Errorf("RatioFromNumber(10) = %v, the threshold is exclusive", got)
	}
}

func TestFormatRatio(t *testing.T) {
	cases := map[string]string{
		"108/103": "108/103 (≈1.0485)",
		"100/100": "100/100 (≈1.0000)",
		"1.02":    "1.02",
		"不修正":     "不修正",
		"":        "",
	}
	for in, want := range cases {
		if got := FormatRatio(in); got != want {
			t.Errorf("FormatRatio(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsFraction(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"108/103", true},
		{" 108／103 ", true},
		{"1/inf", true},
		{"1/2/3", false},
		{"/3", false},
		{"3/", false},
		{"1.05", false},
	}
	for _, c := range cases {
		if got := IsFraction(c.in); got != c.want {
			t.Errorf("IsFraction(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func intp(v int) *int { return &v }

func TestParseFloor(t *testing.T) {
	cases := []struct {
		in   string
		want entity.FloorInfo
	}{
		{"5/18", entity.FloorInfo{Raw: "5/18", Current: "5", Total: intp(18)}},
		{"1-2/2", entity.FloorInfo{Raw: "1-2/2", Current: "1-2", Total: intp(2), IsDuplex: true, DuplexStart: intp(1), DuplexEnd: intp(2)}},
		{"-1", entity.FloorInfo{Raw: "-1", Current: "-1", IsBasement: true}},
		{"-1/18", entity.FloorInfo{Raw: "-1/18", Current: "-1", Total: intp(18), IsBasement: true}},
		{"第5层/共18层", entity.FloorInfo{Raw: "第5层/共18层", Current: "5", Total: intp(18)}},
		{"顶层", entity.FloorInfo{Raw: "顶层", Current: "顶"}},
		{"", entity.FloorInfo{}},
	}
	for _, c := range cases {
		got := ParseFloor(c.in)
		if !floorEqual(got, c.want) {
			t.Errorf("ParseFloor(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func floorEqual(a, b entity.FloorInfo) bool {
	eq := func(x, y *int) bool {
		if x == nil || y == nil {
			return x == y
		}
		return *x == *y
	}
	return a.Raw == b.Raw && a.Current == b.Current && eq(a.Total, b.Total) &&
		a.IsDuplex == b.IsDuplex && a.IsBasement == b.IsBasement &&
		eq(a.DuplexStart, b.DuplexStart) && eq(a.DuplexEnd, b.DuplexEnd)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12,500元/㎡", 12500, true},
		{"89.35㎡", 89.35, true},
		{"１２０.５", 120.5, true},
		{"暂无", 0, false},
		{"1.2.3", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		if ok != c.wantOK || (ok && got != c.want) {
			t.Errorf("ParseNumber(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.wantOK)
		}
	}
}

func TestFirstAndSumNumbers(t *testing.T) {
	if v, ok := FirstNumber("约356.2万元"); !ok || v != 356.2 {
		t.Errorf("FirstNumber = %v,%v", v, ok)
	}
	if v, ok := SumNumbers("80.5+19.5"); !ok || v != 100 {
		t.Errorf("SumNumbers = %v,%v", v, ok)
	}
	if _, ok := SumNumbers("无"); ok {
		t.Error("SumNumbers should fail without digits")
	}
}

func TestParseDateAndYear(t *testing.T) {
	dates := map[string]string{
		"2023年5月12日":  "2023-05-12",
		"2023/05/01":  "2023-05-01",
		"2023.5":      "2023-05",
	}
	for in, want := range dates {
		got, ok := ParseDate(in)
		if !ok || got != want {
			t.Errorf("ParseDate(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseDate("近期"); ok {
		t.Error("ParseDate should reject text without a date")
	}
	if y, ok := ParseYear("2005年"); !ok || y != 2005 {
		t.Errorf("ParseYear = %v,%v", y, ok)
	}
}

func TestFreeText(t *testing.T) {
	text := "估价对象约建成于2008年建成。\n价值时点：2024年3月5日。\n估价目的：为人民法院确定财产处置参考价提供参考依据。\n楼层修正 ×102%＝"
	if y, ok := BuildYear(text); !ok || y != 2008 {
		t.Errorf("BuildYear = %v,%v", y, ok)
	}
	if d, ok := ValueDate(text); !ok || d != "2024-03-05" {
		t.Errorf("ValueDate = %q,%v", d, ok)
	}
	if p, ok := AppraisalPurpose(text); !ok || p != "人民法院确定财产处置参考价提供参考依据" {
		t.Errorf("AppraisalPurpose = %q,%v", p, ok)
	}
	if f, ok := FloorMultiplier(text); !ok || math.Abs(f-1.02) > 1e-9 {
		t.Errorf("FloorMultiplier = %v,%v", f, ok)
	}
	if y, _ := BuildYear("该楼约建成于本世纪初"); y != 2000 {
		t.Errorf("BuildYear century = %d", y)
	}
	if y, _ := BuildYear("建成于上世纪90年代"); y != 1990 {
		t.Errorf("BuildYear decade = %d", y)
	}
}

func TestSplitAddress(t *testing.T) {
	cases := []struct{ in, district, street string }{
		{"浙江省杭州市西湖区文新街道文三路1号", "西湖区", "文新街道"},
		{"义乌市稠城街道工人北路8号", "义乌市", "稠城街道"},
		{"临安区锦城镇某村", "临安区", "锦城镇"},
		{"某花园3幢", "", ""},
	}
	for _, c := range cases {
		d, s := SplitAddress(c.in)
		if d != c.district || s != c.street {
			t.Errorf("SplitAddress(%q) = %q,%q want %q,%q", c.in, d, s, c.district, c.street)
		}
	}
}

func TestFactorDictionary(t *testing.T) {
	d := &FactorDictionary{
		Keys:       map[string]string{"朝向": "orientation"},
		Categories: map[string]entity.FactorCategory{"区位状况": entity.FactorLocation, "实物状况": entity.FactorPhysical},
		Aliases:    map[string]string{"实物因素": "实物状况"},
		Members:    map[entity.FactorCategory][]string{entity.FactorRights: {"规划条件"}},
		Skip:       []string{"交易情况"},
	}
	if got := d.Canonical(" 朝 向 "); got != "orientation" {
		t.Errorf("Canonical = %q", got)
	}
	if got := d.Canonical("景观视野"); got != "景观视野" {
		t.Errorf("unknown label should pass through, got %q", got)
	}
	if c, ok := d.CategoryHeader("实物因素"); !ok || c != entity.FactorPhysical {
		t.Errorf("CategoryHeader alias = %q,%v", c, ok)
	}
	if c, ok := d.MemberOf("规划条件"); !ok || c != entity.FactorRights {
		t.Errorf("MemberOf = %q,%v", c, ok)
	}
	if !d.Skipped("交易情况") {
		t.Error("交易情况 should be skipped")
	}
	var nilDict *FactorDictionary
	if got := nilDict.Canonical("朝向"); got != "朝向" {
		t.Errorf("nil dictionary = %q", got)
	}
}
