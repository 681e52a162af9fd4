package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/classify"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
)

func TestDefaultLoadsEveryFamily(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	for _, f := range constants.Families() {
		fam, ok := reg.Get(f)
		if !ok {
			t.Fatalf("family %s missing", f)
		}
		if fam.Version == "" || fam.PriceUnit == "" {
			t.Fatalf("%s: version/price unit missing", f)
		}
	}
	if len(reg.Versions()) != len(constants.Families()) {
		t.Fatalf("versions = %v", reg.Versions())
	}
	again, _ := Default()
	if again != reg {
		t.Fatal("Default should decode once")
	}
}

func TestFamilyShapes(t *testing.T) {
	reg := MustDefault()
	tests := []struct {
		family  constants.ReportFamily
		cases   int
		layouts []string
		roles   []classify.Role
	}{
		{constants.Shezhi, 3, []string{"summary", "rights_house", "rights_land", "rights_kv", "basic", "correction"},
			[]classify.Role{classify.BasicInfo, classify.FactorRatio, classify.CorrectionTable}},
		{constants.Zujin, 3, []string{"summary", "rights_house", "rights_land", "basic", "correction"},
			[]classify.Role{classify.BasicInfo, classify.FactorIndex, classify.CorrectionTable}},
		{constants.Biaozhunfang, 4, []string{"summary", "main", "detail", "correction"},
			[]classify.Role{classify.ResultSummary, classify.BasicInfo, classify.FactorRatio, classify.CorrectionTable}},
		{constants.Xianzhi, 3, []string{"batch_summary", "case_group", "floor_table"},
			[]classify.Role{classify.ResultSummary}},
	}
	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			fam, _ := reg.Get(tt.family)
			if fam.CaseCount != tt.cases {
				t.Fatalf("case_count = %d, want %d", fam.CaseCount, tt.cases)
			}
			for _, l := range tt.layouts {
				if _, ok := fam.Layout(l); !ok {
					t.Fatalf("layout %s missing (have %v)", l, fam.LayoutNames())
				}
			}
			for _, r := range tt.roles {
				if _, ok := fam.Classifier.Defaults[r]; !ok {
					t.Fatalf("default for %s missing", r)
				}
			}
		})
	}
}

func TestShezhiOffsets(t *testing.T) {
	fam, _ := MustDefault().Get(constants.Shezhi)
	want := map[classify.Role]int{
		classify.FactorDescription: 1,
		classify.FactorLevel:       2,
		classify.FactorIndex:       3,
		classify.FactorRatio:       4,
		classify.CorrectionTable:   5,
	}
	for r, off := range want {
		if fam.Classifier.Offsets[r] != off {
			t.Fatalf("offset %s = %d, want %d", r, fam.Classifier.Offsets[r], off)
		}
	}
	if fam.Layouts["correction"].SubjectCol != -1 {
		t.Fatal("correction layout has no subject column")
	}
}

func TestXianzhiExtraSignatures(t *testing.T) {
	fam, _ := MustDefault().Get(constants.Xianzhi)
	for _, n := range []string{"case_group", "floor_table"} {
		if _, ok := fam.Classifier.Extra[n]; !ok {
			t.Fatalf("extra signature %s missing", n)
		}
	}
}

const minimal = `
version: "t1"
family: shezhi
case_count: 3
classifier:
  signatures:
    basic_info:
      strong: [["估价对象"]]
      threshold: 5
`

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no version", "family: shezhi\ncase_count: 3\n"},
		{"unknown family", "version: x\nfamily: other\ncase_count: 3\n"},
		{"case count", "version: x\nfamily: shezhi\ncase_count: 9\n"},
		{"unknown role", "version: x\nfamily: shezhi\ncase_count: 3\nclassifier:\n  signatures:\n    nope: {threshold: 1}\n"},
		{"zero threshold", "version: x\nfamily: shezhi\ncase_count: 3\nclassifier:\n  signatures:\n    basic_info: {strong: [[\"a\"]]}\n"},
		{"unknown offset", "version: x\nfamily: shezhi\ncase_count: 3\nclassifier:\n  offsets:\n    nope: 1\n"},
		{"rule without field", "version: x\nfamily: shezhi\ncase_count: 3\nlayouts:\n  basic:\n    rules:\n      - {any: [\"a\"]}\n"},
		{"column without key", "version: x\nfamily: shezhi\ncase_count: 3\nlayouts:\n  summary:\n    columns:\n      - {include: [\"a\"]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, common.ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
		})
	}
	if _, err := Parse([]byte("version: [")); err == nil {
		t.Fatal("malformed yaml should fail")
	}
}

func TestLoadChecksFileName(t *testing.T) {
	fsys := fstest.MapFS{"zujin.yaml": {Data: []byte(minimal)}}
	if _, err := Load(fsys); err == nil {
		t.Fatal("file name must match family")
	}
	if _, err := Load(fstest.MapFS{}); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("empty dir: %v", err)
	}
}

func TestLoadDirOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shezhi.yaml"), []byte(minimal), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if v := reg.Versions()[constants.Shezhi]; v != "t1" {
		t.Fatalf("version = %q", v)
	}
	if _, ok := reg.Get(constants.Zujin); ok {
		t.Fatal("only shezhi was provided")
	}
}
