package mapper

import (
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"
)

// FactorLayout describes a factor table: a category column, a factor name
// column, the subject column and the first case column.
type FactorLayout struct {
	HeaderRows  int `yaml:"header_rows"`
	CategoryCol int `yaml:"category_col"`
	NameCol     int `yaml:"name_col"`
	SubjectCol  int `yaml:"subject_col"`
	CaseCol     int `yaml:"case_col"`
}

// FactorRow is one factor row with its resolved category and canonical name.
type FactorRow struct {
	Row      int
	Category entity.FactorCategory
	Name     string
	Label    string
}

// Factors walks a factor table. The category comes from the factor's
// dictionary membership, else from the nearest category header above it.
// Category header rows, skipped labels and unknown categories yield nothing.
func (l FactorLayout) Factors(t document.Table, dict *normalize.FactorDictionary) []FactorRow {
	var out []FactorRow
	var current entity.FactorCategory
	for r := l.HeaderRows; r < t.NumRows(); r++ {
		head := t.Text(r, l.CategoryCol)
		label := normalize.Compact(t.Text(r, l.NameCol))
		if c, ok := dict.CategoryHeader(head); ok {
			current = c
		} else if dict.Skipped(head) {
			continue
		}
		if label == "" || dict.Skipped(label) {
			continue
		}
		if _, ok := dict.CategoryHeader(label); ok {
			continue
		}
		cat, ok := dict.MemberOf(label)
		if !ok {
			if current == "" {
				continue
			}
			cat = current
		}
		out = append(out, FactorRow{Row: r, Category: cat, Name: dict.Canonical(label), Label: label})
	}
	return out
}
