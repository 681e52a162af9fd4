package extract

import (
	"strings"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/classify"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"
)

// Steps shared by the families that compare one subject against cases
// through factor tables.

func (x *run) summary(res *entity.ExtractionResult) {
	l, ok := x.layout("summary")
	if !ok {
		return
	}
	ti, t, ok := x.roleTable(classify.ResultSummary)
	if !ok {
		return
	}
	if len(l.Columns) > 0 {
		x.mapColumns(ti, t, l, subjectTarget(&res.Subject))
	} else {
		x.mapRows(ti, t, l, subjectTarget(&res.Subject), nil)
	}
	res.FinalUnitPrice = res.Subject.UnitPrice
	res.FinalTotalPrice = res.Subject.TotalPrice
}

// rights reads the registration table: house and land header rows when
// present, label/value pairs otherwise, then the land end date.
func (x *run) rights(res *entity.ExtractionResult) (int, bool) {
	ti, t, ok := x.roleTable(classify.PropertyRights)
	if !ok {
		return ti, false
	}
	tgt := subjectTarget(&res.Subject)
	house := false
	if l, ok := x.layout("rights_house"); ok {
		house = x.mapColumns(ti, t, l, tgt)
	}
	if l, ok := x.layout("rights_land"); ok {
		x.mapColumns(ti, t, l, tgt)
	}
	if l, ok := x.layout("rights_kv"); ok && !house {
		x.mapKV(ti, t, l, tgt)
	}
	for r, row := range t.Rows {
		for c, cell := range row {
			d, ok := normalize.SlashDate(cell)
			if !ok {
				continue
			}
			if v, ok := normalize.ParseDate(d); ok {
				setOnce(&res.Subject.Land.EndDate, entity.Located(v, cell, entity.At(ti, r, c)))
			}
		}
	}
	return ti, true
}

func (x *run) basic(res *entity.ExtractionResult) {
	l, ok := x.layout("basic")
	if !ok {
		return
	}
	ti, t, ok := x.roleTable(classify.BasicInfo)
	if !ok {
		return
	}
	x.mapRows(ti, t, l, subjectTarget(&res.Subject), caseTargets(res.Cases))
}

func (x *run) factors(res *entity.ExtractionResult, withRatio bool) {
	x.mapFactors(classify.FactorDescription, aspectDescription, &res.Subject.Unit, res.Cases)
	x.mapFactors(classify.FactorLevel, aspectLevel, &res.Subject.Unit, res.Cases)
	x.mapFactors(classify.FactorIndex, aspectIndex, &res.Subject.Unit, res.Cases)
	if withRatio {
		x.mapFactors(classify.FactorRatio, aspectRatio, &res.Subject.Unit, res.Cases)
	}
}

func (x *run) corrections(res *entity.ExtractionResult) {
	l, ok := x.layout("correction")
	if !ok {
		return
	}
	ti, t, ok := x.roleTable(classify.CorrectionTable)
	if !ok {
		return
	}
	x.mapRows(ti, t, l, subjectTarget(&res.Subject), caseTargets(res.Cases))
}

// certScan picks the certificate number out of any cell that spells it,
// e.g. "苏(2021)某市不动产权第0012345号", for registration tables without a header row.
func (x *run) certScan(res *entity.ExtractionResult, ti int) {
	t, ok := x.doc.Table(ti)
	if !ok {
		return
	}
	for r, row := range t.Rows {
		for c, cell := range row {
			s := normalize.Compact(cell)
			if strings.Contains(s, "不动产权") && strings.Contains(s, "号") {
				setOnce(&res.Subject.CertNo, entity.Located(s, cell, entity.At(ti, r, c)))
				return
			}
		}
	}
}
