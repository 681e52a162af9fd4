package extract

import (
	"github.com/GaoLiyu/kb-system-back-sub000/internal/classify"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"
)

// biaozhunfang extracts standard-house reports: a main comparison table, a
// coefficient detail table and the P1..P4 correction chain for four cases.
type biaozhunfang struct{ base }

func (b biaozhunfang) Extract(doc *document.Document, roles classify.RoleIndexMap) entity.Report {
	x := newRun(doc, b.fam, roles, b.logger)
	res := b.newResult(doc, roles)
	subject := subjectTarget(&res.Subject)
	cases := caseTargets(res.Cases)

	x.summary(res)
	for _, step := range []struct {
		role   classify.Role
		layout string
	}{
		{classify.BasicInfo, "main"},
		{classify.FactorRatio, "detail"},
		{classify.CorrectionTable, "correction"},
	} {
		l, ok := x.layout(step.layout)
		if !ok {
			continue
		}
		ti, t, ok := x.roleTable(step.role)
		if !ok {
			continue
		}
		x.mapRows(ti, t, l, subject, cases)
	}

	if v, ok := normalize.AppraisalPurpose(doc.FullText()); ok {
		setOnce(&res.Subject.AppraisalPurpose, entity.Computed(v))
	}
	x.finish(res)
	return res
}
