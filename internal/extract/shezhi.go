package extract

import (
	"github.com/GaoLiyu/kb-system-back-sub000/internal/classify"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

// shezhi extracts court-enforcement reports: summary, registration, basic
// info, four factor tables and the correction table, with three cases.
type shezhi struct{ base }

func (s shezhi) Extract(doc *document.Document, roles classify.RoleIndexMap) entity.Report {
	x := newRun(doc, s.fam, roles, s.logger)
	res := s.newResult(doc, roles)

	x.summary(res)
	if ti, ok := x.rights(res); ok {
		x.certScan(res, ti)
	}
	x.basic(res)
	x.factors(res, true)
	x.corrections(res)
	x.freeText(res)
	x.finish(res)
	return res
}
